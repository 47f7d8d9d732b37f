package store

import (
	"database/sql"
	"errors"

	"github.com/jmfields/stockroom/internal/models"
)

func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	query := `SELECT id, username, password, role FROM users WHERE username = ?`
	row := s.DB.QueryRow(query, username)

	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Password, &user.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByID(id int) (*models.User, error) {
	query := `SELECT id, username, password, role FROM users WHERE id = ?`
	row := s.DB.QueryRow(query, id)

	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Password, &user.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetAllUsers() ([]models.User, error) {
	query := `SELECT id, username, password, role FROM users ORDER BY username`
	rows, err := s.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Password, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateUser is mainly for seeding accounts from the CLI.
func (s *Store) CreateUser(username, hashedPassword, role string) error {
	query := `INSERT INTO users (username, password, role) VALUES (?, ?, ?)`
	_, err := s.DB.Exec(query, username, hashedPassword, role)
	return err
}

func (s *Store) UpdateUserPassword(id int, hashedPassword string) error {
	res, err := s.DB.Exec(`UPDATE users SET password = ? WHERE id = ?`, hashedPassword, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
