package store

import (
	"database/sql"
	"errors"

	"github.com/jmfields/stockroom/internal/models"
)

func (s *Store) CreateItem(item *models.Item) error {
	query := `
		INSERT INTO inventory (name, quantity, expiry_date, min_quantity, last_used)
		VALUES (?, ?, ?, ?, NULL)
	`
	res, err := s.DB.Exec(query, item.Name, item.Quantity, item.ExpiryDate, item.MinQuantity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	item.ID = int(id)
	return nil
}

func (s *Store) GetAllItems() ([]models.Item, error) {
	query := `SELECT id, name, quantity, expiry_date, min_quantity, last_used FROM inventory`
	rows, err := s.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var i models.Item
		if err := rows.Scan(&i.ID, &i.Name, &i.Quantity, &i.ExpiryDate, &i.MinQuantity, &i.LastUsed); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (s *Store) GetItemByID(id int) (*models.Item, error) {
	query := `SELECT id, name, quantity, expiry_date, min_quantity, last_used FROM inventory WHERE id = ?`
	var i models.Item
	err := s.DB.QueryRow(query, id).Scan(&i.ID, &i.Name, &i.Quantity, &i.ExpiryDate, &i.MinQuantity, &i.LastUsed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// UseItem decrements the item's quantity by one and returns the updated row.
// The decrement is conditional on quantity > 0, so two sessions racing on the
// last unit cannot drive the count negative. last_used is deliberately left
// alone here; see UndoUse.
func (s *Store) UseItem(id int) (*models.Item, error) {
	res, err := s.DB.Exec(
		`UPDATE inventory SET quantity = quantity - 1 WHERE id = ? AND quantity > 0`, id)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Either the item is gone or it is depleted; look to tell apart.
		if _, err := s.GetItemByID(id); err != nil {
			return nil, err
		}
		return nil, ErrOutOfStock
	}
	return s.GetItemByID(id)
}

// UndoUse clears last_used. It does not restore quantity and is safe to call
// on an item that was never used.
func (s *Store) UndoUse(id int) error {
	query := `UPDATE inventory SET last_used = NULL WHERE id = ?`
	_, err := s.DB.Exec(query, id)
	return err
}

func (s *Store) DeleteItem(id int) error {
	query := `DELETE FROM inventory WHERE id = ?`
	_, err := s.DB.Exec(query, id)
	return err
}

// GetLowStockItems returns every item whose quantity has fallen below its
// minimum threshold.
func (s *Store) GetLowStockItems() ([]models.Item, error) {
	query := `SELECT id, name, quantity, expiry_date, min_quantity, last_used
	          FROM inventory
	          WHERE quantity < min_quantity`
	rows, err := s.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var i models.Item
		if err := rows.Scan(&i.ID, &i.Name, &i.Quantity, &i.ExpiryDate, &i.MinQuantity, &i.LastUsed); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
