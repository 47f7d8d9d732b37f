package models

import (
	"database/sql"
)

// Item is one row of the inventory table.
type Item struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Quantity    int          `json:"quantity"`
	ExpiryDate  string       `json:"expiry_date"` // stored as entered, no format validation
	MinQuantity int          `json:"min_quantity"`
	LastUsed    sql.NullTime `json:"last_used"` // cleared by undo; nothing sets it yet
}

// LowStock reports whether the item belongs on the reorder report.
func (i Item) LowStock() bool {
	return i.Quantity < i.MinQuantity
}

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"` // bcrypt hash
	Role     string `json:"role"`
}

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
