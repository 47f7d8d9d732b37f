package store

import "errors"

// ErrNotFound is returned when a row is missing so handlers can flash
// "not found" instead of treating it as a storage failure.
var ErrNotFound = errors.New("store: row not found")

// ErrOutOfStock is returned when a use is attempted against an item whose
// quantity is already zero. The row is left untouched.
var ErrOutOfStock = errors.New("store: item out of stock")
