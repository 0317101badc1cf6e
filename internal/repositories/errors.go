package repositories

import "errors"

// ErrNotFound is returned when a document or ledger row does not exist,
// regardless of which store backs the repository.
var ErrNotFound = errors.New("not found")
