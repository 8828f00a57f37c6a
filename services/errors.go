package services

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyIdentifier is returned before any query when no identifier was supplied.
	ErrEmptyIdentifier = errors.New("table identifier is required (table, tableId, or id)")
	ErrTableNotFound   = errors.New("table not found")
)

// NotFoundError records what was searched for and how.
type NotFoundError struct {
	SearchedFor string
	SearchType  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("table not found: %q (searched by %s)", e.SearchedFor, e.SearchType)
}

func (e *NotFoundError) Unwrap() error {
	return ErrTableNotFound
}
