package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when an episode is not found.
	ErrNotFound = errors.New("episode not found")
)
