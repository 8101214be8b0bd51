package episode

import "errors"

var (
	// ErrFinalized is returned by every call after Finalize.
	ErrFinalized = errors.New("episode already finalized")
)
