package furniture

import "errors"

// Classifier errors.
var (
	// ErrInvalidLimit is returned when a joint has no positive range.
	ErrInvalidLimit = errors.New("joint limit must be positive")

	// ErrUnknownAxis is returned for unrecognized axis names.
	ErrUnknownAxis = errors.New("unknown joint axis")

	// ErrNotTracked is returned when a reading names an untracked object.
	ErrNotTracked = errors.New("object is not tracked")
)
