package events

import "errors"

// Registry errors. ErrConflict and ErrNotOpen are expected from noisy
// signal sources and never abort an episode.
var (
	// ErrConflict is returned by Begin when the key already has an open event.
	ErrConflict = errors.New("event already open")

	// ErrNotOpen is returned by End when the key has no open event.
	ErrNotOpen = errors.New("event was never started")

	// ErrMissingIdentity is returned when a participant has no class or id,
	// or either contains ':'.
	ErrMissingIdentity = errors.New("participant has no identity")

	// ErrUnknownKind is returned for kinds without a template.
	ErrUnknownKind = errors.New("unknown event kind")

	// ErrArity is returned when the participant count does not match the kind.
	ErrArity = errors.New("wrong number of participants")

	// ErrTerminated is returned by Begin after TerminateAllOpen ran.
	ErrTerminated = errors.New("registry terminated")
)

// IsConflict reports whether err is a begin/end pairing conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrNotOpen)
}
