// Package furniture classifies articulated furniture (drawers, doors) into
// discrete open/closed states and records every state as an event interval.
package furniture

import (
	"fmt"
	"strings"
)

// State is a discrete furniture state. States are ordered from closed to
// opened.
type State int

// Furniture states.
const (
	Closed State = iota
	HalfClosed
	HalfOpened
	Opened
)

var stateNames = [...]string{"Closed", "HalfClosed", "HalfOpened", "Opened"}

func (s State) String() string {
	if s < Closed || s > Opened {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Band thresholds as fractions of the joint limit.
const (
	HalfClosedAt = 0.1
	HalfOpenedAt = 0.5
	OpenedAt     = 0.9
)

// Classify maps a displacement d in [0, limit] to a state:
// below 0.1 limit Closed, below 0.5 HalfClosed, below 0.9 HalfOpened,
// otherwise Opened. Displacements outside the range clamp to the end bands.
func Classify(d, limit float64) State {
	switch {
	case d < HalfClosedAt*limit:
		return Closed
	case d < HalfOpenedAt*limit:
		return HalfClosed
	case d < OpenedAt*limit:
		return HalfOpened
	default:
		return Opened
	}
}

// Axis is the constrained degree of freedom of a joint.
type Axis int

// Joint axes.
const (
	Linear Axis = iota
	Swing1
	Swing2
)

func (a Axis) String() string {
	switch a {
	case Linear:
		return "linear"
	case Swing1:
		return "swing1"
	case Swing2:
		return "swing2"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// ParseAxis parses linear, swing1 or swing2.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "":
		return Linear, nil
	case "swing1":
		return Swing1, nil
	case "swing2":
		return Swing2, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAxis, s)
}

// DefaultDirection is the sign turning a raw joint reading into an opening
// displacement. Swing2 joints open towards negative angles.
// TODO: confirm the Swing2 inversion against more furniture models; it was
// observed empirically and no general rule is known.
func DefaultDirection(a Axis) float64 {
	if a == Swing2 {
		return -1
	}
	return 1
}
