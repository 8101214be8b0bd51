package candidate

import (
	"math"

	"github.com/c360studio/semlog/events"
)

// Verdict is the outcome of a stability test.
type Verdict int

const (
	// Pending keeps the candidate pooled for the next evaluation.
	Pending Verdict = iota
	// Confirm promotes with participants (self, other).
	Confirm
	// ConfirmReversed promotes with participants (other, self).
	ConfirmReversed
)

func (v Verdict) String() string {
	switch v {
	case Confirm:
		return "confirm"
	case ConfirmReversed:
		return "confirm_reversed"
	default:
		return "pending"
	}
}

// Candidate is a participant in raw contact with the evaluator's owner.
type Candidate struct {
	Other events.Participant
	Since float64
}

// Stability decides whether a candidate has become a confirmed event.
type Stability func(self events.Participant, c Candidate, now float64) Verdict

// MinContact confirms candidates in contact for at least seconds.
func MinContact(seconds float64) Stability {
	return func(_ events.Participant, c Candidate, now float64) Verdict {
		if now-c.Since >= seconds {
			return Confirm
		}
		return Pending
	}
}

// Kinematics is the sampled vertical state of a participant.
type Kinematics struct {
	// Z is the height of the participant.
	Z float64
	// VZ is the vertical speed.
	VZ float64
	// Surface marks overlap areas placed on top of supporting objects.
	Surface bool
}

// KinematicsSource reports the kinematics of a participant.
type KinematicsSource interface {
	Kinematics(p events.Participant) (Kinematics, bool)
}

// VerticalSpeed confirms candidates whose vertical speed differs from the
// owner's by less than threshold. When the other side is a surface area the
// higher participant is the supported one; otherwise the owner is.
func VerticalSpeed(src KinematicsSource, threshold float64) Stability {
	return func(self events.Participant, c Candidate, _ float64) Verdict {
		ks, ok := src.Kinematics(self)
		if !ok {
			return Pending
		}
		ko, ok := src.Kinematics(c.Other)
		if !ok {
			return Pending
		}
		if math.Abs(ks.VZ-ko.VZ) >= threshold {
			return Pending
		}
		if ko.Surface && ks.Z <= ko.Z {
			return ConfirmReversed
		}
		return Confirm
	}
}

// All confirms once every predicate confirms. The orientation is reversed
// when any predicate reverses it.
func All(preds ...Stability) Stability {
	return func(self events.Participant, c Candidate, now float64) Verdict {
		out := Confirm
		for _, p := range preds {
			switch p(self, c, now) {
			case Pending:
				return Pending
			case ConfirmReversed:
				out = ConfirmReversed
			}
		}
		return out
	}
}

// KinematicsMap is a KinematicsSource backed by the latest sampled kinematics.
type KinematicsMap struct {
	state map[events.Participant]Kinematics
}

// NewKinematicsMap creates an empty kinematics map.
func NewKinematicsMap() *KinematicsMap {
	return &KinematicsMap{state: make(map[events.Participant]Kinematics)}
}

// Set records the kinematics of p.
func (m *KinematicsMap) Set(p events.Participant, k Kinematics) {
	m.state[p] = k
}

// Kinematics implements KinematicsSource.
func (m *KinematicsMap) Kinematics(p events.Participant) (Kinematics, bool) {
	k, ok := m.state[p]
	return k, ok
}
