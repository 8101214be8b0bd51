package furniture

import (
	"fmt"
	"log/slog"

	"github.com/c360studio/semlog/events"
	"github.com/c360studio/semlog/scheduler"
)

// DefaultUpdateRate is the sampling period in seconds.
const DefaultUpdateRate = 0.25

// Joint describes a tracked furniture constraint.
type Joint struct {
	Object events.Participant
	Axis   Axis
	// Reference is the closed reading of the joint.
	Reference float64
	// Limit is the opening range; Offset widens it (angular offset of
	// rotational joints).
	Limit  float64
	Offset float64
	// Direction overrides DefaultDirection when non-zero.
	Direction float64
}

// Range returns the effective opening range.
func (j Joint) Range() float64 { return j.Limit + j.Offset }

// Sign returns the direction in use.
func (j Joint) Sign() float64 {
	if j.Direction != 0 {
		return j.Direction
	}
	return DefaultDirection(j.Axis)
}

// Displacement converts a raw reading into an opening displacement.
func (j Joint) Displacement(value float64) float64 {
	return (value - j.Reference) * j.Sign()
}

// Classify returns the state of the joint at value.
func (j Joint) Classify(value float64) State {
	return Classify(j.Displacement(value), j.Range())
}

type tracked struct {
	joint   Joint
	state   State
	hasPrev bool
}

// Classifier keeps the previous state of every tracked joint and turns
// state changes into adjacent FurnitureState intervals.
type Classifier struct {
	reg      *events.Registry
	logger   *slog.Logger
	interval *scheduler.Interval

	joints map[events.Participant]*tracked
	order  []events.Participant
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithUpdateRate sets the sampling period used by Tick.
func WithUpdateRate(dt float64) Option {
	return func(c *Classifier) { c.interval = scheduler.NewInterval(dt) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClassifier creates a classifier recording into reg.
func NewClassifier(reg *events.Registry, opts ...Option) *Classifier {
	c := &Classifier{
		reg:      reg,
		logger:   slog.Default(),
		interval: scheduler.NewInterval(DefaultUpdateRate),
		joints:   make(map[events.Participant]*tracked),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Track starts tracking a joint. Re-tracking an object replaces its joint
// parameters and keeps its current state.
func (c *Classifier) Track(j Joint) error {
	if !j.Object.Valid() {
		return fmt.Errorf("%w: furniture joint", events.ErrMissingIdentity)
	}
	if j.Range() <= 0 {
		return fmt.Errorf("%w: %s range %g", ErrInvalidLimit, j.Object.Name(), j.Range())
	}
	if tr, ok := c.joints[j.Object]; ok {
		tr.joint = j
		return nil
	}
	c.joints[j.Object] = &tracked{joint: j}
	c.order = append(c.order, j.Object)
	c.logger.Debug("Tracking furniture", "object", j.Object.Name(), "axis", j.Axis.String(),
		"range", j.Range(), "direction", j.Sign())
	return nil
}

// Tracked returns the tracked objects in tracking order.
func (c *Classifier) Tracked() []events.Participant {
	out := make([]events.Participant, len(c.order))
	copy(out, c.order)
	return out
}

// State returns the last classified state of object.
func (c *Classifier) State(object events.Participant) (State, bool) {
	tr, ok := c.joints[object]
	if !ok || !tr.hasPrev {
		return Closed, false
	}
	return tr.state, true
}

// Observe classifies one reading. The first reading opens the initial
// state; a different state ends the current interval and begins the next
// one at the same time t. It reports whether an interval was begun.
func (c *Classifier) Observe(t float64, object events.Participant, value float64) (bool, error) {
	tr, ok := c.joints[object]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotTracked, object.Name())
	}

	state := tr.joint.Classify(value)
	if tr.hasPrev && state == tr.state {
		return false, nil
	}

	key := events.Key(events.FurnitureState, object)
	if tr.hasPrev {
		if err := c.reg.End(key, t); err != nil && !events.IsConflict(err) {
			return false, err
		}
	}
	ev := events.Event{
		Kind:         events.FurnitureState,
		Variant:      state.String(),
		Participants: []events.Participant{object},
	}
	if err := c.reg.Begin(key, ev, t); err != nil {
		return false, err
	}

	c.logger.Debug("Furniture state changed", "object", object.Name(),
		"from", tr.state.String(), "to", state.String(), "t", t)
	tr.state = state
	tr.hasPrev = true
	return true, nil
}

// Sample classifies every tracked object that has a reading and returns
// the number of state changes. Objects without a reading keep their state.
func (c *Classifier) Sample(t float64, readings map[events.Participant]float64) int {
	changed := 0
	for _, obj := range c.order {
		v, ok := readings[obj]
		if !ok {
			continue
		}
		ok, err := c.Observe(t, obj, v)
		if err != nil {
			c.logger.Warn("Furniture sample failed", "object", obj.Name(), "error", err)
			continue
		}
		if ok {
			changed++
		}
	}
	return changed
}

// Tick samples readings when the update period has elapsed.
func (c *Classifier) Tick(t float64, readings map[events.Participant]float64) int {
	if !c.interval.Tick(t) {
		return 0
	}
	return c.Sample(t, readings)
}
