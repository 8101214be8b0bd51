// Package candidate gates events that need stable evidence. Raw overlap
// signals add candidates to a pool; a periodic evaluation promotes the
// candidates that pass a stability test into the event registry.
package candidate

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/c360studio/semlog/events"
	"github.com/c360studio/semlog/scheduler"
)

// Defaults follow the supported-by detector: a 0.5 vertical speed
// threshold evaluated every few ticks.
const (
	DefaultSpeedThreshold = 0.5
	DefaultEvaluateEvery  = 1
)

// Evaluator owns the candidate pool of one participant.
type Evaluator struct {
	self     events.Participant
	kind     events.Kind
	reg      *events.Registry
	stable   Stability
	schedule *scheduler.Every
	logger   *slog.Logger

	pool      []*Candidate
	confirmed map[events.Participant]events.CompositeKey
	confOrder []events.Participant
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithKind sets the event kind promoted candidates open.
func WithKind(k events.Kind) Option {
	return func(e *Evaluator) { e.kind = k }
}

// WithStability sets the stability predicate.
func WithStability(s Stability) Option {
	return func(e *Evaluator) { e.stable = s }
}

// WithEvery evaluates the pool on every nth tick.
func WithEvery(n int) Option {
	return func(e *Evaluator) { e.schedule = scheduler.NewEvery(n) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEvaluator creates an evaluator for self. Without options it promotes
// SupportedBy events after candidates stay in contact for one tick period.
func NewEvaluator(reg *events.Registry, self events.Participant, opts ...Option) *Evaluator {
	e := &Evaluator{
		self:      self,
		kind:      events.SupportedBy,
		reg:       reg,
		stable:    MinContact(0),
		schedule:  scheduler.NewEvery(DefaultEvaluateEvery),
		logger:    slog.Default(),
		confirmed: make(map[events.Participant]events.CompositeKey),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnRawOverlapBegin pools other unless it is already pooled or confirmed.
// It reports whether other was added.
func (e *Evaluator) OnRawOverlapBegin(other events.Participant, t float64) bool {
	if other == e.self || e.pooled(other) >= 0 {
		return false
	}
	if _, ok := e.confirmed[other]; ok {
		return false
	}
	e.pool = append(e.pool, &Candidate{Other: other, Since: t})
	return true
}

// OnRawOverlapEnd drops other from the pool, or ends its confirmed event.
func (e *Evaluator) OnRawOverlapEnd(other events.Participant, t float64) error {
	if key, ok := e.confirmed[other]; ok {
		e.unconfirm(other)
		return e.reg.End(key, t)
	}
	if i := e.pooled(other); i >= 0 {
		e.pool = slices.Delete(e.pool, i, i+1)
	}
	return nil
}

// Tick advances the evaluation schedule and, when due, evaluates the pool.
// It returns the number of promoted candidates.
func (e *Evaluator) Tick(t float64) int {
	if !e.schedule.Tick() {
		return 0
	}
	return e.Evaluate(t)
}

// Evaluate tests every pooled candidate now. Passing candidates leave the
// pool and open an event; the rest stay pooled.
func (e *Evaluator) Evaluate(t float64) int {
	promoted := 0
	kept := e.pool[:0]
	for _, c := range e.pool {
		verdict := e.stable(e.self, *c, t)
		if verdict == Pending {
			kept = append(kept, c)
			continue
		}
		if e.promote(c.Other, verdict, t) {
			promoted++
		}
	}
	clear(e.pool[len(kept):])
	e.pool = kept
	return promoted
}

func (e *Evaluator) promote(other events.Participant, v Verdict, t float64) bool {
	participants := []events.Participant{e.self, other}
	if v == ConfirmReversed {
		participants = []events.Participant{other, e.self}
	}
	ev := events.Event{Kind: e.kind, Participants: participants}
	key := events.KeyOf(ev)

	if err := e.reg.Begin(key, ev, t); err != nil {
		if errors.Is(err, events.ErrConflict) {
			// The other side's evaluator already confirmed this pair.
			e.logger.Debug("Candidate already confirmed elsewhere", "key", key)
		}
		return false
	}
	e.confirmed[other] = key
	e.confOrder = append(e.confOrder, other)
	e.logger.Debug("Candidate promoted", "key", key, "verdict", v.String(), "t", t)
	return true
}

// FinishAll drops every candidate and ends every confirmed event at t. It
// returns how many events were ended.
func (e *Evaluator) FinishAll(t float64) int {
	clear(e.pool)
	e.pool = e.pool[:0]

	n := 0
	for _, other := range slices.Clone(e.confOrder) {
		key := e.confirmed[other]
		e.unconfirm(other)
		if err := e.reg.End(key, t); err != nil {
			e.logger.Debug("Confirmed event already closed", "key", key, "error", err)
			continue
		}
		n++
	}
	return n
}

// PoolSize returns the number of pooled candidates.
func (e *Evaluator) PoolSize() int { return len(e.pool) }

// Pooled reports whether other is a pooled candidate.
func (e *Evaluator) Pooled(other events.Participant) bool { return e.pooled(other) >= 0 }

// Confirmed reports whether other has an open confirmed event.
func (e *Evaluator) Confirmed(other events.Participant) bool {
	_, ok := e.confirmed[other]
	return ok
}

func (e *Evaluator) pooled(other events.Participant) int {
	return slices.IndexFunc(e.pool, func(c *Candidate) bool { return c.Other == other })
}

func (e *Evaluator) unconfirm(other events.Participant) {
	delete(e.confirmed, other)
	if i := slices.Index(e.confOrder, other); i >= 0 {
		e.confOrder = slices.Delete(e.confOrder, i, i+1)
	}
}
