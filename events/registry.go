package events

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/c360studio/semlog/naming"
	"github.com/c360studio/semlog/owl"
	"github.com/c360studio/semlog/vocabulary/knowrob"
)

// DefaultNameAttempts bounds suffix regeneration when a generated event
// name is already taken.
const DefaultNameAttempts = 8

// Event describes an interval to open.
type Event struct {
	Kind Kind
	// Variant refines the class of variant kinds (furniture states).
	Variant      string
	Participants []Participant
}

// Fact is an extra kind-specific fact attached to an event on Begin.
// A fact naming a Participant points at that object's individual, which is
// registered like any role participant.
type Fact struct {
	Predicate   owl.PrefixedName
	Object      owl.PrefixedName
	Literal     owl.Literal
	IsLiteral   bool
	Participant *Participant
}

// ResourceFact returns a fact pointing at object.
func ResourceFact(predicate, object owl.PrefixedName) Fact {
	return Fact{Predicate: predicate, Object: object}
}

// LiteralFact returns a fact carrying lit.
func LiteralFact(predicate owl.PrefixedName, lit owl.Literal) Fact {
	return Fact{Predicate: predicate, Literal: lit, IsLiteral: true}
}

// ParticipantFact returns a fact pointing at the individual of p.
func ParticipantFact(predicate owl.PrefixedName, p Participant) Fact {
	return Fact{Predicate: predicate, Participant: &p}
}

// OpenEvent is an event that has started but not ended.
type OpenEvent struct {
	Key          CompositeKey
	Kind         Kind
	Individual   *owl.NamedIndividual
	Participants []owl.PrefixedName
	Start        float64

	seq uint64
}

// ClosedEvent is reported to listeners when an interval closes.
type ClosedEvent struct {
	Key          CompositeKey
	Kind         Kind
	Individual   *owl.NamedIndividual
	Participants []owl.PrefixedName
	Start        float64
	End          float64
	// Forced is set when the event was closed by TerminateAllOpen.
	Forced bool
}

// Name returns the local name of the event individual.
func (c ClosedEvent) Name() string { return c.Individual.Identity().Local }

// Listener receives closed events in closing order.
type Listener func(ClosedEvent)

// Registry is the begin/end pairing state machine of one episode. It is not
// safe for concurrent use; callers drive it from a single timeline.
type Registry struct {
	doc      *owl.Document
	namer    *naming.Namer
	logger   *slog.Logger
	metrics  *Metrics
	attempts int
	mapName  owl.PrefixedName

	open      map[CompositeKey]*OpenEvent
	openNames map[owl.PrefixedName]struct{}
	seq       uint64
	closed    []ClosedEvent
	listeners []Listener

	terminated bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics enables prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithNameAttempts sets how often a colliding event name is regenerated.
func WithNameAttempts(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.attempts = n
		}
	}
}

// WithSemanticMap makes object individuals reference the semantic map
// through knowrob:describedInMap. Without a map, objects reference the
// episode metadata individual through knowrob:inEpisode.
func WithSemanticMap(name owl.PrefixedName) Option {
	return func(r *Registry) { r.mapName = name }
}

// NewRegistry creates a registry writing closed events into doc.
func NewRegistry(doc *owl.Document, namer *naming.Namer, opts ...Option) *Registry {
	r := &Registry{
		doc:       doc,
		namer:     namer,
		logger:    slog.Default(),
		attempts:  DefaultNameAttempts,
		open:      make(map[CompositeKey]*OpenEvent),
		openNames: make(map[owl.PrefixedName]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Document returns the document the registry writes to.
func (r *Registry) Document() *owl.Document { return r.doc }

// OnClose registers a listener for closed events.
func (r *Registry) OnClose(l Listener) {
	r.listeners = append(r.listeners, l)
}

// Begin opens an event for key at start. A key that is already open is a
// conflict: it is logged, ErrConflict is returned and the open event is
// left untouched. Participants without an identity skip the call entirely.
func (r *Registry) Begin(key CompositeKey, ev Event, start float64, extra ...Fact) error {
	if r.terminated {
		return fmt.Errorf("%w: begin %s", ErrTerminated, key)
	}
	if _, ok := r.open[key]; ok {
		r.logger.Warn("Begin on open event ignored", "key", key, "t", start)
		r.metrics.recordConflict(ev.Kind, "begin")
		return fmt.Errorf("%w: %s", ErrConflict, key)
	}

	tmpl, ok := templates[ev.Kind]
	if !ok {
		r.logger.Error("Unknown event kind", "key", key, "kind", ev.Kind)
		return fmt.Errorf("%w: %s", ErrUnknownKind, ev.Kind)
	}
	if len(ev.Participants) != tmpl.Arity() {
		r.logger.Error("Wrong participant count", "key", key, "kind", ev.Kind,
			"want", tmpl.Arity(), "got", len(ev.Participants))
		return fmt.Errorf("%w: %s takes %d, got %d", ErrArity, ev.Kind, tmpl.Arity(), len(ev.Participants))
	}
	for i, p := range ev.Participants {
		if !p.Valid() {
			r.logger.Error("Participant without valid identity, event skipped",
				"key", key, "slot", i, "class", p.Class, "id", p.ID)
			return fmt.Errorf("%w: %s slot %d", ErrMissingIdentity, key, i)
		}
	}
	for _, f := range extra {
		if f.Participant != nil && !f.Participant.Valid() {
			r.logger.Error("Fact participant without identity, event skipped",
				"key", key, "predicate", f.Predicate.QName(), "class", f.Participant.Class, "id", f.Participant.ID)
			return fmt.Errorf("%w: %s fact %s", ErrMissingIdentity, key, f.Predicate.QName())
		}
	}

	class := tmpl.ClassFor(ev.Variant)
	name, err := r.eventName(class.Local)
	if err != nil {
		r.logger.Error("Could not name event", "key", key, "error", err)
		return err
	}

	ids := make([]owl.PrefixedName, len(ev.Participants))
	names := make([]string, len(ev.Participants))
	for i, p := range ev.Participants {
		ids[i] = r.namer.Identity(p.Class, p.ID)
		names[i] = p.Name()
	}

	ind := owl.NewIndividual(name)
	ind.AddResource(knowrob.Type, class)
	ind.AddLiteral(knowrob.TaskContext, owl.StringLiteral(tmpl.TaskContext(ev.Variant, names)))
	ind.AddResource(knowrob.StartTime, r.doc.RegisterTimepoint(start))
	for i, role := range tmpl.Roles {
		ind.AddResource(role, ids[i])
	}
	for _, f := range extra {
		switch {
		case f.IsLiteral:
			ind.AddLiteral(f.Predicate, f.Literal)
		case f.Participant != nil:
			id := r.namer.Identity(f.Participant.Class, f.Participant.ID)
			ind.AddResource(f.Predicate, id)
		default:
			ind.AddResource(f.Predicate, f.Object)
		}
	}

	for i, p := range ev.Participants {
		r.registerObject(ids[i], p)
	}
	for _, f := range extra {
		if f.Participant != nil {
			r.registerObject(r.namer.Identity(f.Participant.Class, f.Participant.ID), *f.Participant)
		}
	}

	r.seq++
	r.open[key] = &OpenEvent{
		Key:          key,
		Kind:         ev.Kind,
		Individual:   ind,
		Participants: ids,
		Start:        start,
		seq:          r.seq,
	}
	r.openNames[name] = struct{}{}
	r.metrics.recordBegin(ev.Kind)
	r.logger.Debug("Event begun", "key", key, "name", name.Local, "t", start)
	return nil
}

// End closes the open event for key at end. Ending a key without an open
// event is logged and returns ErrNotOpen; nothing changes.
func (r *Registry) End(key CompositeKey, end float64) error {
	if _, ok := r.open[key]; !ok {
		r.logger.Error("Ending an event that never started", "key", key, "t", end)
		r.metrics.recordConflict(key.Kind(), "end")
		return fmt.Errorf("%w: %s", ErrNotOpen, key)
	}
	return r.close(key, end, false)
}

// TerminateAllOpen closes every open event at end, in begin order, and
// returns how many were closed. Later calls do nothing.
func (r *Registry) TerminateAllOpen(end float64) int {
	if r.terminated {
		return 0
	}
	r.terminated = true

	pending := make([]*OpenEvent, 0, len(r.open))
	for _, oe := range r.open {
		pending = append(pending, oe)
	}
	slices.SortFunc(pending, func(a, b *OpenEvent) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})

	n := 0
	for _, oe := range pending {
		if err := r.close(oe.Key, end, true); err != nil {
			r.logger.Error("Failed to terminate event", "key", oe.Key, "error", err)
			continue
		}
		n++
	}
	if n > 0 {
		r.logger.Info("Terminated open events", "count", n, "t", end)
	}
	return n
}

func (r *Registry) close(key CompositeKey, end float64, forced bool) error {
	oe := r.open[key]
	delete(r.open, key)
	delete(r.openNames, oe.Individual.Identity())

	if end < oe.Start {
		r.logger.Warn("Event ends before it starts", "key", key, "start", oe.Start, "end", end)
	}

	oe.Individual.AddResource(knowrob.EndTime, r.doc.RegisterTimepoint(end))
	if err := r.doc.AddIndividual(oe.Individual); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	if md := r.doc.Metadata(); md != nil {
		md.AddResource(knowrob.SubAction, oe.Individual.Identity())
	}

	ce := ClosedEvent{
		Key:          key,
		Kind:         oe.Kind,
		Individual:   oe.Individual,
		Participants: oe.Participants,
		Start:        oe.Start,
		End:          end,
		Forced:       forced,
	}
	r.closed = append(r.closed, ce)
	r.metrics.recordClose(oe.Kind, forced)
	r.logger.Debug("Event closed", "key", key, "name", ce.Name(), "t", end, "forced", forced)

	for _, l := range r.listeners {
		l(ce)
	}
	return nil
}

// eventName generates an anonymous event name not used by any open or
// closed individual.
func (r *Registry) eventName(class string) (owl.PrefixedName, error) {
	var name owl.PrefixedName
	for range r.attempts {
		name = r.namer.EventName(class)
		if _, open := r.openNames[name]; !open && !r.doc.HasIndividual(name) {
			return name, nil
		}
	}
	return name, fmt.Errorf("%w: %s after %d attempts", owl.ErrDuplicateIndividual, name, r.attempts)
}

func (r *Registry) registerObject(id owl.PrefixedName, p Participant) {
	facts := []owl.Triple{owl.NewResourceTriple(id, knowrob.Type, knowrob.ObjectClass(p.Class))}
	switch {
	case !r.mapName.IsZero():
		facts = append(facts, owl.NewResourceTriple(id, knowrob.DescribedInMap, r.mapName))
	case r.doc.Metadata() != nil:
		facts = append(facts, owl.NewResourceTriple(id, knowrob.InEpisode, r.doc.Metadata().Identity()))
	}
	if r.doc.HasObject(id) {
		return
	}
	if _, open := r.openNames[id]; open || !r.doc.RegisterObject(id, facts...) {
		r.logger.Warn("Object identity already used by another individual, object not registered",
			"object", id.Local, "class", p.Class)
		return
	}
	r.logger.Debug("Object registered", "object", id.Local)
}

// IsOpen reports whether key has an open event.
func (r *Registry) IsOpen(key CompositeKey) bool {
	_, ok := r.open[key]
	return ok
}

// Lookup returns the open event for key.
func (r *Registry) Lookup(key CompositeKey) (*OpenEvent, bool) {
	oe, ok := r.open[key]
	return oe, ok
}

// OpenCount returns the number of open events.
func (r *Registry) OpenCount() int { return len(r.open) }

// Closed returns closed events in closing order.
func (r *Registry) Closed() []ClosedEvent {
	out := make([]ClosedEvent, len(r.closed))
	copy(out, r.closed)
	return out
}

// Terminated reports whether TerminateAllOpen ran.
func (r *Registry) Terminated() bool { return r.terminated }
