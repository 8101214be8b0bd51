package episode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/c360studio/semlog/candidate"
	"github.com/c360studio/semlog/events"
	"github.com/c360studio/semlog/furniture"
	"github.com/c360studio/semlog/naming"
	"github.com/c360studio/semlog/owl"
	"github.com/c360studio/semlog/timeline"
	"github.com/c360studio/semlog/trace"
	"github.com/c360studio/semlog/vocabulary/knowrob"
)

// MetadataClass is the local class name of the episode individual.
const MetadataClass = "UnrealExperiment"

// Result is the sealed outcome of an episode handed to sinks.
type Result struct {
	EpisodeID string
	Document  *owl.Document
	Rows      []timeline.Row
	Start     float64
	End       float64
	// Forced counts events closed by termination.
	Forced int
}

// Events returns the number of event individuals.
func (r *Result) Events() int { return len(r.Document.Events()) }

// Objects returns the number of object individuals.
func (r *Result) Objects() int { return len(r.Document.Objects()) }

// Logger owns the registry and detectors of one episode.
type Logger struct {
	mu sync.Mutex

	id     string
	logger *slog.Logger
	doc    *owl.Document
	reg    *events.Registry

	kinds map[events.Kind]bool

	support    []candidate.Option
	kinematics *candidate.KinematicsMap
	evaluators map[events.Participant]*candidate.Evaluator
	evalOrder  []events.Participant

	furniture *furniture.Classifier
	readings  map[events.Participant]float64

	recorder *timeline.Recorder
	sinks    []Sink

	started   bool
	start     float64
	finalized bool
	result    *Result
}

type settings struct {
	logger       *slog.Logger
	metrics      *events.Metrics
	semanticMap  string
	suffixLength int
	nameAttempts int
	source       naming.Source
	kinds        []events.Kind
	threshold    float64
	every        int
	minContact   float64
	updateRate   float64
	sinks        []Sink
	listeners    []events.Listener
}

// Option configures a Logger.
type Option func(*settings)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records registry metrics.
func WithMetrics(m *events.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithSemanticMap names the semantic map individual (u-map namespace).
func WithSemanticMap(local string) Option {
	return func(s *settings) { s.semanticMap = local }
}

// WithSuffixLength sets the anonymous event suffix length.
func WithSuffixLength(n int) Option {
	return func(s *settings) { s.suffixLength = n }
}

// WithNameAttempts bounds event name regeneration.
func WithNameAttempts(n int) Option {
	return func(s *settings) { s.nameAttempts = n }
}

// WithNameSource replaces the random source of event suffixes.
func WithNameSource(src naming.Source) Option {
	return func(s *settings) { s.source = src }
}

// WithKinds restricts begin records to kinds. No kinds means all.
func WithKinds(kinds ...events.Kind) Option {
	return func(s *settings) { s.kinds = kinds }
}

// WithSupport configures supported-by evaluation.
func WithSupport(threshold float64, every int, minContact float64) Option {
	return func(s *settings) {
		s.threshold = threshold
		s.every = every
		s.minContact = minContact
	}
}

// WithUpdateRate sets the furniture sampling period.
func WithUpdateRate(dt float64) Option {
	return func(s *settings) { s.updateRate = dt }
}

// WithSinks adds finalize sinks, called in order.
func WithSinks(sinks ...Sink) Option {
	return func(s *settings) { s.sinks = append(s.sinks, sinks...) }
}

// WithListener is notified of every closed event.
func WithListener(l events.Listener) Option {
	return func(s *settings) { s.listeners = append(s.listeners, l) }
}

// New creates the logger of episode id. An empty id generates one.
func New(id string, opts ...Option) *Logger {
	s := settings{
		logger:       slog.Default(),
		suffixLength: naming.DefaultSuffixLength,
		threshold:    candidate.DefaultSpeedThreshold,
		every:        candidate.DefaultEvaluateEvery,
		updateRate:   furniture.DefaultUpdateRate,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if id == "" {
		id = naming.NewEpisodeID()
	}

	doc := owl.NewDocument(knowrob.DocumentConfig())
	md := owl.NewIndividual(doc.IndividualName(MetadataClass + "_" + id))
	md.AddResource(knowrob.Type, knowrob.UnrealExperiment)
	md.AddLiteral(knowrob.Experiment, owl.StringLiteral(id))
	doc.SetMetadata(md)

	namerOpts := []naming.Option{naming.WithSuffixLength(s.suffixLength)}
	if s.source != nil {
		namerOpts = append(namerOpts, naming.WithSource(s.source))
	}
	regOpts := []events.Option{
		events.WithLogger(s.logger),
		events.WithMetrics(s.metrics),
		events.WithNameAttempts(s.nameAttempts),
	}
	if s.semanticMap != "" {
		mapName := owl.Name(knowrob.PrefixUMap, s.semanticMap)
		md.AddResource(knowrob.SemanticMap, mapName)
		regOpts = append(regOpts, events.WithSemanticMap(mapName))
	}
	reg := events.NewRegistry(doc, naming.NewNamer(knowrob.PrefixLog, namerOpts...), regOpts...)

	l := &Logger{
		id:         id,
		logger:     s.logger.With("episode", id),
		doc:        doc,
		reg:        reg,
		kinematics: candidate.NewKinematicsMap(),
		evaluators: make(map[events.Participant]*candidate.Evaluator),
		readings:   make(map[events.Participant]float64),
		recorder:   timeline.NewRecorder(),
		sinks:      s.sinks,
	}
	if len(s.kinds) > 0 {
		l.kinds = make(map[events.Kind]bool, len(s.kinds))
		for _, k := range s.kinds {
			l.kinds[k] = true
		}
	}
	l.support = []candidate.Option{
		candidate.WithEvery(s.every),
		candidate.WithLogger(l.logger),
		candidate.WithStability(candidate.All(
			candidate.MinContact(s.minContact),
			candidate.VerticalSpeed(l.kinematics, s.threshold),
		)),
	}
	l.furniture = furniture.NewClassifier(reg,
		furniture.WithUpdateRate(s.updateRate),
		furniture.WithLogger(l.logger),
	)

	reg.OnClose(l.recorder.Record)
	for _, ln := range s.listeners {
		reg.OnClose(ln)
	}
	return l
}

// ID returns the episode tag.
func (l *Logger) ID() string { return l.id }

// Document returns the episode document. It is read-only once finalized.
func (l *Logger) Document() *owl.Document { return l.doc }

// OnClose adds a closed event listener.
func (l *Logger) OnClose(ln events.Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reg.OnClose(ln)
}

// OpenCount returns the number of open events.
func (l *Logger) OpenCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reg.OpenCount()
}

// Rows returns the closed intervals so far.
func (l *Logger) Rows() []timeline.Row { return l.recorder.Rows() }

// Start records the episode start time. Later calls are ignored.
func (l *Logger) Start(t float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.finalized {
		return ErrFinalized
	}
	l.startAt(t)
	return nil
}

func (l *Logger) startAt(t float64) {
	if l.started {
		return
	}
	l.started = true
	l.start = t
	l.doc.Metadata().AddResource(knowrob.StartTime, l.doc.RegisterTimepoint(t))
	l.logger.Info("Episode started", "t", t)
}

// Begin opens an event. Kinds filtered out by WithKinds are dropped.
func (l *Logger) Begin(ev events.Event, t float64, extra ...events.Fact) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.finalized {
		return ErrFinalized
	}
	l.startAt(t)
	return l.begin(ev, t, extra...)
}

func (l *Logger) begin(ev events.Event, t float64, extra ...events.Fact) error {
	if l.kinds != nil && !l.kinds[ev.Kind] {
		l.logger.Debug("Event kind disabled", "kind", ev.Kind)
		return nil
	}
	return l.reg.Begin(events.KeyOf(ev), ev, t, extra...)
}

// End closes an event.
func (l *Logger) End(ev events.Event, t float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.finalized {
		return ErrFinalized
	}
	return l.end(ev, t)
}

func (l *Logger) end(ev events.Event, t float64) error {
	if l.kinds != nil && !l.kinds[ev.Kind] {
		return nil
	}
	return l.reg.End(events.KeyOf(ev), t)
}

// evaluator returns the supported-by evaluator of self, creating it.
func (l *Logger) evaluator(self events.Participant) *candidate.Evaluator {
	if e, ok := l.evaluators[self]; ok {
		return e
	}
	e := candidate.NewEvaluator(l.reg, self, l.support...)
	l.evaluators[self] = e
	l.evalOrder = append(l.evalOrder, self)
	return e
}

func (l *Logger) supportEnabled() bool {
	return l.kinds == nil || l.kinds[events.SupportedBy]
}

// Tick advances evaluators and samples furniture at t.
func (l *Logger) Tick(t float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.finalized {
		return ErrFinalized
	}
	l.startAt(t)
	l.tick(t)
	return nil
}

func (l *Logger) tick(t float64) {
	for _, self := range l.evalOrder {
		l.evaluators[self].Tick(t)
	}
	if l.kinds == nil || l.kinds[events.FurnitureState] {
		l.furniture.Tick(t, l.readings)
	}
}

// Apply dispatches one trace record. A finalize record finalizes the
// episode with ctx.
func (l *Logger) Apply(ctx context.Context, rec trace.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.Type == trace.TypeFinalize {
		_, err := l.Finalize(ctx, rec.T)
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.finalized {
		return ErrFinalized
	}
	l.startAt(rec.T)

	switch rec.Type {
	case trace.TypeBegin, trace.TypeEnd:
		ev, err := rec.Event()
		if err != nil {
			return err
		}
		if rec.Type == trace.TypeBegin {
			return l.begin(ev, rec.T, rec.Facts()...)
		}
		return l.end(ev, rec.T)

	case trace.TypeOverlapBegin:
		if l.supportEnabled() {
			l.evaluator(*rec.Self).OnRawOverlapBegin(*rec.Other, rec.T)
		}
	case trace.TypeOverlapEnd:
		if l.supportEnabled() {
			return l.evaluator(*rec.Self).OnRawOverlapEnd(*rec.Other, rec.T)
		}
	case trace.TypeKinematics:
		l.kinematics.Set(*rec.Object, candidate.Kinematics{Z: rec.Z, VZ: rec.VZ, Surface: rec.Surface})
	case trace.TypeJoint:
		axis, err := furniture.ParseAxis(rec.Axis)
		if err != nil {
			return err
		}
		return l.furniture.Track(furniture.Joint{
			Object:    *rec.Object,
			Axis:      axis,
			Reference: rec.Reference,
			Limit:     rec.Limit,
			Offset:    rec.Offset,
			Direction: rec.Direction,
		})
	case trace.TypeSample:
		l.readings[*rec.Object] = rec.Value
	case trace.TypeTick:
		l.tick(rec.T)
	}
	return nil
}

// Finalize ends every evaluator-confirmed event, force-terminates the
// remaining open events at t, seals the document and hands it to the sinks.
// Sink failures are logged and joined into the returned error; the result
// is valid either way. A second call returns ErrFinalized.
func (l *Logger) Finalize(ctx context.Context, t float64) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.finalized {
		return nil, ErrFinalized
	}
	l.finalized = true
	l.startAt(t)

	for _, self := range l.evalOrder {
		l.evaluators[self].FinishAll(t)
	}
	forced := l.reg.TerminateAllOpen(t)
	l.doc.Metadata().AddResource(knowrob.EndTime, l.doc.RegisterTimepoint(t))
	l.doc.Seal()

	res := &Result{
		EpisodeID: l.id,
		Document:  l.doc,
		Rows:      l.recorder.Rows(),
		Start:     l.start,
		End:       t,
		Forced:    forced,
	}
	l.result = res
	l.logger.Info("Episode finalized", "t", t, "events", res.Events(),
		"objects", res.Objects(), "forced", forced)

	var errs []error
	for _, s := range slices.Clone(l.sinks) {
		if err := s.Consume(ctx, res); err != nil {
			l.logger.Error("Sink failed", "sink", s.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return res, errors.Join(errs...)
}

// Finalized reports whether Finalize was called.
func (l *Logger) Finalized() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.finalized
}

// Result returns the finalize result, nil before Finalize.
func (l *Logger) Result() *Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.result
}
