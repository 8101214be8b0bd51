package owl

import (
	"fmt"
	"strconv"
	"strings"
)

// Declarations are the fixed header blocks of a document.
type Declarations struct {
	// Entities become DOCTYPE ENTITY declarations, enabling &prefix; references.
	Entities Namespaces
	// Namespaces become xmlns attributes on rdf:RDF.
	Namespaces Namespaces
	// Base is the xml:base attribute.
	Base string
	// Ontology is the IRI of the owl:Ontology node.
	Ontology string
	// Imports are owl:imports targets.
	Imports []string
	// Properties are declared as owl:ObjectProperty.
	Properties []PrefixedName
	// Classes are declared as owl:Class.
	Classes []PrefixedName
}

// Config configures a new document.
type Config struct {
	Declarations

	// IndividualPrefix is the entity prefix of every individual (e.g. "log").
	IndividualPrefix string
	// TypePredicate is the class assertion predicate (rdf:type).
	TypePredicate PrefixedName
	// TimepointClass is the class asserted on timepoint individuals.
	TimepointClass PrefixedName
}

// Document is the knowledge graph of one logging episode.
type Document struct {
	cfg Config

	events []*NamedIndividual
	ids    map[PrefixedName]struct{}

	objects   []*NamedIndividual
	objectIdx map[PrefixedName]int

	timepoints   []PrefixedName
	timepointSet map[PrefixedName]struct{}

	metadata *NamedIndividual
	sealed   bool
}

// NewDocument creates an empty document.
func NewDocument(cfg Config) *Document {
	return &Document{
		cfg:          cfg,
		ids:          make(map[PrefixedName]struct{}),
		objectIdx:    make(map[PrefixedName]int),
		timepointSet: make(map[PrefixedName]struct{}),
	}
}

// Config returns the document configuration.
func (d *Document) Config() Config { return d.cfg }

// IndividualName returns the identity of a local individual name.
func (d *Document) IndividualName(local string) PrefixedName {
	return Name(d.cfg.IndividualPrefix, local)
}

// AddIndividual appends a closed event individual. Identities must be unique
// across events, objects, timepoints and the metadata individual.
func (d *Document) AddIndividual(ind *NamedIndividual) error {
	if d.sealed {
		return ErrSealed
	}
	if d.HasIndividual(ind.Identity()) {
		return fmt.Errorf("%w: %s", ErrDuplicateIndividual, ind.Identity())
	}
	d.events = append(d.events, ind)
	d.ids[ind.Identity()] = struct{}{}
	return nil
}

// HasIndividual reports whether identity is already used in the document.
func (d *Document) HasIndividual(identity PrefixedName) bool {
	if _, ok := d.ids[identity]; ok {
		return true
	}
	if _, ok := d.objectIdx[identity]; ok {
		return true
	}
	if _, ok := d.timepointSet[identity]; ok {
		return true
	}
	return d.metadata != nil && d.metadata.Identity() == identity
}

// RegisterObject adds an object individual the first time its identity is
// seen. Facts are only recorded on first registration. It reports whether
// the object was newly added; an identity already used by any individual
// is never added again.
func (d *Document) RegisterObject(identity PrefixedName, facts ...Triple) bool {
	if d.sealed {
		return false
	}
	if d.HasIndividual(identity) {
		return false
	}
	obj := NewIndividual(identity)
	for _, f := range facts {
		if err := obj.AddFact(f); err != nil {
			continue
		}
	}
	d.objectIdx[identity] = len(d.objects)
	d.objects = append(d.objects, obj)
	return true
}

// HasObject reports whether identity was registered as an object.
func (d *Document) HasObject(identity PrefixedName) bool {
	_, ok := d.objectIdx[identity]
	return ok
}

// RegisterTimepoint records a timestamp and returns the shared timepoint
// identity referenced by start and end facts.
func (d *Document) RegisterTimepoint(seconds float64) PrefixedName {
	name := d.IndividualName(TimepointLocalName(seconds))
	if d.sealed {
		return name
	}
	if _, ok := d.timepointSet[name]; !ok {
		d.timepointSet[name] = struct{}{}
		d.timepoints = append(d.timepoints, name)
	}
	return name
}

// SetMetadata installs the episode metadata individual, rendered last.
func (d *Document) SetMetadata(ind *NamedIndividual) {
	d.metadata = ind
}

// Metadata returns the episode metadata individual, or nil.
func (d *Document) Metadata() *NamedIndividual { return d.metadata }

// Events returns the closed event individuals in insertion order.
func (d *Document) Events() []*NamedIndividual {
	out := make([]*NamedIndividual, len(d.events))
	copy(out, d.events)
	return out
}

// Objects returns the object individuals in registration order.
func (d *Document) Objects() []*NamedIndividual {
	out := make([]*NamedIndividual, len(d.objects))
	copy(out, d.objects)
	return out
}

// Timepoints returns one individual per registered timepoint, in
// registration order.
func (d *Document) Timepoints() []*NamedIndividual {
	out := make([]*NamedIndividual, 0, len(d.timepoints))
	for _, name := range d.timepoints {
		tp := NewIndividual(name)
		tp.AddResource(d.cfg.TypePredicate, d.cfg.TimepointClass)
		out = append(out, tp)
	}
	return out
}

// TimepointNames returns the registered timepoint identities.
func (d *Document) TimepointNames() []PrefixedName {
	out := make([]PrefixedName, len(d.timepoints))
	copy(out, d.timepoints)
	return out
}

// Seal marks the document as complete. Later mutations are rejected.
func (d *Document) Seal() { d.sealed = true }

// Sealed reports whether Seal was called.
func (d *Document) Sealed() bool { return d.sealed }

// Individuals returns every individual in rendering order: events, objects,
// timepoints, metadata.
func (d *Document) Individuals() []*NamedIndividual {
	out := make([]*NamedIndividual, 0, len(d.events)+len(d.objects)+len(d.timepoints)+1)
	out = append(out, d.events...)
	out = append(out, d.objects...)
	out = append(out, d.Timepoints()...)
	if d.metadata != nil {
		out = append(out, d.metadata)
	}
	return out
}

// TimepointLocalName formats a timestamp as timepoint_<seconds>. Whole
// seconds keep a trailing ".0" so 5 renders as timepoint_5.0.
func TimepointLocalName(seconds float64) string {
	s := strconv.FormatFloat(seconds, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEN") {
		s += ".0"
	}
	return "timepoint_" + s
}
