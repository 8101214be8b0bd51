package events

import (
	"strings"

	"github.com/c360studio/semlog/owl"
	"github.com/c360studio/semlog/vocabulary/knowrob"
)

// Kind identifies an event type.
type Kind string

// Event kinds.
const (
	Contact        Kind = "Contact"
	Grasp          Kind = "Grasp"
	Container      Kind = "Container"
	SupportedBy    Kind = "SupportedBy"
	FurnitureState Kind = "FurnitureState"
	Reach          Kind = "Reach"
	Transport      Kind = "Transport"
	PickUp         Kind = "PickUp"
	PutDown        Kind = "PutDown"
	Slicing        Kind = "Slicing"
	Sliding        Kind = "Sliding"

	PreGrasp            Kind = "PreGrasp"
	PreGraspPositioning Kind = "PreGraspPositioning"
)

// Template declares the facts of an event kind.
type Template struct {
	Kind Kind

	// Class is asserted with rdf:type. When VariantClass is set the event's
	// Variant is appended to the local name (FurnitureState + Opened).
	Class        owl.PrefixedName
	VariantClass bool

	// Context prefixes the knowrob:taskContext literal.
	Context string

	// Roles holds one predicate per participant slot.
	Roles []owl.PrefixedName

	// Symmetric kinds treat participant order as irrelevant for keys.
	Symmetric bool
}

// Arity is the number of participants the kind takes.
func (t Template) Arity() int { return len(t.Roles) }

// ClassFor returns the class asserted for variant.
func (t Template) ClassFor(variant string) owl.PrefixedName {
	if !t.VariantClass {
		return t.Class
	}
	return owl.Name(t.Class.Prefix, t.Class.Local+variant)
}

// TaskContext renders Context[Variant]-<p1>-<p2>...
func (t Template) TaskContext(variant string, names []string) string {
	var sb strings.Builder
	sb.WriteString(t.Context)
	sb.WriteString(variant)
	for _, n := range names {
		sb.WriteByte('-')
		sb.WriteString(n)
	}
	return sb.String()
}

var templates = map[Kind]Template{
	Contact: {
		Kind:      Contact,
		Class:     knowrob.TouchingSituation,
		Context:   "Contact",
		Roles:     []owl.PrefixedName{knowrob.InContact, knowrob.InContact},
		Symmetric: true,
	},
	Grasp: {
		Kind:    Grasp,
		Class:   knowrob.GraspingSomething,
		Context: "Grasp",
		Roles:   []owl.PrefixedName{knowrob.PerformedBy, knowrob.ObjectActedOn},
	},
	Container: {
		Kind:    Container,
		Class:   knowrob.ContainerManipulation,
		Context: "Container",
		Roles:   []owl.PrefixedName{knowrob.PerformedBy, knowrob.ObjectActedOn},
	},
	SupportedBy: {
		Kind:    SupportedBy,
		Class:   knowrob.SupportedBySituation,
		Context: "SupportedBy",
		Roles:   []owl.PrefixedName{knowrob.IsSupported, knowrob.IsSupporting},
	},
	FurnitureState: {
		Kind:         FurnitureState,
		Class:        owl.Name(knowrob.PrefixKnowRobU, knowrob.FurnitureStatePrefix),
		VariantClass: true,
		Context:      "FurnitureState",
		Roles:        []owl.PrefixedName{knowrob.ObjectActedOn},
	},
	Reach: {
		Kind:    Reach,
		Class:   knowrob.ReachingForSomething,
		Context: "Reach",
		Roles:   []owl.PrefixedName{knowrob.PerformedBy, knowrob.ObjectActedOn},
	},
	Transport: {
		Kind:    Transport,
		Class:   knowrob.TransportingSituation,
		Context: "Transport",
		Roles:   []owl.PrefixedName{knowrob.PerformedBy, knowrob.ObjectActedOn},
	},
	PickUp: {
		Kind:    PickUp,
		Class:   knowrob.PickUpSituation,
		Context: "PickUp",
		Roles:   []owl.PrefixedName{knowrob.PerformedBy, knowrob.ObjectActedOn},
	},
	PutDown: {
		Kind:    PutDown,
		Class:   knowrob.PutDownSituation,
		Context: "PutDown",
		Roles:   []owl.PrefixedName{knowrob.PerformedBy, knowrob.ObjectActedOn},
	},
	Slicing: {
		Kind:    Slicing,
		Class:   knowrob.SlicingSomething,
		Context: "Slicing",
		Roles:   []owl.PrefixedName{knowrob.PerformedBy, knowrob.DeviceUsed, knowrob.ObjectActedOn},
	},
	Sliding: {
		Kind:    Sliding,
		Class:   knowrob.SlidingSituation,
		Context: "Sliding",
		Roles:   []owl.PrefixedName{knowrob.PerformedBy, knowrob.ObjectActedOn},
	},
	PreGrasp: {
		Kind:    PreGrasp,
		Class:   knowrob.PreGraspClass,
		Context: "PreGrasp",
		Roles:   []owl.PrefixedName{knowrob.PerformedBy, knowrob.ObjectActedOn},
	},
	PreGraspPositioning: {
		Kind:    PreGraspPositioning,
		Class:   knowrob.PreGraspPositioningClass,
		Context: "PreGraspPositioning",
		Roles:   []owl.PrefixedName{knowrob.PerformedBy, knowrob.ObjectActedOn},
	},
}

// TemplateFor returns the template of kind.
func TemplateFor(kind Kind) (Template, bool) {
	t, ok := templates[kind]
	return t, ok
}

// Kinds lists every known kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		Contact, Grasp, Container, SupportedBy, FurnitureState, Reach, Transport,
		PickUp, PutDown, Slicing, Sliding, PreGrasp, PreGraspPositioning,
	}
}

// ParseKind maps a kind name, case-insensitively, to a Kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds() {
		if strings.EqualFold(string(k), s) {
			return k, true
		}
	}
	return "", false
}
