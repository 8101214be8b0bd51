package events

import (
	"slices"
	"strings"
)

// Participant is the stable identity of a simulation object.
type Participant struct {
	Class string `json:"class" yaml:"class"`
	ID    string `json:"id" yaml:"id"`
}

// Name returns Class_ID, the local name of the participant individual.
func (p Participant) Name() string {
	return p.Class + "_" + p.ID
}

// Valid reports whether the participant has both a class and an id and
// neither contains the key separator.
func (p Participant) Valid() bool {
	return p.Class != "" && p.ID != "" &&
		!strings.Contains(p.Class, keySep) && !strings.Contains(p.ID, keySep)
}

const keySep = ":"

// CompositeKey pairs Begin and End calls for one event interval.
type CompositeKey string

// Key returns Kind:A:B for the participants. Participants of symmetric
// kinds are ordered by name so both callback directions yield one key.
func Key(kind Kind, participants ...Participant) CompositeKey {
	names := make([]string, len(participants))
	for i, p := range participants {
		names[i] = p.Name()
	}
	if t, ok := templates[kind]; ok && t.Symmetric {
		slices.Sort(names)
	}
	return CompositeKey(string(kind) + keySep + strings.Join(names, keySep))
}

// KeyOf returns the composite key of an event.
func KeyOf(ev Event) CompositeKey {
	return Key(ev.Kind, ev.Participants...)
}

// Kind returns the kind segment of the key.
func (k CompositeKey) Kind() Kind {
	kind, _, _ := strings.Cut(string(k), keySep)
	return Kind(kind)
}
