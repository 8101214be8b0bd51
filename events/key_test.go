package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semlog/events"
	"github.com/c360studio/semlog/owl"
	"github.com/c360studio/semlog/vocabulary/knowrob"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		kind events.Kind
		ps   []events.Participant
		want events.CompositeKey
	}{
		{"symmetric sorted", events.Contact, []events.Participant{tableB, cupA}, "Contact:Cup_A:Table_B"},
		{"symmetric already sorted", events.Contact, []events.Participant{cupA, tableB}, "Contact:Cup_A:Table_B"},
		{"ordered", events.Grasp, []events.Participant{handR, cupA}, "Grasp:RightHand_R:Cup_A"},
		{"ordered reversed differs", events.Grasp, []events.Participant{cupA, handR}, "Grasp:Cup_A:RightHand_R"},
		{"single", events.FurnitureState, []events.Participant{{Class: "Drawer", ID: "1"}}, "FurnitureState:Drawer_1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, events.Key(tt.kind, tt.ps...))
		})
	}
}

func TestKeysDoNotCollideAcrossKinds(t *testing.T) {
	seen := map[events.CompositeKey]events.Kind{}
	for _, k := range events.Kinds() {
		key := events.Key(k, cupA, tableB)
		_, dup := seen[key]
		assert.False(t, dup, "key %s reused", key)
		seen[key] = k
		assert.Equal(t, k, key.Kind())
	}
}

func TestParticipantValid(t *testing.T) {
	tests := []struct {
		name string
		p    events.Participant
		want bool
	}{
		{"complete", cupA, true},
		{"no id", events.Participant{Class: "Cup"}, false},
		{"no class", events.Participant{ID: "A"}, false},
		{"separator in id", events.Participant{Class: "Cup", ID: "A:Table_B"}, false},
		{"separator in class", events.Participant{Class: "Cup:Table", ID: "B"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Valid())
		})
	}
}

func TestKeyOf(t *testing.T) {
	ev := events.Event{Kind: events.SupportedBy, Participants: []events.Participant{cupA, tableB}}
	assert.Equal(t, events.CompositeKey("SupportedBy:Cup_A:Table_B"), events.KeyOf(ev))
}

func TestTemplates(t *testing.T) {
	for _, k := range events.Kinds() {
		tmpl, ok := events.TemplateFor(k)
		assert.True(t, ok, k)
		assert.Positive(t, tmpl.Arity(), k)
		assert.False(t, tmpl.Class.IsZero(), k)
	}

	tmpl, _ := events.TemplateFor(events.FurnitureState)
	assert.Equal(t, knowrob.FurnitureStateHalfClosed, tmpl.ClassFor("HalfClosed"))
	assert.Equal(t, "FurnitureStateHalfClosed-Drawer_1", tmpl.TaskContext("HalfClosed", []string{"Drawer_1"}))

	slicing, _ := events.TemplateFor(events.Slicing)
	assert.Equal(t, 3, slicing.Arity())

	for kind, class := range map[events.Kind]owl.PrefixedName{
		events.PreGrasp:            knowrob.PreGraspClass,
		events.PreGraspPositioning: knowrob.PreGraspPositioningClass,
	} {
		tmpl, ok := events.TemplateFor(kind)
		require.True(t, ok, kind)
		assert.Equal(t, class, tmpl.Class)
		assert.Equal(t, []owl.PrefixedName{knowrob.PerformedBy, knowrob.ObjectActedOn}, tmpl.Roles)
		assert.Contains(t, knowrob.Classes(), class)
	}
}

func TestParseKind(t *testing.T) {
	k, ok := events.ParseKind("supportedby")
	assert.True(t, ok)
	assert.Equal(t, events.SupportedBy, k)

	k, ok = events.ParseKind("pregrasppositioning")
	assert.True(t, ok)
	assert.Equal(t, events.PreGraspPositioning, k)

	_, ok = events.ParseKind("pushed")
	assert.False(t, ok)
}
