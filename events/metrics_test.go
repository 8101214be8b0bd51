package events

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semlog/naming"
	"github.com/c360studio/semlog/owl"
	"github.com/c360studio/semlog/vocabulary/knowrob"
)

func TestMetrics(t *testing.T) {
	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	doc := owl.NewDocument(knowrob.DocumentConfig())
	reg := NewRegistry(doc, naming.NewNamer(knowrob.PrefixLog), WithMetrics(m))

	cup := Participant{Class: "Cup", ID: "1"}
	table := Participant{Class: "Table", ID: "2"}
	hand := Participant{Class: "Hand", ID: "3"}
	contact := Key(Contact, cup, table)
	grasp := Key(Grasp, hand, cup)

	require.NoError(t, reg.Begin(contact, Event{Kind: Contact, Participants: []Participant{cup, table}}, 0))
	assert.Error(t, reg.Begin(contact, Event{Kind: Contact, Participants: []Participant{cup, table}}, 0.1))
	assert.Error(t, reg.End(grasp, 0.2))
	require.NoError(t, reg.Begin(grasp, Event{Kind: Grasp, Participants: []Participant{hand, cup}}, 0.3))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.open))

	require.NoError(t, reg.End(contact, 0.4))
	reg.TerminateAllOpen(1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.begun.WithLabelValues("Contact")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.begun.WithLabelValues("Grasp")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.closed.WithLabelValues("Contact", "ended")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.closed.WithLabelValues("Grasp", "terminated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conflicts.WithLabelValues("Contact", "begin")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conflicts.WithLabelValues("Grasp", "end")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.open))
}

func TestMetricsDisabled(t *testing.T) {
	m, err := NewMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	// Nil metrics are safe to record on.
	m.recordBegin(Contact)
	m.recordClose(Contact, true)
	m.recordConflict(Contact, "end")
}

func TestMetricsDoubleRegistration(t *testing.T) {
	r := prometheus.NewRegistry()
	_, err := NewMetrics(r)
	require.NoError(t, err)
	_, err = NewMetrics(r)
	assert.Error(t, err)
}
