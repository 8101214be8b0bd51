package furniture_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semlog/events"
	"github.com/c360studio/semlog/furniture"
	"github.com/c360studio/semlog/naming"
	"github.com/c360studio/semlog/owl"
	"github.com/c360studio/semlog/vocabulary/knowrob"
)

var drawer1 = events.Participant{Class: "Drawer", ID: "1"}

func newClassifier(t *testing.T, opts ...furniture.Option) (*furniture.Classifier, *events.Registry) {
	t.Helper()
	doc := owl.NewDocument(knowrob.DocumentConfig())
	reg := events.NewRegistry(doc, naming.NewNamer(knowrob.PrefixLog))
	return furniture.NewClassifier(reg, opts...), reg
}

func stateOf(t *testing.T, ce events.ClosedEvent) string {
	t.Helper()
	types := ce.Individual.ResourcesOf(knowrob.Type)
	require.Len(t, types, 1)
	return types[0].Local
}

func TestClassifyBands(t *testing.T) {
	tests := []struct {
		d    float64
		want furniture.State
	}{
		{-0.2, furniture.Closed},
		{0, furniture.Closed},
		{0.099, furniture.Closed},
		{0.1, furniture.HalfClosed},
		{0.49, furniture.HalfClosed},
		{0.5, furniture.HalfOpened},
		{0.89, furniture.HalfOpened},
		{0.9, furniture.Opened},
		{1.0, furniture.Opened},
		{1.5, furniture.Opened},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, furniture.Classify(tt.d, 1.0), "d=%v", tt.d)
	}
}

func TestMonotonicSweepCoversBandsInOrder(t *testing.T) {
	const limit = 0.4
	var seq []furniture.State
	for i := 0; i <= 400; i++ {
		s := furniture.Classify(limit*float64(i)/400, limit)
		if len(seq) == 0 || seq[len(seq)-1] != s {
			seq = append(seq, s)
		}
	}
	assert.Equal(t, []furniture.State{
		furniture.Closed, furniture.HalfClosed, furniture.HalfOpened, furniture.Opened,
	}, seq)
}

func TestDrawerSweepProducesAdjacentIntervals(t *testing.T) {
	c, reg := newClassifier(t)
	const limit = 0.4
	require.NoError(t, c.Track(furniture.Joint{Object: drawer1, Axis: furniture.Linear, Limit: limit}))

	begins := 0
	tick := 0.0
	sample := func(v float64) {
		changed, err := c.Observe(tick, drawer1, v)
		require.NoError(t, err)
		if changed {
			begins++
		}
		tick += 0.25
	}
	for i := 0; i <= 20; i++ {
		sample(limit * float64(i) / 20)
	}
	for i := 19; i >= 0; i-- {
		sample(limit * float64(i) / 20)
	}
	reg.TerminateAllOpen(tick)

	closed := reg.Closed()
	require.Len(t, closed, 7)
	assert.Equal(t, 7, begins)

	var states []string
	for _, ce := range closed {
		states = append(states, stateOf(t, ce))
	}
	assert.Equal(t, []string{
		"FurnitureStateClosed",
		"FurnitureStateHalfClosed",
		"FurnitureStateHalfOpened",
		"FurnitureStateOpened",
		"FurnitureStateHalfOpened",
		"FurnitureStateHalfClosed",
		"FurnitureStateClosed",
	}, states)

	for i := 1; i < len(closed); i++ {
		assert.Equal(t, closed[i-1].End, closed[i].Start, "gap between %d and %d", i-1, i)
	}
	assert.Equal(t, 0.0, closed[0].Start)
	assert.Equal(t, tick, closed[len(closed)-1].End)
	assert.True(t, closed[len(closed)-1].Forced)
}

func TestUnchangedStateDoesNothing(t *testing.T) {
	c, reg := newClassifier(t)
	require.NoError(t, c.Track(furniture.Joint{Object: drawer1, Limit: 1}))

	changed, err := c.Observe(0, drawer1, 0.0)
	require.NoError(t, err)
	assert.True(t, changed)

	for i := 1; i < 5; i++ {
		changed, err = c.Observe(float64(i), drawer1, 0.05)
		require.NoError(t, err)
		assert.False(t, changed)
	}
	assert.Empty(t, reg.Closed())
	assert.Equal(t, 1, reg.OpenCount())

	s, ok := c.State(drawer1)
	assert.True(t, ok)
	assert.Equal(t, furniture.Closed, s)
}

func TestSwing2DirectionInverted(t *testing.T) {
	door := events.Participant{Class: "Door", ID: "7"}
	j := furniture.Joint{Object: door, Axis: furniture.Swing2, Reference: 0.2, Limit: 1.0}

	assert.Equal(t, -1.0, j.Sign())
	assert.Equal(t, furniture.Closed, j.Classify(0.2))
	assert.Equal(t, furniture.Opened, j.Classify(-0.8))
	assert.Equal(t, furniture.Closed, j.Classify(0.9), "opening the wrong way stays closed")

	j.Direction = 1
	assert.Equal(t, furniture.Opened, j.Classify(1.2))

	swing1 := furniture.Joint{Axis: furniture.Swing1, Limit: 1.0, Offset: 0.5}
	assert.Equal(t, 1.0, swing1.Sign())
	assert.Equal(t, 1.5, swing1.Range())
	assert.Equal(t, furniture.HalfOpened, swing1.Classify(1.0))
}

func TestTrackValidation(t *testing.T) {
	c, _ := newClassifier(t)

	err := c.Track(furniture.Joint{Object: drawer1})
	assert.ErrorIs(t, err, furniture.ErrInvalidLimit)

	err = c.Track(furniture.Joint{Object: events.Participant{Class: "Drawer"}, Limit: 1})
	assert.ErrorIs(t, err, events.ErrMissingIdentity)

	_, err = c.Observe(0, drawer1, 0)
	assert.ErrorIs(t, err, furniture.ErrNotTracked)

	require.NoError(t, c.Track(furniture.Joint{Object: drawer1, Limit: 1}))
	require.NoError(t, c.Track(furniture.Joint{Object: drawer1, Limit: 2}))
	assert.Len(t, c.Tracked(), 1)
}

func TestTickRespectsUpdateRate(t *testing.T) {
	c, reg := newClassifier(t, furniture.WithUpdateRate(0.25))
	require.NoError(t, c.Track(furniture.Joint{Object: drawer1, Limit: 1}))

	readings := map[events.Participant]float64{drawer1: 0}
	assert.Equal(t, 1, c.Tick(0, readings))

	readings[drawer1] = 1
	assert.Equal(t, 0, c.Tick(0.1, readings), "not due yet")
	assert.Equal(t, 1, c.Tick(0.25, readings))

	require.Len(t, reg.Closed(), 1)
	assert.Equal(t, 0.25, reg.Closed()[0].End)
}

func TestSampleSkipsMissingReadings(t *testing.T) {
	c, _ := newClassifier(t)
	other := events.Participant{Class: "Drawer", ID: "2"}
	require.NoError(t, c.Track(furniture.Joint{Object: drawer1, Limit: 1}))
	require.NoError(t, c.Track(furniture.Joint{Object: other, Limit: 1}))

	assert.Equal(t, 1, c.Sample(0, map[events.Participant]float64{drawer1: 0.6}))
	_, ok := c.State(other)
	assert.False(t, ok)
}

func TestParseAxis(t *testing.T) {
	for in, want := range map[string]furniture.Axis{
		"linear": furniture.Linear, "Swing1": furniture.Swing1, " swing2 ": furniture.Swing2,
	} {
		got, err := furniture.ParseAxis(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, want, mustParse(t, got.String()))
	}
	_, err := furniture.ParseAxis("twist")
	assert.ErrorIs(t, err, furniture.ErrUnknownAxis)
}

func mustParse(t *testing.T, s string) furniture.Axis {
	t.Helper()
	a, err := furniture.ParseAxis(s)
	require.NoError(t, err)
	return a
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "HalfOpened", furniture.HalfOpened.String())
	assert.Equal(t, "State(9)", furniture.State(9).String())
}
