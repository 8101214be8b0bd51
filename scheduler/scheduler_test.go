package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvery(t *testing.T) {
	e := NewEvery(3)
	var fired []int
	for i := 1; i <= 9; i++ {
		if e.Tick() {
			fired = append(fired, i)
		}
	}
	assert.Equal(t, []int{3, 6, 9}, fired)
	assert.Equal(t, 3, e.N())
}

func TestEveryClampsPeriod(t *testing.T) {
	e := NewEvery(0)
	assert.True(t, e.Tick())
	assert.True(t, e.Tick())
	assert.Equal(t, 1, e.N())
}

func TestInterval(t *testing.T) {
	tests := []struct {
		name  string
		dt    float64
		times []float64
		want  []bool
	}{
		{
			name:  "quarter second",
			dt:    0.25,
			times: []float64{0, 0.1, 0.2, 0.25, 0.3, 0.5, 0.74, 0.75},
			want:  []bool{true, false, false, true, false, true, false, true},
		},
		{
			name:  "skips missed periods",
			dt:    0.25,
			times: []float64{0, 1.1, 1.2, 1.25},
			want:  []bool{true, true, false, true},
		},
		{
			name:  "every tick",
			dt:    0,
			times: []float64{0, 0, 0.1},
			want:  []bool{true, true, true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv := NewInterval(tt.dt)
			got := make([]bool, len(tt.times))
			for i, ts := range tt.times {
				got[i] = iv.Tick(ts)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntervalReset(t *testing.T) {
	iv := NewInterval(1)
	assert.True(t, iv.Tick(0))
	assert.False(t, iv.Tick(0.5))
	iv.Reset()
	assert.True(t, iv.Tick(0.6))
	assert.Equal(t, 1.0, iv.Period())
}
