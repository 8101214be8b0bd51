// Package timeline keeps the flat interval list of an episode: one row per
// closed event in closing order. Rows are rendered as an HTML timeline chart
// and can be persisted in a sqlite store.
package timeline

import (
	"sync"

	"github.com/c360studio/semlog/events"
)

// Row is one closed event interval.
type Row struct {
	Name   string  `json:"name"`
	Kind   string  `json:"kind"`
	Key    string  `json:"key"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Forced bool    `json:"forced,omitempty"`
}

// Duration returns End - Start.
func (r Row) Duration() float64 { return r.End - r.Start }

// FromClosed converts a closed event into a row.
func FromClosed(ce events.ClosedEvent) Row {
	return Row{
		Name:   ce.Name(),
		Kind:   string(ce.Kind),
		Key:    string(ce.Key),
		Start:  ce.Start,
		End:    ce.End,
		Forced: ce.Forced,
	}
}

// Recorder collects rows from registry close notifications.
type Recorder struct {
	mu   sync.Mutex
	rows []Row
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends a closed event. It matches events.Listener.
func (r *Recorder) Record(ce events.ClosedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, FromClosed(ce))
}

// Rows returns the recorded rows in closing order.
func (r *Recorder) Rows() []Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Row, len(r.rows))
	copy(out, r.rows)
	return out
}

// Len returns the number of rows.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}
