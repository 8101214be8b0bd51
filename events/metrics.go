package events

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts registry activity.
type Metrics struct {
	begun     *prometheus.CounterVec // By kind
	closed    *prometheus.CounterVec // By kind and how (ended/terminated)
	conflicts *prometheus.CounterVec // By kind and op (begin/end)
	open      prometheus.Gauge
}

// NewMetrics creates and registers registry metrics. A nil registerer
// disables metrics.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Metrics{
		begun: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semlog",
			Subsystem: "events",
			Name:      "begun_total",
			Help:      "Total number of events opened",
		}, []string{"kind"}),

		closed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semlog",
			Subsystem: "events",
			Name:      "closed_total",
			Help:      "Total number of events closed",
		}, []string{"kind", "how"}),

		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semlog",
			Subsystem: "events",
			Name:      "conflicts_total",
			Help:      "Begin on an open key or end on a closed key",
		}, []string{"kind", "op"}),

		open: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "semlog",
			Subsystem: "events",
			Name:      "open",
			Help:      "Events currently open",
		}),
	}

	for _, c := range []prometheus.Collector{m.begun, m.closed, m.conflicts, m.open} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) recordBegin(kind Kind) {
	if m == nil {
		return
	}
	m.begun.WithLabelValues(string(kind)).Inc()
	m.open.Inc()
}

func (m *Metrics) recordClose(kind Kind, forced bool) {
	if m == nil {
		return
	}
	how := "ended"
	if forced {
		how = "terminated"
	}
	m.closed.WithLabelValues(string(kind), how).Inc()
	m.open.Dec()
}

func (m *Metrics) recordConflict(kind Kind, op string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(string(kind), op).Inc()
}
