package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts account lifecycle transitions and purge cleanup
type Metrics struct {
	transitions    *prometheus.CounterVec
	storageDeletes *prometheus.CounterVec
}

// NewMetrics registers the service counters with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conexo",
			Name:      "account_transitions_total",
			Help:      "Account lifecycle transitions by outcome.",
		}, []string{"transition", "outcome"}),
		storageDeletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conexo",
			Name:      "reset_storage_deletes_total",
			Help:      "Object deletions attempted by account hard resets.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.transitions, m.storageDeletes)
	return m
}

// Transition records one lifecycle transition attempt
func (m *Metrics) Transition(transition, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(transition, outcome).Inc()
}

// StorageDeletes records n object deletions with the given outcome
func (m *Metrics) StorageDeletes(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.storageDeletes.WithLabelValues(outcome).Add(float64(n))
}
