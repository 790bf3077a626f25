package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flippy"

// Metrics счетчики жизненного цикла сделок
type Metrics struct {
	transitions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	handoffWait prometheus.Histogram
}

// New создает и регистрирует метрики в reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "transitions_total",
			Help:      "Number of successful trade lifecycle operations.",
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "failures_total",
			Help:      "Number of rejected trade lifecycle operations by error kind.",
		}, []string{"operation", "kind"}),
		handoffWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "handoff_duration_hours",
			Help:      "Time between reservation and completion of a transaction.",
			Buckets:   []float64{1, 6, 12, 24, 48, 72, 120, 168},
		}),
	}
	reg.MustRegister(m.transitions, m.failures, m.handoffWait)
	return m
}

// Transition учитывает успешную операцию
func (m *Metrics) Transition(operation string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(operation).Inc()
}

// Failure учитывает отклоненную операцию
func (m *Metrics) Failure(operation, kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "internal"
	}
	m.failures.WithLabelValues(operation, kind).Inc()
}

// HandoffCompleted учитывает время от бронирования до завершения сделки
func (m *Metrics) HandoffCompleted(hours float64) {
	if m == nil {
		return
	}
	m.handoffWait.Observe(hours)
}
