package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the lifecycle module.
// Tracks application creation, transitions by outcome, and store latency.
type Metrics struct {
	ApplicationsCreated prometheus.Counter
	Transitions         *prometheus.CounterVec
	OperationDuration   *prometheus.HistogramVec
}

// New registers the lifecycle metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ApplicationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "rtidesk_rti_applications_created_total",
			Help: "Total number of RTI applications created",
		}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rtidesk_rti_transitions_total",
			Help: "Lifecycle operations by operation and result (ok, rejected, not_found, error)",
		}, []string{"operation", "result"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rtidesk_rti_operation_duration_seconds",
			Help:    "Duration of lifecycle service operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementCreated() {
	m.ApplicationsCreated.Inc()
}

// RecordTransition counts one operation outcome.
func (m *Metrics) RecordTransition(operation, result string) {
	m.Transitions.WithLabelValues(operation, result).Inc()
}

// ObserveOperation records the duration of an operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
