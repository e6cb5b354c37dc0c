package drafting

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks generator calls by operation and outcome.
type Metrics struct {
	Generations        *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Generations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rtidesk_ai_generations_total",
			Help: "Generator calls by operation and result",
		}, []string{"operation", "result"}),
		GenerationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rtidesk_ai_generation_duration_seconds",
			Help:    "Generator call latency",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"operation"}),
	}
}

func (m *Metrics) observe(operation, result string, start time.Time) {
	m.Generations.WithLabelValues(operation, result).Inc()
	m.GenerationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
