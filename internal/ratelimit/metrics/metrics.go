package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions       *prometheus.CounterVec
	DegradedChecks  prometheus.Counter
	PrimaryFailures prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rtidesk_ratelimit_decisions_total",
			Help: "Rate limit decisions by route class and result",
		}, []string{"class", "result"}),
		DegradedChecks: factory.NewCounter(prometheus.CounterOpts{
			Name: "rtidesk_ratelimit_degraded_checks_total",
			Help: "Checks answered by the in-memory fallback limiter",
		}),
		PrimaryFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "rtidesk_ratelimit_primary_failures_total",
			Help: "Errors returned by the shared rate limit store",
		}),
	}
}

func (m *Metrics) RecordDecision(class string, allowed bool) {
	if m == nil {
		return
	}
	result := "allowed"
	if !allowed {
		result = "denied"
	}
	m.Decisions.WithLabelValues(class, result).Inc()
}

func (m *Metrics) IncrementDegraded() {
	if m == nil {
		return
	}
	m.DegradedChecks.Inc()
}

func (m *Metrics) IncrementPrimaryFailures() {
	if m == nil {
		return
	}
	m.PrimaryFailures.Inc()
}
