package middleware

import (
	"context"
	"log/slog"

	"rtidesk/internal/ratelimit/metrics"
	"rtidesk/internal/ratelimit/models"
)

// FallbackLimiter asks the primary (shared) limiter first and answers from the
// in-memory limiter whenever the primary errors or its breaker is open.
// Results served by the fallback are marked Degraded.
type FallbackLimiter struct {
	primary  Limiter
	fallback Limiter
	breaker  *CircuitBreaker
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewFallbackLimiter wires primary and fallback behind a breaker that opens
// after 5 consecutive primary errors and closes after 3 successes.
func NewFallbackLimiter(primary, fallback Limiter, logger *slog.Logger, m *metrics.Metrics) *FallbackLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackLimiter{
		primary:  primary,
		fallback: fallback,
		breaker:  newCircuitBreaker(5, 3),
		logger:   logger,
		metrics:  m,
	}
}

func (f *FallbackLimiter) Allow(ctx context.Context, key string) (*models.Result, error) {
	res, err := f.primary.Allow(ctx, key)
	if err != nil {
		f.metrics.IncrementPrimaryFailures()
		if f.breaker.RecordFailure() {
			f.logger.WarnContext(ctx, "rate limit store unavailable, using in-memory fallback", "error", err)
		}
		return f.degraded(ctx, key)
	}
	if !f.breaker.RecordSuccess() {
		return f.degraded(ctx, key)
	}
	return res, nil
}

func (f *FallbackLimiter) degraded(ctx context.Context, key string) (*models.Result, error) {
	f.metrics.IncrementDegraded()
	res, err := f.fallback.Allow(ctx, key)
	if err != nil {
		return nil, err
	}
	res.Degraded = true
	return res, nil
}
