package store

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"rtidesk/internal/ratelimit/models"
)

const idleSweepInterval = 5 * time.Minute

// MemoryLimiter keeps a token bucket per key. It is process-local and serves as
// the fallback when Redis is absent or failing.
type MemoryLimiter struct {
	mu        sync.Mutex
	policy    models.Policy
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemory creates a MemoryLimiter for the given policy.
func NewMemory(policy models.Policy) *MemoryLimiter {
	return &MemoryLimiter{
		policy:  policy,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow consumes one token for key.
func (m *MemoryLimiter) Allow(_ context.Context, key string) (*models.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	b, ok := m.buckets[key]
	if !ok {
		every := m.policy.Window / time.Duration(max(m.policy.Limit, 1))
		b = &bucket{limiter: rate.NewLimiter(rate.Every(every), m.policy.Limit)}
		m.buckets[key] = b
	}
	b.lastSeen = now

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)
	remaining := max(int(tokens), 0)

	// Time until the bucket is full again.
	missing := float64(m.policy.Limit) - tokens
	refill := time.Duration(missing / float64(b.limiter.Limit()) * float64(time.Second))
	resetAt := now.Add(refill)

	res := &models.Result{
		Allowed:   allowed,
		Limit:     m.policy.Limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
	if !allowed {
		next := time.Duration((1 - tokens) / float64(b.limiter.Limit()) * float64(time.Second))
		res.RetryAfter = models.RetryAfterSeconds(now, now.Add(next))
	}
	return res, nil
}

func (m *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < idleSweepInterval {
		return
	}
	m.lastSweep = now
	for k, b := range m.buckets {
		if now.Sub(b.lastSeen) > m.policy.Window {
			delete(m.buckets, k)
		}
	}
}
