package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"rtidesk/internal/ratelimit/models"
)

const keyPrefix = "rtidesk:ratelimit:"

// RedisLimiter counts requests per key in fixed windows shared by every replica.
type RedisLimiter struct {
	client redis.Cmdable
	policy models.Policy
	now    func() time.Time
}

// NewRedis creates a RedisLimiter. client is usually *redis.Client.
func NewRedis(client redis.Cmdable, policy models.Policy) *RedisLimiter {
	return &RedisLimiter{client: client, policy: policy, now: time.Now}
}

// Allow increments the counter of the current window and reports whether it
// is still within the limit.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (*models.Result, error) {
	now := r.now()
	windowStart := now.Truncate(r.policy.Window)
	resetAt := windowStart.Add(r.policy.Window)
	redisKey := keyPrefix + key + ":" + strconv.FormatInt(windowStart.Unix(), 10)

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireAt(ctx, redisKey, resetAt.Add(time.Second))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis rate limit %s: %w", key, err)
	}

	count := int(incr.Val())
	res := &models.Result{
		Allowed:   count <= r.policy.Limit,
		Limit:     r.policy.Limit,
		Remaining: max(r.policy.Limit-count, 0),
		ResetAt:   resetAt,
	}
	if !res.Allowed {
		res.RetryAfter = models.RetryAfterSeconds(now, resetAt)
	}
	return res, nil
}
