//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"rtidesk/internal/ratelimit/models"
	"rtidesk/internal/ratelimit/store"
	"rtidesk/pkg/testutil/containers"
)

type RedisLimiterSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestRedisLimiterSuite(t *testing.T) {
	suite.Run(t, new(RedisLimiterSuite))
}

func (s *RedisLimiterSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisLimiterSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisLimiterSuite) TestFixedWindow() {
	ctx := context.Background()
	limiter := store.NewRedis(s.redis.Client, models.Policy{Limit: 2, Window: time.Hour})

	for i := range 2 {
		res, err := limiter.Allow(ctx, "ai:192.0.2.1")
		s.Require().NoError(err)
		s.True(res.Allowed, "request %d", i+1)
		s.Equal(1-i, res.Remaining)
	}

	res, err := limiter.Allow(ctx, "ai:192.0.2.1")
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Equal(0, res.Remaining)
	s.Positive(res.RetryAfter)
	s.True(res.ResetAt.After(time.Now()))

	other, err := limiter.Allow(ctx, "ai:192.0.2.2")
	s.Require().NoError(err)
	s.True(other.Allowed)
}

func (s *RedisLimiterSuite) TestCounterExpires() {
	ctx := context.Background()
	limiter := store.NewRedis(s.redis.Client, models.PerMinute(5))

	_, err := limiter.Allow(ctx, "ai:192.0.2.9")
	s.Require().NoError(err)

	keys, err := s.redis.Client.Keys(ctx, "rtidesk:ratelimit:ai:192.0.2.9:*").Result()
	s.Require().NoError(err)
	s.Require().Len(keys, 1)

	ttl, err := s.redis.Client.TTL(ctx, keys[0]).Result()
	s.Require().NoError(err)
	s.Positive(ttl)
	s.LessOrEqual(ttl, time.Minute+time.Second)
}
