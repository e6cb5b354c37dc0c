package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("RTIDESK_ADDR", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("AI_TIMEOUT", "not-a-duration")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.AI.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
	assert.Equal(t, "v1beta", cfg.AI.APIVersion)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Nil(t, cfg.Kafka.Brokers)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("AI_RATE_LIMIT_PER_MINUTE", "5")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("DATABASE_CONN_MAX_LIFETIME", "90s")

	cfg := FromEnv()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5, cfg.RateLimit.AIRequestsPerMinute)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 90*time.Second, cfg.Database.ConnMaxLifetime)
}
