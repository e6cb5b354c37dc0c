package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	platformstrings "rtidesk/pkg/platform/strings"
)

// Environment names recognised by EnvironmentFromString.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	Environment   string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	AdminAPIToken string

	Database  DatabaseConfig
	Redis     RedisConfig
	AI        AIConfig
	RateLimit RateLimitConfig
	Kafka     KafkaConfig
}

// DatabaseConfig selects the application store. An empty URL keeps records in memory.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the shared rate limit store. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AIConfig configures the generative-text collaborator used for drafting.
type AIConfig struct {
	APIKey     string
	Model      string
	APIVersion string
	Timeout    time.Duration
}

// RateLimitConfig bounds unauthenticated drafting traffic per client IP.
type RateLimitConfig struct {
	AIRequestsPerMinute int
	Disabled            bool
}

// KafkaConfig enables the lifecycle event sink when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// IsProduction reports whether detailed error text must be suppressed.
func (s Server) IsProduction() bool {
	return s.Environment == EnvProduction
}

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present; real
// environment variables win over it.
func FromEnv() Server {
	_ = godotenv.Load()

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:          getEnv("RTIDESK_ADDR", ":8080"),
		Environment:   EnvironmentFromString(os.Getenv("APP_ENV")),
		JWTSigningKey: jwtSigningKey,
		JWTIssuer:     getEnv("JWT_ISSUER", "rtidesk"),
		JWTAudience:   getEnv("JWT_AUDIENCE", "rtidesk-api"),
		AdminAPIToken: os.Getenv("ADMIN_API_TOKEN"),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getEnvInt("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		AI: AIConfig{
			APIKey:     os.Getenv("GEMINI_API_KEY"),
			Model:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			APIVersion: getEnv("GEMINI_API_VERSION", "v1beta"),
			Timeout:    getEnvDuration("AI_TIMEOUT", 60*time.Second),
		},
		RateLimit: RateLimitConfig{
			AIRequestsPerMinute: getEnvInt("AI_RATE_LIMIT_PER_MINUTE", 20),
			Disabled:            os.Getenv("DISABLE_RATE_LIMITING") == "true",
		},
		Kafka: KafkaConfig{
			Brokers: platformstrings.SplitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_AUDIT_TOPIC", "rti.lifecycle"),
		},
	}
}

// EnvironmentFromString normalises APP_ENV, defaulting to development.
func EnvironmentFromString(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prod", EnvProduction:
		return EnvProduction
	case EnvTest:
		return EnvTest
	default:
		return EnvDevelopment
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
