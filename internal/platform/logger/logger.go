package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"rtidesk/internal/platform/config"
)

// New returns the process logger: JSON in production so log shippers can parse
// it, human-readable text elsewhere. LOG_LEVEL overrides the default level.
func New(environment string) *slog.Logger {
	return NewWithWriter(os.Stdout, environment, os.Getenv("LOG_LEVEL"))
}

// NewWithWriter is New with an explicit sink and level, for tests and tools.
func NewWithWriter(w io.Writer, environment, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if environment == config.EnvProduction {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
