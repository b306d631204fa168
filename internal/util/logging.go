package util

import (
	"log/slog"
	"os"
	"strings"
)

// InitLogger builds the process-wide JSON logger at the configured
// level and installs it as the slog default.
func InitLogger(level string) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     ParseLevel(level),
		AddSource: true,
	}))
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps the config's log_level vocabulary to a slog level.
// Unknown values fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
