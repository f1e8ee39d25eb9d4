// Package logging configures the process-wide log/slog logger.
//
// Logs go to stderr so that loaded sample sheets written to stdout stay
// machine-readable.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Setup configures the global slog logger based on level and format and
// returns it.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// WithRun returns the default logger tagged with a run identifier, so every
// entry of one invocation can be correlated.
//
// Usage:
//
//	logger := logging.WithRun(runID)
//	logger.Info("loading sample sheet", "sheet", path)
func WithRun(runID string, args ...any) *slog.Logger {
	return slog.Default().With(append([]any{"run_id", runID}, args...)...)
}
