// Package logging configures the process-wide slog logger. Subsystems
// derive their own with logger.With("component", ...).
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup builds the root text logger on stderr, installs it as the slog
// default, and returns it. level accepts "debug", "info", "warn" or
// "error" in any case; anything else (including empty, the usual case
// when KIDSCHORES_LOG_LEVEL is unset) means info.
func Setup(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
