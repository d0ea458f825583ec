package logging

import (
	"log/slog"
	"os"
	"strings"
)

// NewJSONLogger builds the shared JSON logger and installs it as the slog
// default, so package-level slog calls (retry warnings, queue callbacks)
// follow the same handler. Level accepts the slog spellings; anything
// unparseable means info.
func NewJSONLogger(service, level string) *slog.Logger {
	level = strings.TrimSpace(level)
	if strings.EqualFold(level, "warning") {
		level = "warn"
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	logger := slog.New(handler).With("service", service)
	slog.SetDefault(logger)
	return logger
}

// Component tags a logger for one pipeline component so stage logs can be
// filtered without parsing message text.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("component", name)
}
