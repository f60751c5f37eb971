// Package logger provides structured logging functionality for the application.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/academy-api/internal/config"
)

// level is shared by every handler Setup creates so the level can be
// changed at runtime without rebuilding loggers.
var level = new(slog.LevelVar)

// ParseLevel maps a case-insensitive level name to a slog level.
// Unknown names return info and false.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Setup initializes and configures the application's logging system based on
// the provided configuration. It creates a structured JSON logger on stdout
// and sets it as the default logger for the application.
func Setup(cfg config.ServerConfig) (*slog.Logger, error) {
	logger := New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	return logger, nil
}

// New creates a JSON logger writing to w whose level follows SetLevel.
func New(w io.Writer, levelName string) *slog.Logger {
	SetLevel(levelName)
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// SetLevel changes the level of every logger created by Setup or New.
// An unknown name falls back to info and is reported with a warning.
func SetLevel(name string) {
	l, ok := ParseLevel(name)
	if !ok {
		tmp := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmp.Warn("invalid log level configured, using default level",
			"configured_level", name,
			"default_level", "info")
	}
	level.Set(l)
}

// Level returns the current level.
func Level() slog.Level {
	return level.Level()
}
