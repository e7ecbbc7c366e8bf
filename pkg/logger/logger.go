// Package logger configures slog for consistent structured logging.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog so call sites stay decoupled from handler setup.
type Logger struct {
	*slog.Logger
}

// New creates a JSON logger at the given level and installs it as the
// process-wide slog default.
func New(level slog.Level) *Logger {
	l := &Logger{
		Logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})),
	}
	slog.SetDefault(l.Logger)
	return l
}

// ParseLevel maps a configuration string to a slog level. Unknown values
// fall back to info.
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

// WithComponent returns a logger with a pre-set component field.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Logger: l.With("component", name)}
}
