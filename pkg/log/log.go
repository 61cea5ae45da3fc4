// Package log builds the structured logger used for operational
// diagnostics: boot-time configuration and metadata failures, and
// internal engine warnings. It is independent of the simulation trace,
// which is its own append-only log (see internal/trace).
package log

import (
	"log/slog"
	"os"
)

// BuildLogger returns a JSON logger writing to stderr at the given
// level ("debug", "info", "warn", "error"; anything else falls back
// to info).
func BuildLogger(level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     parseLevel(level),
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func StringAttr(key, value string) slog.Attr {
	return slog.String(key, value)
}

func IntAttr(key string, value int) slog.Attr {
	return slog.Int(key, value)
}

func AnyAttr(key string, value any) slog.Attr {
	return slog.Any(key, value)
}

func ErrAttr(err error) slog.Attr {
	return slog.Any("error", err)
}
