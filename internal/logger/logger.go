// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Provides Init() to configure the default logger from environment on a chosen writer.

package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init configures the default slog logger based on environment variables
// and returns it. Output goes to w; a nil writer means stderr so stdout
// stays free for command output.
// LOG_LEVEL: debug, info, warn, error (default: warn)
// LOG_FORMAT: text, json (default: text)
func Init(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	l := New(w, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	slog.SetDefault(l)
	return l
}

// New builds a logger without touching the process default.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops every record. Used by tests and the TUI
// when no debug log is configured.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// parseLevel converts a string log level to slog.Level.
// A CLI is quiet by default, so unknown or empty values map to warn.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
