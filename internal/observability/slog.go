// Package observability provides logging initialization.
package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// InitSlog builds the process logger. When stdin is a terminal it writes a
// human-readable text format, otherwise JSON. Source locations are added in
// dev mode.
func InitSlog(level string, dev bool) *slog.Logger {
	return NewLogger(os.Stderr, level, dev, term.IsTerminal(int(os.Stdin.Fd())))
}

// NewLogger is InitSlog with the output and format chosen by the caller.
func NewLogger(w io.Writer, level string, dev, text bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: dev,
		Level:     ParseLevel(level),
	}
	var handler slog.Handler
	if text {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps debug/info/warn/error to a slog level. Anything else is
// info.
func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
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
