// Package logging sets up the file logger. The TUI owns the terminal, so
// nothing is ever written to stdout or stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// ParseLevel converts a string level into zerolog.Level with a safe default
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewWriterLogger creates a JSON lines logger on w
func NewWriterLogger(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("app", "gamemaster").
		Logger()
}

// New opens path for appending and returns a logger writing to it, plus the
// file to close on exit. An empty path disables logging.
func New(path, level string) (zerolog.Logger, io.Closer, error) {
	if path == "" || ParseLevel(level) == zerolog.Disabled {
		return zerolog.Nop(), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("failed to open log file: %w", err)
	}

	return NewWriterLogger(f, level), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
