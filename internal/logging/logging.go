// Package logging builds the charmbracelet/log loggers shared by the
// session components.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// New creates a [log.Logger] writing to w with timestamps and caller
// reporting enabled. The writer defaults to [os.Stderr].
func New(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true, Prefix: "cadence"}
	l := log.NewWithOptions(w, opts)
	l.SetLevel(ParseLevel(level))
	return l
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// OrDiscard returns l, or a discard logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// With creates a child [log.Logger] with the key-value pairs added to all entries.
func With(l *log.Logger, kv ...any) *log.Logger {
	return OrDiscard(l).With(kv...)
}

// ParseLevel maps a config level name to a [log.Level]; unknown names mean info.
func ParseLevel(level string) log.Level {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Open builds a logger for the given level, appending to file when set.
// The returned closer must be called when the logger is no longer used.
func Open(level, file string, fallback io.Writer) (*log.Logger, io.Closer, error) {
	if file == "" {
		return New(fallback, level), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	l := New(f, level)
	l.SetFormatter(log.LogfmtFormatter)
	return l, f, nil
}
