// Package logger implements a logging adapter using log/slog.
package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"go.trai.ch/carry/internal/adapters/detector"
	"go.trai.ch/carry/internal/core/ports"
	"go.trai.ch/zerr"
)

// ErrUnknownFormat is returned by SetFormat for an unsupported format name.
var ErrUnknownFormat = zerr.New("unknown log format, expected auto, pretty, json or actions")

var _ ports.Logger = (*Logger)(nil)

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger *slog.Logger
	mu     sync.RWMutex
	format detector.Format
	output io.Writer
}

// New creates a new Logger writing pretty records to stderr.
func New() *Logger {
	l := &Logger{
		output: os.Stderr,
		format: detector.FormatPretty,
	}
	l.rebuild()
	return l
}

// SetOutput updates the logger's output destination.
// It preserves the current format. If w is nil, os.Stderr is used.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.rebuild()
}

// SetFormat switches the record format. "auto" is resolved against the environment.
func (l *Logger) SetFormat(name string) error {
	format, ok := detector.ParseFormat(name)
	if !ok {
		return zerr.With(ErrUnknownFormat, "format", name)
	}
	if format == detector.FormatAuto {
		format = detector.DetectFormat()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.format = format
	l.rebuild()
	return nil
}

// rebuild swaps the slog handler for the current format and output. Callers hold mu.
func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	switch l.format {
	case detector.FormatJSON:
		handler = slog.NewJSONHandler(l.output, opts)
	case detector.FormatActions:
		handler = NewActionsHandler(l.output, opts)
	default:
		handler = NewPrettyHandler(l.output, opts)
	}
	l.logger = slog.New(handler)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs an error message.
func (l *Logger) Error(err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if err == nil {
		return
	}

	switch l.format {
	case detector.FormatJSON:
		l.logger.Error("operation failed", "error", err)
	case detector.FormatActions:
		// Annotations are single line; the chain is already in err.Error().
		l.logger.Error(err.Error())
	default:
		l.logger.Error(formatErrorEntries(collectErrorEntries(err)))
	}
}
