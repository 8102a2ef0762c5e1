package segalloc

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with simulator-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogAllocate logs the outcome of an allocation query.
func (l *Logger) LogAllocate(queryIndex, size, addr int, ok bool) {
	if ok {
		l.Debug("allocation granted",
			"query", queryIndex,
			"size", size,
			"addr", addr,
		)
	} else {
		l.Debug("allocation failed",
			"query", queryIndex,
			"size", size,
		)
	}
}

// LogFree logs the outcome of a free query.
func (l *Logger) LogFree(queryIndex, referenced int, noop bool) {
	if noop {
		l.Debug("free skipped",
			"query", queryIndex,
			"referenced", referenced,
		)
	} else {
		l.Debug("block freed",
			"query", queryIndex,
			"referenced", referenced,
		)
	}
}

// LogRun logs a completed query sequence.
func (l *Logger) LogRun(memorySize, queries, responses, failures int) {
	l.Info("run completed",
		"memory_size", memorySize,
		"queries", queries,
		"responses", responses,
		"failures", failures,
	)
}
