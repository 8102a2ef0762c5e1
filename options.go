package segalloc

import (
	"github.com/segalloc/segalloc/trace"
)

type options struct {
	logger    *Logger
	tracer    *trace.Writer
	occupancy bool
	stats     StatsCollector
}

// Option configures Simulator construction.
type Option func(*options)

// WithLogger configures structured logging. If nil is passed, logging is
// disabled (the default).
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithTracer journals every applied query and its outcome to w. The
// simulator does not close the writer; the caller owns its lifecycle.
func WithTracer(w *trace.Writer) Option {
	return func(o *options) {
		o.tracer = w
	}
}

// WithOccupancy maintains a bitmap of allocated addresses, exposed via
// Simulator.Occupancy.
func WithOccupancy() Option {
	return func(o *options) {
		o.occupancy = true
	}
}

// WithStatsCollector configures a collector for operation counters.
// Pass nil to disable collection.
func WithStatsCollector(c StatsCollector) Option {
	return func(o *options) {
		o.stats = c
	}
}
