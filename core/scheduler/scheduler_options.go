package scheduler

import (
	"log/slog"
	"time"
)

type schedulerOptions struct {
	interval time.Duration
	staleAge time.Duration
	logger   *slog.Logger
}

// Option configures the scheduler.
type Option func(*schedulerOptions)

// WithInterval sets the scan cadence.
func WithInterval(d time.Duration) Option {
	return func(o *schedulerOptions) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithStaleAge sets how old a RUNNING task's updated_at must be before
// the recovery sweep requeues it. Zero disables the sweep. The default
// is a multiple of the lock TTL so a live handler is never swept.
func WithStaleAge(d time.Duration) Option {
	return func(o *schedulerOptions) {
		o.staleAge = d
	}
}

// WithLogger sets the scheduler logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *schedulerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}
