package worker

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/taskflow/core/task"
)

type workerOptions struct {
	pollTimeout    time.Duration
	handlerTimeout time.Duration
	retry          task.RetryPolicy
	metrics        Metrics
	logger         *slog.Logger
}

// Option configures the worker.
type Option func(*workerOptions)

// WithPollTimeout sets the blocking dequeue timeout.
func WithPollTimeout(d time.Duration) Option {
	return func(o *workerOptions) {
		if d > 0 {
			o.pollTimeout = d
		}
	}
}

// WithHandlerTimeout bounds the wall-clock time of one handler
// invocation. Must stay below the exclusion lock TTL.
func WithHandlerTimeout(d time.Duration) Option {
	return func(o *workerOptions) {
		if d > 0 {
			o.handlerTimeout = d
		}
	}
}

// WithRetryPolicy sets the backoff policy applied to failed attempts.
func WithRetryPolicy(p task.RetryPolicy) Option {
	return func(o *workerOptions) {
		o.retry = p
	}
}

// WithMetrics injects the execution-path counters.
func WithMetrics(m Metrics) Option {
	return func(o *workerOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithLogger sets the worker logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *workerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

type noopMetrics struct{}

func (noopMetrics) TaskCompleted()   {}
func (noopMetrics) TaskFailed()      {}
func (noopMetrics) TaskRetried()     {}
func (noopMetrics) WorkerException() {}
