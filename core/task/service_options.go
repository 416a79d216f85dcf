package task

import "log/slog"

type serviceOptions struct {
	maxAttempts int
	metrics     Metrics
	logger      *slog.Logger
}

// ServiceOption configures the task service.
type ServiceOption func(*serviceOptions)

// WithMaxAttempts sets the max_attempts assigned to new tasks.
func WithMaxAttempts(n int) ServiceOption {
	return func(o *serviceOptions) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithMetrics injects the submission-path counters.
func WithMetrics(m Metrics) ServiceOption {
	return func(o *serviceOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

type noopMetrics struct{}

func (noopMetrics) TaskCreated()  {}
func (noopMetrics) TaskCanceled() {}
