package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the orchestrator's process-wide counters. It uses a
// private registry so the metrics endpoint emits only these series.
// The struct satisfies both the submission-path and execution-path
// counter interfaces and is injected where needed instead of living as
// a package global.
type Metrics struct {
	registry *prometheus.Registry

	created          prometheus.Counter
	completed        prometheus.Counter
	failed           prometheus.Counter
	retried          prometheus.Counter
	canceled         prometheus.Counter
	workerExceptions prometheus.Counter
}

// New creates and registers the counter set.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	counter := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
		reg.MustRegister(c)
		return c
	}

	return &Metrics{
		registry:         reg,
		created:          counter("tasks_created_total", "Tasks accepted by the submission service."),
		completed:        counter("tasks_completed_total", "Tasks that finished successfully."),
		failed:           counter("tasks_failed_total", "Tasks that exhausted their attempts."),
		retried:          counter("tasks_retried_total", "Failed attempts rescheduled for retry."),
		canceled:         counter("tasks_canceled_total", "Tasks canceled via the API."),
		workerExceptions: counter("worker_exceptions_total", "Unexpected worker-side errors."),
	}
}

// Handler serves the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) TaskCreated()     { m.created.Inc() }
func (m *Metrics) TaskCompleted()   { m.completed.Inc() }
func (m *Metrics) TaskFailed()      { m.failed.Inc() }
func (m *Metrics) TaskRetried()     { m.retried.Inc() }
func (m *Metrics) TaskCanceled()    { m.canceled.Inc() }
func (m *Metrics) WorkerException() { m.workerExceptions.Inc() }
