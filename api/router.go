package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/taskflow/core/task"
)

// Router assembles the versioned HTTP API. All /v1 endpoints require
// the API key header.
func Router(cfg Config, svc *task.Service, redisProbe func(context.Context) error, metricsHandler http.Handler, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	h := &handlers{
		svc:        svc,
		redisProbe: redisProbe,
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(requireAPIKey(cfg))

		v1.Post("/tasks", h.createTask)
		v1.Get("/tasks", h.listTasks)
		v1.Get("/tasks/{id}", h.getTask)
		v1.Get("/tasks/{id}/events", h.listEvents)
		v1.Post("/tasks/{id}/cancel", h.cancelTask)

		v1.Get("/health", h.health)
		v1.Method(http.MethodGet, "/metrics", metricsHandler)
	})

	return r
}
