package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/taskflow/core/task"
)

type handlers struct {
	svc        *task.Service
	redisProbe func(context.Context) error
	logger     *slog.Logger
}

type createRequest struct {
	TaskType       string          `json:"task_type"`
	Payload        json.RawMessage `json:"payload"`
	IdempotencyKey *string         `json:"idempotency_key"`
	Priority       *int            `json:"priority"`
}

func (h *handlers) createTask(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "Request too large")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !isJSONObject(req.Payload) {
		respondError(w, http.StatusBadRequest, "payload must be an object")
		return
	}

	t, err := h.svc.Submit(r.Context(), task.SubmitParams{
		TaskType:       req.TaskType,
		Payload:        req.Payload,
		IdempotencyKey: req.IdempotencyKey,
		Priority:       req.Priority,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toTaskResponse(t))
}

func (h *handlers) getTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTaskResponse(t))
}

func (h *handlers) listTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	page, err := h.svc.List(r.Context(), task.ListParams{
		Status: q.Get("status"),
		Limit:  limit,
		Cursor: q.Get("cursor"),
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	items := make([]taskResponse, 0, len(page.Items))
	for _, t := range page.Items {
		items = append(items, toTaskResponse(t))
	}
	respondJSON(w, http.StatusOK, listResponse{Items: items, NextCursor: page.NextCursor})
}

func (h *handlers) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.Events(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			ID:        e.ID,
			TaskID:    e.TaskID,
			Timestamp: e.Timestamp,
			From:      string(e.From),
			To:        string(e.To),
			Message:   e.Message,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *handlers) cancelTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cancelResponse{ID: t.ID, Status: string(task.StatusCanceled)})
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	redisOK := h.redisProbe != nil && h.redisProbe(r.Context()) == nil
	respondJSON(w, http.StatusOK, healthResponse{OK: true, Redis: redisOK})
}

func (h *handlers) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, task.ErrTaskNotFound):
		respondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, task.ErrTerminalStatus):
		respondError(w, http.StatusConflict, "Task is terminal")
	case errors.Is(err, task.ErrInvalidStatus):
		respondError(w, http.StatusBadRequest, "Invalid status")
	case errors.Is(err, task.ErrInvalidCursor):
		respondError(w, http.StatusBadRequest, "Invalid cursor")
	case errors.Is(err, task.ErrInvalidTaskType),
		errors.Is(err, task.ErrInvalidIdempotencyKey),
		errors.Is(err, task.ErrInvalidPriority):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// isJSONObject reports whether raw is a JSON object document.
func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}
