package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrymomot/taskflow/core/task"
)

// taskResponse is the task record wire shape. Timestamps are ISO-8601
// with timezone; locked_until is internal and never exposed.
type taskResponse struct {
	ID             string          `json:"id"`
	TaskType       string          `json:"task_type"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	NextRunAt      time.Time       `json:"next_run_at"`
	Attempts       int             `json:"attempts"`
	MaxAttempts    int             `json:"max_attempts"`
	Priority       int             `json:"priority"`
	LastError      *string         `json:"last_error"`
	Result         json.RawMessage `json:"result"`
	IdempotencyKey *string         `json:"idempotency_key"`
}

func toTaskResponse(t *task.Task) taskResponse {
	return taskResponse{
		ID:             t.ID,
		TaskType:       t.TaskType,
		Status:         string(t.Status),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		NextRunAt:      t.NextRunAt,
		Attempts:       t.Attempts,
		MaxAttempts:    t.MaxAttempts,
		Priority:       t.Priority,
		LastError:      t.LastError,
		Result:         t.Result,
		IdempotencyKey: t.IdempotencyKey,
	}
}

type listResponse struct {
	Items      []taskResponse `json:"items"`
	NextCursor *string        `json:"next_cursor"`
}

type eventResponse struct {
	ID        int64     `json:"id"`
	TaskID    string    `json:"task_id"`
	Timestamp time.Time `json:"timestamp"`
	From      string    `json:"from_status"`
	To        string    `json:"to_status"`
	Message   string    `json:"message"`
}

type cancelResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type healthResponse struct {
	OK    bool `json:"ok"`
	Redis bool `json:"redis"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, errorResponse{Detail: detail})
}
