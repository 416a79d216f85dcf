package task

import (
	"encoding/json"
	"time"
)

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusQueued    Status = "QUEUED"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCanceled  Status = "CANCELED"
)

// Valid checks if the status is one of the six enumerated values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusQueued, StatusRunning, StatusCompleted, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether the status has no outgoing transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// Priority bounds. Priority is advisory: it is carried on queue entries
// for observability but does not change consumption order.
const (
	PriorityMin = -100
	PriorityMax = 100
)

// Task is the durable unit of work. The payload is opaque to the
// orchestrator and preserved byte-for-byte; handlers validate it.
type Task struct {
	ID             string          `json:"id"`
	TaskType       string          `json:"task_type"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	Status         Status          `json:"status"`
	Priority       int             `json:"priority"`
	IdempotencyKey *string         `json:"idempotency_key"`
	Attempts       int             `json:"attempts"`
	MaxAttempts    int             `json:"max_attempts"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	NextRunAt      time.Time       `json:"next_run_at"`
	LockedUntil    *time.Time      `json:"-"`
	LastError      *string         `json:"last_error"`
	Result         json.RawMessage `json:"result"`
}

// Clone returns a deep copy so stored records cannot be mutated through
// returned pointers.
func (t *Task) Clone() *Task {
	c := *t
	if t.IdempotencyKey != nil {
		k := *t.IdempotencyKey
		c.IdempotencyKey = &k
	}
	if t.LockedUntil != nil {
		lu := *t.LockedUntil
		c.LockedUntil = &lu
	}
	if t.LastError != nil {
		e := *t.LastError
		c.LastError = &e
	}
	if t.Payload != nil {
		c.Payload = append(json.RawMessage(nil), t.Payload...)
	}
	if t.Result != nil {
		c.Result = append(json.RawMessage(nil), t.Result...)
	}
	return &c
}

// Event is an append-only audit record written in the same transaction
// as every status change.
type Event struct {
	ID        int64     `json:"id"`
	TaskID    string    `json:"task_id"`
	Timestamp time.Time `json:"timestamp"`
	From      Status    `json:"from_status"`
	To        Status    `json:"to_status"`
	Message   string    `json:"message"`
}
