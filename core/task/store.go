package task

import (
	"context"
	"time"
)

// ListFilter narrows and paginates a task listing. The only predicate
// is optional status equality; order is always (created_at DESC,
// id DESC).
type ListFilter struct {
	Status *Status
	Limit  int
	Cursor *Cursor
}

// Store persists tasks and their audit events. Implementations must
// commit a record mutation and its events in a single transaction, and
// must return timestamps as UTC.
type Store interface {
	// Get returns the task or ErrTaskNotFound.
	Get(ctx context.Context, id string) (*Task, error)

	// Create inserts the task together with its initial events.
	// A non-null (task_type, idempotency_key) collision yields
	// ErrDuplicateIdempotencyKey.
	Create(ctx context.Context, t *Task, events ...Event) error

	// Update persists the mutated record and appends events atomically.
	Update(ctx context.Context, t *Task, events ...Event) error

	// Due returns up to limit QUEUED tasks with next_run_at <= now,
	// ordered by next_run_at ascending.
	Due(ctx context.Context, now time.Time, limit int) ([]*Task, error)

	// StaleRunning returns up to limit RUNNING tasks whose updated_at
	// is older than the given instant. Used by the recovery sweep.
	StaleRunning(ctx context.Context, olderThan time.Time, limit int) ([]*Task, error)

	// List returns up to filter.Limit tasks matching the filter in
	// (created_at DESC, id DESC) order.
	List(ctx context.Context, filter ListFilter) ([]*Task, error)

	// FindByIdempotencyKey returns the single task with the given
	// (task_type, key) pair, or ErrTaskNotFound.
	FindByIdempotencyKey(ctx context.Context, taskType, key string) (*Task, error)

	// Events returns the audit log for a task in insertion order.
	Events(ctx context.Context, taskID string) ([]Event, error)
}
