package task

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Enqueuer publishes a task id onto the shared work queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, taskID string, priority int) error
}

// Metrics receives submission-path counter increments.
type Metrics interface {
	TaskCreated()
	TaskCanceled()
}

// Service implements the submission contract plus the read and cancel
// operations exposed over the API.
type Service struct {
	store       Store
	queue       Enqueuer
	metrics     Metrics
	logger      *slog.Logger
	maxAttempts int
}

// NewService creates a task service backed by the given store and
// queue.
func NewService(store Store, queue Enqueuer, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	if queue == nil {
		return nil, ErrEnqueuerNil
	}

	options := &serviceOptions{
		maxAttempts: 5,
		metrics:     noopMetrics{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Service{
		store:       store,
		queue:       queue,
		metrics:     options.metrics,
		logger:      options.logger,
		maxAttempts: options.maxAttempts,
	}, nil
}

// SubmitParams describes a client submission.
type SubmitParams struct {
	TaskType       string
	Payload        json.RawMessage
	IdempotencyKey *string
	Priority       *int
}

func (p SubmitParams) validate() error {
	if l := len(p.TaskType); l < 1 || l > 64 {
		return ErrInvalidTaskType
	}
	if p.IdempotencyKey != nil {
		if l := len(*p.IdempotencyKey); l < 1 || l > 128 {
			return ErrInvalidIdempotencyKey
		}
	}
	if p.Priority != nil && (*p.Priority < PriorityMin || *p.Priority > PriorityMax) {
		return ErrInvalidPriority
	}
	return nil
}

// Submit accepts a new task: it deduplicates on the idempotency key,
// persists the record as PENDING and transitions it to QUEUED in one
// transaction, then publishes the id onto the queue. Resubmission with
// a known (task_type, idempotency_key) returns the existing record
// unchanged, with no re-enqueue.
func (s *Service) Submit(ctx context.Context, params SubmitParams) (*Task, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	if params.IdempotencyKey != nil {
		existing, err := s.store.FindByIdempotencyKey(ctx, params.TaskType, *params.IdempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrTaskNotFound) {
			return nil, err
		}
	}

	now := time.Now().UTC()
	priority := 0
	if params.Priority != nil {
		priority = *params.Priority
	}

	t := &Task{
		ID:             uuid.NewString(),
		TaskType:       params.TaskType,
		Payload:        params.Payload,
		Status:         StatusPending,
		Priority:       priority,
		IdempotencyKey: params.IdempotencyKey,
		Attempts:       0,
		MaxAttempts:    s.maxAttempts,
		CreatedAt:      now,
		UpdatedAt:      now,
		NextRunAt:      now,
	}

	created := Event{TaskID: t.ID, Timestamp: now, From: StatusPending, To: StatusPending, Message: "created"}

	if err := t.Transition(StatusQueued, now); err != nil {
		return nil, err
	}
	enqueued := Event{TaskID: t.ID, Timestamp: t.UpdatedAt, From: StatusPending, To: StatusQueued, Message: "enqueued"}

	if err := s.store.Create(ctx, t, created, enqueued); err != nil {
		// Lost an idempotency-key race: the winner's commit holds the
		// unique index, so re-read and return the winning record.
		if errors.Is(err, ErrDuplicateIdempotencyKey) && params.IdempotencyKey != nil {
			return s.store.FindByIdempotencyKey(ctx, params.TaskType, *params.IdempotencyKey)
		}
		return nil, err
	}

	// The record is durable at this point; a failed publish is
	// recovered by the scheduler republishing due tasks.
	if err := s.queue.Enqueue(ctx, t.ID, t.Priority); err != nil {
		s.logger.Warn("failed to enqueue task, scheduler will republish",
			slog.String("task_id", t.ID),
			slog.String("error", err.Error()))
	}

	s.metrics.TaskCreated()
	return t, nil
}

// Get returns the task or ErrTaskNotFound.
func (s *Service) Get(ctx context.Context, id string) (*Task, error) {
	return s.store.Get(ctx, id)
}

// Events returns the audit log of a task.
func (s *Service) Events(ctx context.Context, id string) ([]Event, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Events(ctx, id)
}

// Cancel transitions a non-terminal task to CANCELED. Cancellation of
// a RUNNING task is cooperative: the in-flight handler is not
// interrupted, but the worker observes the terminal status before
// committing its outcome.
func (s *Service) Cancel(ctx context.Context, id string) (*Task, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status.Terminal() {
		return nil, ErrTerminalStatus
	}

	from := t.Status
	now := time.Now().UTC()
	if err := t.Transition(StatusCanceled, now); err != nil {
		return nil, err
	}

	ev := Event{TaskID: t.ID, Timestamp: now, From: from, To: StatusCanceled, Message: "canceled via API"}
	if err := s.store.Update(ctx, t, ev); err != nil {
		return nil, err
	}

	s.metrics.TaskCanceled()
	return t, nil
}

// ListParams carries raw listing inputs from the API.
type ListParams struct {
	Status string
	Limit  int
	Cursor string
}

// ListPage is one page of a cursor-paginated listing.
type ListPage struct {
	Items      []*Task
	NextCursor *string
}

// List returns tasks in (created_at DESC, id DESC) order. Limit is
// clamped to [1, 100] and defaults to 20.
func (s *Service) List(ctx context.Context, params ListParams) (*ListPage, error) {
	limit := params.Limit
	switch {
	case limit == 0:
		limit = 20
	case limit < 1:
		limit = 1
	case limit > 100:
		limit = 100
	}

	filter := ListFilter{Limit: limit + 1}

	if params.Status != "" {
		st := Status(params.Status)
		if !st.Valid() {
			return nil, ErrInvalidStatus
		}
		filter.Status = &st
	}

	if params.Cursor != "" {
		c, err := DecodeCursor(params.Cursor)
		if err != nil {
			return nil, err
		}
		filter.Cursor = &c
	}

	rows, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := &ListPage{Items: rows}
	if len(rows) > limit {
		last := rows[limit-1]
		nc := EncodeCursor(last.CreatedAt, last.ID)
		page.NextCursor = &nc
		page.Items = rows[:limit]
	}
	return page, nil
}
