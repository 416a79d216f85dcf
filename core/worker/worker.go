package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/taskflow/core/task"
)

// Dequeuer pops the next task id from the shared queue, blocking up to
// the given timeout. An empty id means the timeout elapsed.
type Dequeuer interface {
	Dequeue(ctx context.Context, timeout time.Duration) (string, error)
}

// Locker is the per-task exclusion lock used by the claim protocol.
type Locker interface {
	Acquire(ctx context.Context, taskID string) (bool, error)
	Release(ctx context.Context, taskID string) error
}

// Metrics receives execution-path counter increments.
type Metrics interface {
	TaskCompleted()
	TaskFailed()
	TaskRetried()
	WorkerException()
}

// Worker claims queued tasks and executes them with at-least-once
// semantics. Correctness of the claim relies on acquiring the
// exclusion lock, then re-reading the record and checking both status
// and next_run_at before transitioning to RUNNING; the scheduler may
// deliver duplicates and this protocol filters them.
type Worker struct {
	store    task.Store
	queue    Dequeuer
	locks    Locker
	registry *Registry
	retry    task.RetryPolicy
	metrics  Metrics
	logger   *slog.Logger
	workerID uuid.UUID

	pollTimeout    time.Duration
	handlerTimeout time.Duration

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker creates a worker over the given store, queue, lock, and
// handler registry.
func NewWorker(store task.Store, queue Dequeuer, locks Locker, registry *Registry, opts ...Option) (*Worker, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	if queue == nil {
		return nil, ErrQueueNil
	}
	if locks == nil {
		return nil, ErrLockerNil
	}
	if registry == nil {
		return nil, ErrRegistryNil
	}

	options := &workerOptions{
		pollTimeout:    2 * time.Second,
		handlerTimeout: 15 * time.Second,
		retry:          task.DefaultRetryPolicy(),
		metrics:        noopMetrics{},
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Worker{
		store:          store,
		queue:          queue,
		locks:          locks,
		registry:       registry,
		retry:          options.retry,
		metrics:        options.metrics,
		logger:         options.logger,
		workerID:       uuid.New(),
		pollTimeout:    options.pollTimeout,
		handlerTimeout: options.handlerTimeout,
	}, nil
}

// Start begins the claim/execute loop in the background.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return ErrAlreadyStarted
	}
	if w.registry.Len() == 0 {
		return ErrNoHandlers
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.run()

	w.logger.Info("worker started",
		slog.String("worker_id", w.workerID.String()),
		slog.Any("task_types", w.registry.TaskTypes()))
	return nil
}

// Stop cancels the loop and waits for the in-flight task to finish.
func (w *Worker) Stop() error {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel == nil {
		return ErrNotStarted
	}
	cancel()
	w.wg.Wait()

	w.logger.Info("worker stopped", slog.String("worker_id", w.workerID.String()))
	return nil
}

// Run returns a function suitable for errgroup: it starts the worker,
// blocks until the context is done, then stops it.
func (w *Worker) Run(ctx context.Context) func() error {
	return func() error {
		if err := w.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return w.Stop()
	}
}

func (w *Worker) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		taskID, err := w.queue.Dequeue(w.ctx, w.pollTimeout)
		if err != nil {
			if w.ctx.Err() != nil {
				return
			}
			w.metrics.WorkerException()
			w.logger.Error("dequeue failed",
				slog.String("worker_id", w.workerID.String()),
				slog.String("error", err.Error()))
			// Back off so a dead queue does not spin the loop.
			select {
			case <-w.ctx.Done():
				return
			case <-time.After(w.pollTimeout):
			}
			continue
		}
		if taskID == "" {
			continue
		}

		w.process(taskID)
	}
}

// process runs the full claim protocol for one queue entry. The store
// writes use a context detached from the worker lifecycle so a
// graceful shutdown never leaves a task RUNNING with no outcome.
func (w *Worker) process(taskID string) {
	ctx := context.WithoutCancel(w.ctx)
	start := time.Now()

	acquired, err := w.locks.Acquire(ctx, taskID)
	if err != nil {
		w.metrics.WorkerException()
		w.logger.Error("lock acquire failed",
			slog.String("task_id", taskID),
			slog.String("error", err.Error()))
		return
	}
	if !acquired {
		// Another worker holds the claim.
		return
	}
	defer func() {
		if err := w.locks.Release(ctx, taskID); err != nil {
			w.logger.Error("lock release failed",
				slog.String("task_id", taskID),
				slog.String("error", err.Error()))
		}
		w.logger.Debug("task processed",
			slog.String("worker_id", w.workerID.String()),
			slog.String("task_id", taskID),
			slog.Duration("latency", time.Since(start)))
	}()

	t, err := w.store.Get(ctx, taskID)
	if err != nil {
		if !errors.Is(err, task.ErrTaskNotFound) {
			w.metrics.WorkerException()
			w.logger.Error("task load failed",
				slog.String("task_id", taskID),
				slog.String("error", err.Error()))
		}
		return
	}

	if t.Status.Terminal() {
		return
	}

	now := time.Now().UTC()
	if t.Status != task.StatusQueued || t.NextRunAt.UTC().After(now) {
		// Stale queue entry: already claimed, or a retry not yet due.
		return
	}

	if err := t.Transition(task.StatusRunning, now); err != nil {
		// Fatal invariant violation; leave the record untouched.
		w.metrics.WorkerException()
		w.logger.Error("illegal claim transition",
			slog.String("task_id", taskID),
			slog.String("error", err.Error()))
		return
	}

	ev := task.Event{
		TaskID:    t.ID,
		Timestamp: now,
		From:      task.StatusQueued,
		To:        task.StatusRunning,
		Message:   "picked up by worker",
	}
	if err := w.store.Update(ctx, t, ev); err != nil {
		w.metrics.WorkerException()
		w.logger.Error("claim commit failed",
			slog.String("task_id", taskID),
			slog.String("error", err.Error()))
		return
	}

	result, execErr := w.execute(ctx, t)
	w.recordOutcome(ctx, taskID, result, execErr)
}

type handlerResult struct {
	result json.RawMessage
	err    error
}

// execute runs the handler with a bounded wall-clock timeout and panic
// recovery. Unknown task types fail the attempt like any handler error
// so attempts still increment.
func (w *Worker) execute(ctx context.Context, t *task.Task) (json.RawMessage, error) {
	handler, err := w.registry.Get(t.TaskType)
	if err != nil {
		return nil, err
	}

	hctx, cancel := context.WithTimeout(ctx, w.handlerTimeout)
	defer cancel()

	out := make(chan handlerResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				out <- handlerResult{err: fmt.Errorf("panic in handler: %v", r)}
			}
		}()
		res, herr := handler.Handle(hctx, t.Payload)
		out <- handlerResult{result: res, err: herr}
	}()

	select {
	case r := <-out:
		return r.result, r.err
	case <-hctx.Done():
		return nil, fmt.Errorf("handler timed out after %s", w.handlerTimeout)
	}
}

// recordOutcome commits the terminal-or-retry write for one attempt.
// The record is re-read first: a cancel that landed while the handler
// ran wins, and the outcome is discarded.
func (w *Worker) recordOutcome(ctx context.Context, taskID string, result json.RawMessage, execErr error) {
	t, err := w.store.Get(ctx, taskID)
	if err != nil {
		w.metrics.WorkerException()
		w.logger.Error("outcome load failed",
			slog.String("task_id", taskID),
			slog.String("error", err.Error()))
		return
	}

	if t.Status == task.StatusCanceled {
		w.logger.Info("task canceled mid-run, outcome discarded",
			slog.String("task_id", taskID))
		return
	}

	now := time.Now().UTC()

	if execErr == nil {
		if err := t.Transition(task.StatusCompleted, now); err != nil {
			w.metrics.WorkerException()
			w.logger.Error("illegal completion transition",
				slog.String("task_id", taskID),
				slog.String("error", err.Error()))
			return
		}
		t.Result = result
		t.LastError = nil

		ev := task.Event{TaskID: t.ID, Timestamp: now, From: task.StatusRunning, To: task.StatusCompleted, Message: "completed"}
		if err := w.store.Update(ctx, t, ev); err != nil {
			w.metrics.WorkerException()
			w.logger.Error("completion commit failed",
				slog.String("task_id", taskID),
				slog.String("error", err.Error()))
			return
		}

		w.metrics.TaskCompleted()
		w.logger.Info("task completed",
			slog.String("worker_id", w.workerID.String()),
			slog.String("task_id", taskID),
			slog.String("task_type", t.TaskType))
		return
	}

	t.Attempts++
	msg := execErr.Error()
	t.LastError = &msg

	var ev task.Event
	if t.Attempts >= t.MaxAttempts {
		if err := t.Transition(task.StatusFailed, now); err != nil {
			w.metrics.WorkerException()
			w.logger.Error("illegal failure transition",
				slog.String("task_id", taskID),
				slog.String("error", err.Error()))
			return
		}
		ev = task.Event{TaskID: t.ID, Timestamp: now, From: task.StatusRunning, To: task.StatusFailed, Message: "failed: " + msg}
	} else {
		if err := t.Transition(task.StatusQueued, now); err != nil {
			w.metrics.WorkerException()
			w.logger.Error("illegal retry transition",
				slog.String("task_id", taskID),
				slog.String("error", err.Error()))
			return
		}
		t.NextRunAt = w.retry.NextRun(t.Attempts)
		ev = task.Event{TaskID: t.ID, Timestamp: now, From: task.StatusRunning, To: task.StatusQueued, Message: "retry scheduled: " + msg}
	}

	if err := w.store.Update(ctx, t, ev); err != nil {
		w.metrics.WorkerException()
		w.logger.Error("outcome commit failed",
			slog.String("task_id", taskID),
			slog.String("error", err.Error()))
		return
	}

	if t.Status == task.StatusFailed {
		w.metrics.TaskFailed()
		w.logger.Warn("task failed permanently",
			slog.String("task_id", taskID),
			slog.String("task_type", t.TaskType),
			slog.Int("attempts", t.Attempts),
			slog.String("error", msg))
	} else {
		w.metrics.TaskRetried()
		w.logger.Info("task retry scheduled",
			slog.String("task_id", taskID),
			slog.String("task_type", t.TaskType),
			slog.Int("attempts", t.Attempts),
			slog.Time("next_run_at", t.NextRunAt),
			slog.String("error", msg))
	}
}
