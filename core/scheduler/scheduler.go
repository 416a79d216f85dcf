package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/taskflow/core/task"
)

// batchSize bounds one scan of due tasks.
const batchSize = 200

// Common errors
var (
	ErrStoreNil    = errors.New("store cannot be nil")
	ErrEnqueuerNil = errors.New("enqueuer cannot be nil")
)

// Scheduler periodically republishes due tasks onto the queue. It
// exists to recover lost queue entries and to deliver retries whose
// next_run_at was in the future when the worker recorded the failure.
// Double-enqueue is harmless: the worker claim protocol filters
// duplicates.
//
// It also sweeps RUNNING tasks whose updated_at is stale, the trace a
// crashed worker leaves behind after its lock expires, and requeues
// them.
type Scheduler struct {
	store    task.Store
	queue    task.Enqueuer
	interval time.Duration
	staleAge time.Duration
	logger   *slog.Logger
}

// New creates a scheduler over the given store and queue.
func New(store task.Store, queue task.Enqueuer, opts ...Option) (*Scheduler, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	if queue == nil {
		return nil, ErrEnqueuerNil
	}

	options := &schedulerOptions{
		interval: time.Second,
		staleAge: 150 * time.Second,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Scheduler{
		store:    store,
		queue:    queue,
		interval: options.interval,
		staleAge: options.staleAge,
		logger:   options.logger,
	}, nil
}

// Start runs the loop until the context is done. It ticks immediately
// on start, then every interval.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", slog.Duration("interval", s.interval))

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// Run returns a function suitable for errgroup.
func (s *Scheduler) Run(ctx context.Context) func() error {
	return func() error {
		if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now().UTC()
	s.republishDue(ctx, now)
	if s.staleAge > 0 {
		s.requeueStaleRunning(ctx, now)
	}
}

func (s *Scheduler) republishDue(ctx context.Context, now time.Time) {
	due, err := s.store.Due(ctx, now, batchSize)
	if err != nil {
		s.logger.Error("due scan failed", slog.String("error", err.Error()))
		return
	}

	for _, t := range due {
		if err := s.queue.Enqueue(ctx, t.ID, t.Priority); err != nil {
			s.logger.Error("republish failed",
				slog.String("task_id", t.ID),
				slog.String("error", err.Error()))
			return
		}
	}

	if len(due) > 0 {
		s.logger.Debug("republished due tasks", slog.Int("count", len(due)))
	}
}

// requeueStaleRunning returns crashed-worker tasks to the queue. The
// RUNNING -> QUEUED edge is the same one used for retries, and the
// worker re-checks status and next_run_at on claim, so a false
// positive (a handler still legitimately running) is filtered by the
// exclusion lock.
func (s *Scheduler) requeueStaleRunning(ctx context.Context, now time.Time) {
	stale, err := s.store.StaleRunning(ctx, now.Add(-s.staleAge), batchSize)
	if err != nil {
		s.logger.Error("stale scan failed", slog.String("error", err.Error()))
		return
	}

	for _, t := range stale {
		lastUpdate := t.UpdatedAt
		if err := t.Transition(task.StatusQueued, now); err != nil {
			s.logger.Error("illegal requeue transition",
				slog.String("task_id", t.ID),
				slog.String("error", err.Error()))
			continue
		}
		t.NextRunAt = now

		ev := task.Event{
			TaskID:    t.ID,
			Timestamp: now,
			From:      task.StatusRunning,
			To:        task.StatusQueued,
			Message:   "requeued after stale lock",
		}
		if err := s.store.Update(ctx, t, ev); err != nil {
			s.logger.Error("requeue commit failed",
				slog.String("task_id", t.ID),
				slog.String("error", err.Error()))
			continue
		}

		if err := s.queue.Enqueue(ctx, t.ID, t.Priority); err != nil {
			s.logger.Error("requeue publish failed",
				slog.String("task_id", t.ID),
				slog.String("error", err.Error()))
		}

		s.logger.Warn("requeued stale running task",
			slog.String("task_id", t.ID),
			slog.Time("last_update", lastUpdate))
	}
}
