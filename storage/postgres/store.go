package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/taskflow/core/task"
)

const taskColumns = `id, task_type, payload, status, priority, idempotency_key,
	attempts, max_attempts, created_at, updated_at, next_run_at,
	locked_until, last_error, result`

// Store implements task.Store on PostgreSQL. Record mutations and
// their audit events are committed in one transaction.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a store over the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, id string) (*task.Task, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

func (s *Store) Create(ctx context.Context, t *task.Task, events ...task.Event) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		t.ID, t.TaskType, []byte(t.Payload), t.Status, t.Priority, t.IdempotencyKey,
		t.Attempts, t.MaxAttempts, t.CreatedAt, t.UpdatedAt, t.NextRunAt,
		t.LockedUntil, t.LastError, resultBytes(t))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return task.ErrDuplicateIdempotencyKey
		}
		return err
	}

	if err := appendEvents(ctx, tx, events); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) Update(ctx context.Context, t *task.Task, events ...task.Event) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE tasks SET
			task_type = $2, payload = $3, status = $4, priority = $5,
			idempotency_key = $6, attempts = $7, max_attempts = $8,
			updated_at = $9, next_run_at = $10, locked_until = $11,
			last_error = $12, result = $13
		WHERE id = $1`,
		t.ID, t.TaskType, []byte(t.Payload), t.Status, t.Priority,
		t.IdempotencyKey, t.Attempts, t.MaxAttempts,
		t.UpdatedAt, t.NextRunAt, t.LockedUntil,
		t.LastError, resultBytes(t))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return task.ErrTaskNotFound
	}

	if err := appendEvents(ctx, tx, events); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) Due(ctx context.Context, now time.Time, limit int) ([]*task.Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE status = $1 AND next_run_at <= $2
		ORDER BY next_run_at ASC
		LIMIT $3`,
		task.StatusQueued, now.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (s *Store) StaleRunning(ctx context.Context, olderThan time.Time, limit int) ([]*task.Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at ASC
		LIMIT $3`,
		task.StatusRunning, olderThan.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (s *Store) List(ctx context.Context, filter task.ListFilter) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var (
		where []string
		args  []any
	)

	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.Cursor != nil {
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.ID)
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(created_at < $%d OR (created_at = $%d AND id < $%d))", n-1, n-1, n))
	}

	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (s *Store) FindByIdempotencyKey(ctx context.Context, taskType, key string) (*task.Task, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE task_type = $1 AND idempotency_key = $2
		LIMIT 1`,
		taskType, key)
	return scanTask(row)
}

func (s *Store) Events(ctx context.Context, taskID string) ([]task.Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, task_id, timestamp, from_status, to_status, message
		FROM task_events
		WHERE task_id = $1
		ORDER BY id ASC`,
		taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []task.Event
	for rows.Next() {
		var e task.Event
		if err := rows.Scan(&e.ID, &e.TaskID, &e.Timestamp, &e.From, &e.To, &e.Message); err != nil {
			return nil, err
		}
		e.Timestamp = e.Timestamp.UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}

func appendEvents(ctx context.Context, tx pgx.Tx, events []task.Event) error {
	for _, e := range events {
		_, err := tx.Exec(ctx, `
			INSERT INTO task_events (task_id, timestamp, from_status, to_status, message)
			VALUES ($1, $2, $3, $4, $5)`,
			e.TaskID, e.Timestamp, e.From, e.To, e.Message)
		if err != nil {
			return err
		}
	}
	return nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	var (
		t       task.Task
		payload []byte
		result  []byte
	)
	err := row.Scan(&t.ID, &t.TaskType, &payload, &t.Status, &t.Priority, &t.IdempotencyKey,
		&t.Attempts, &t.MaxAttempts, &t.CreatedAt, &t.UpdatedAt, &t.NextRunAt,
		&t.LockedUntil, &t.LastError, &result)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, task.ErrTaskNotFound
		}
		return nil, err
	}

	t.Payload = payload
	t.Result = result
	normalizeUTC(&t)
	return &t, nil
}

func scanTasks(rows pgx.Rows) ([]*task.Task, error) {
	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// normalizeUTC standardizes scanned timestamps on UTC regardless of
// the session timezone.
func normalizeUTC(t *task.Task) {
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	t.NextRunAt = t.NextRunAt.UTC()
	if t.LockedUntil != nil {
		lu := t.LockedUntil.UTC()
		t.LockedUntil = &lu
	}
}

// resultBytes avoids writing a zero-length JSONB value for tasks that
// have not completed yet.
func resultBytes(t *task.Task) []byte {
	if len(t.Result) == 0 {
		return nil
	}
	return t.Result
}
