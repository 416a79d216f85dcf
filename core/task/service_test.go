package task_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskflow/core/task"
)

// captureEnqueuer records published ids; err, when set, fails every
// publish.
type captureEnqueuer struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (e *captureEnqueuer) Enqueue(ctx context.Context, taskID string, priority int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.ids = append(e.ids, taskID)
	return nil
}

func (e *captureEnqueuer) published() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.ids...)
}

func ptr[T any](v T) *T { return &v }

func newTestService(t *testing.T, opts ...task.ServiceOption) (*task.Service, *task.MemoryStore, *captureEnqueuer) {
	t.Helper()

	store := task.NewMemoryStore()
	enq := &captureEnqueuer{}
	svc, err := task.NewService(store, enq, opts...)
	require.NoError(t, err)
	return svc, store, enq
}

func TestNewService(t *testing.T) {
	t.Parallel()

	t.Run("nil store", func(t *testing.T) {
		t.Parallel()

		_, err := task.NewService(nil, &captureEnqueuer{})
		assert.ErrorIs(t, err, task.ErrStoreNil)
	})

	t.Run("nil queue", func(t *testing.T) {
		t.Parallel()

		_, err := task.NewService(task.NewMemoryStore(), nil)
		assert.ErrorIs(t, err, task.ErrEnqueuerNil)
	})
}

func TestServiceSubmit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("creates queued task and publishes it", func(t *testing.T) {
		t.Parallel()

		svc, store, enq := newTestService(t, task.WithMaxAttempts(3))

		created, err := svc.Submit(ctx, task.SubmitParams{
			TaskType: "data_transform",
			Payload:  json.RawMessage(`{"data":{"a":1}}`),
			Priority: ptr(7),
		})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)

		assert.Equal(t, task.StatusQueued, created.Status)
		assert.Equal(t, "data_transform", created.TaskType)
		assert.Equal(t, 7, created.Priority)
		assert.Equal(t, 0, created.Attempts)
		assert.Equal(t, 3, created.MaxAttempts)
		assert.JSONEq(t, `{"data":{"a":1}}`, string(created.Payload))
		assert.False(t, created.NextRunAt.After(time.Now().UTC()))

		assert.Equal(t, []string{created.ID}, enq.published())

		events, err := store.Events(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "created", events[0].Message)
		assert.Equal(t, task.StatusPending, events[0].To)
		assert.Equal(t, "enqueued", events[1].Message)
		assert.Equal(t, task.StatusPending, events[1].From)
		assert.Equal(t, task.StatusQueued, events[1].To)
	})

	t.Run("defaults priority to zero", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newTestService(t)
		created, err := svc.Submit(ctx, task.SubmitParams{TaskType: "cpu_burn"})
		require.NoError(t, err)
		assert.Equal(t, 0, created.Priority)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newTestService(t)

		cases := []struct {
			name   string
			params task.SubmitParams
			want   error
		}{
			{"empty task type", task.SubmitParams{TaskType: ""}, task.ErrInvalidTaskType},
			{"task type too long", task.SubmitParams{TaskType: longString(65)}, task.ErrInvalidTaskType},
			{"empty idempotency key", task.SubmitParams{TaskType: "x", IdempotencyKey: ptr("")}, task.ErrInvalidIdempotencyKey},
			{"idempotency key too long", task.SubmitParams{TaskType: "x", IdempotencyKey: ptr(longString(129))}, task.ErrInvalidIdempotencyKey},
			{"priority too low", task.SubmitParams{TaskType: "x", Priority: ptr(-101)}, task.ErrInvalidPriority},
			{"priority too high", task.SubmitParams{TaskType: "x", Priority: ptr(101)}, task.ErrInvalidPriority},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Submit(ctx, tc.params)
				assert.ErrorIs(t, err, tc.want)
			})
		}
	})

	t.Run("resubmission with same key returns existing record", func(t *testing.T) {
		t.Parallel()

		svc, _, enq := newTestService(t)

		first, err := svc.Submit(ctx, task.SubmitParams{
			TaskType:       "http_fetch",
			IdempotencyKey: ptr("fetch-homepage"),
		})
		require.NoError(t, err)

		second, err := svc.Submit(ctx, task.SubmitParams{
			TaskType:       "http_fetch",
			IdempotencyKey: ptr("fetch-homepage"),
		})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Len(t, enq.published(), 1, "dedup hit must not re-enqueue")
	})

	t.Run("same key under different task type creates a new task", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newTestService(t)

		first, err := svc.Submit(ctx, task.SubmitParams{TaskType: "a", IdempotencyKey: ptr("k")})
		require.NoError(t, err)
		second, err := svc.Submit(ctx, task.SubmitParams{TaskType: "b", IdempotencyKey: ptr("k")})
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("publish failure still returns the durable task", func(t *testing.T) {
		t.Parallel()

		store := task.NewMemoryStore()
		enq := &captureEnqueuer{err: errors.New("redis down")}
		svc, err := task.NewService(store, enq)
		require.NoError(t, err)

		created, err := svc.Submit(ctx, task.SubmitParams{TaskType: "cpu_burn"})
		require.NoError(t, err)
		assert.Equal(t, task.StatusQueued, created.Status)

		stored, err := store.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, task.StatusQueued, stored.Status)
	})
}

func TestServiceCancel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("cancels a queued task", func(t *testing.T) {
		t.Parallel()

		svc, store, _ := newTestService(t)
		created, err := svc.Submit(ctx, task.SubmitParams{TaskType: "cpu_burn"})
		require.NoError(t, err)

		canceled, err := svc.Cancel(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, task.StatusCanceled, canceled.Status)

		events, err := store.Events(ctx, created.ID)
		require.NoError(t, err)
		last := events[len(events)-1]
		assert.Equal(t, task.StatusQueued, last.From)
		assert.Equal(t, task.StatusCanceled, last.To)
		assert.Equal(t, "canceled via API", last.Message)
	})

	t.Run("terminal task conflicts", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newTestService(t)
		created, err := svc.Submit(ctx, task.SubmitParams{TaskType: "cpu_burn"})
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, created.ID)
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, created.ID)
		assert.ErrorIs(t, err, task.ErrTerminalStatus)
	})

	t.Run("unknown task", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newTestService(t)
		_, err := svc.Cancel(ctx, "nope")
		assert.ErrorIs(t, err, task.ErrTaskNotFound)
	})
}

func TestServiceEvents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.Events(ctx, "missing")
	assert.ErrorIs(t, err, task.ErrTaskNotFound)

	created, err := svc.Submit(ctx, task.SubmitParams{TaskType: "cpu_burn"})
	require.NoError(t, err)

	events, err := svc.Events(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	for i := 1; i < len(events); i++ {
		assert.Greater(t, events[i].ID, events[i-1].ID)
	}
}

func TestServiceList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	// seed writes n QUEUED tasks with strictly increasing created_at.
	seed := func(t *testing.T, store *task.MemoryStore, n int) []string {
		t.Helper()

		base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
		ids := make([]string, 0, n)
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("task-%03d", i)
			created := base.Add(time.Duration(i) * time.Minute)
			err := store.Create(ctx, &task.Task{
				ID:        id,
				TaskType:  "cpu_burn",
				Status:    task.StatusQueued,
				CreatedAt: created,
				UpdatedAt: created,
				NextRunAt: created,
			})
			require.NoError(t, err)
			ids = append(ids, id)
		}
		return ids
	}

	t.Run("newest first with default limit", func(t *testing.T) {
		t.Parallel()

		svc, store, _ := newTestService(t)
		ids := seed(t, store, 5)

		page, err := svc.List(ctx, task.ListParams{})
		require.NoError(t, err)
		require.Len(t, page.Items, 5)
		assert.Nil(t, page.NextCursor)
		assert.Equal(t, ids[4], page.Items[0].ID)
		assert.Equal(t, ids[0], page.Items[4].ID)
	})

	t.Run("cursor walk covers every row exactly once", func(t *testing.T) {
		t.Parallel()

		svc, store, _ := newTestService(t)
		seed(t, store, 7)

		seen := make(map[string]int)
		cursor := ""
		pages := 0
		for {
			page, err := svc.List(ctx, task.ListParams{Limit: 3, Cursor: cursor})
			require.NoError(t, err)
			for _, it := range page.Items {
				seen[it.ID]++
			}
			pages++
			if page.NextCursor == nil {
				break
			}
			cursor = *page.NextCursor
		}

		assert.Equal(t, 3, pages)
		assert.Len(t, seen, 7)
		for id, n := range seen {
			assert.Equal(t, 1, n, "task %s returned more than once", id)
		}
	})

	t.Run("breaks created_at ties by id descending", func(t *testing.T) {
		t.Parallel()

		svc, store, _ := newTestService(t)
		created := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
		for _, id := range []string{"aaa", "bbb", "ccc"} {
			require.NoError(t, store.Create(ctx, &task.Task{
				ID: id, TaskType: "x", Status: task.StatusQueued,
				CreatedAt: created, UpdatedAt: created, NextRunAt: created,
			}))
		}

		first, err := svc.List(ctx, task.ListParams{Limit: 2})
		require.NoError(t, err)
		require.Len(t, first.Items, 2)
		assert.Equal(t, "ccc", first.Items[0].ID)
		assert.Equal(t, "bbb", first.Items[1].ID)
		require.NotNil(t, first.NextCursor)

		rest, err := svc.List(ctx, task.ListParams{Limit: 2, Cursor: *first.NextCursor})
		require.NoError(t, err)
		require.Len(t, rest.Items, 1)
		assert.Equal(t, "aaa", rest.Items[0].ID)
	})

	t.Run("status filter", func(t *testing.T) {
		t.Parallel()

		svc, store, _ := newTestService(t)
		seed(t, store, 3)

		canceled, err := svc.List(ctx, task.ListParams{Status: string(task.StatusCanceled)})
		require.NoError(t, err)
		assert.Empty(t, canceled.Items)

		queued, err := svc.List(ctx, task.ListParams{Status: string(task.StatusQueued)})
		require.NoError(t, err)
		assert.Len(t, queued.Items, 3)
	})

	t.Run("invalid status", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newTestService(t)
		_, err := svc.List(ctx, task.ListParams{Status: "SLEEPING"})
		assert.ErrorIs(t, err, task.ErrInvalidStatus)
	})

	t.Run("invalid cursor", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newTestService(t)
		_, err := svc.List(ctx, task.ListParams{Cursor: "???"})
		assert.ErrorIs(t, err, task.ErrInvalidCursor)
	})

	t.Run("limit clamping", func(t *testing.T) {
		t.Parallel()

		svc, store, _ := newTestService(t)
		seed(t, store, 4)

		page, err := svc.List(ctx, task.ListParams{Limit: -10})
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)

		page, err = svc.List(ctx, task.ListParams{Limit: 500})
		require.NoError(t, err)
		assert.Len(t, page.Items, 4)
	})
}

func longString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}
