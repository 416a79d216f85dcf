package task

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store in memory for tests and local
// development. All methods are safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	tasks  map[string]*Task
	events []Event
	nextID int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:  make(map[string]*Task),
		nextID: 1,
	}
}

func (ms *MemoryStore) Get(ctx context.Context, id string) (*Task, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	t, ok := ms.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return t.Clone(), nil
}

func (ms *MemoryStore) Create(ctx context.Context, t *Task, events ...Event) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if t.IdempotencyKey != nil {
		for _, existing := range ms.tasks {
			if existing.TaskType == t.TaskType &&
				existing.IdempotencyKey != nil &&
				*existing.IdempotencyKey == *t.IdempotencyKey {
				return ErrDuplicateIdempotencyKey
			}
		}
	}

	ms.tasks[t.ID] = t.Clone()
	ms.appendEvents(events)
	return nil
}

func (ms *MemoryStore) Update(ctx context.Context, t *Task, events ...Event) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.tasks[t.ID]; !ok {
		return ErrTaskNotFound
	}

	ms.tasks[t.ID] = t.Clone()
	ms.appendEvents(events)
	return nil
}

func (ms *MemoryStore) Due(ctx context.Context, now time.Time, limit int) ([]*Task, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var due []*Task
	for _, t := range ms.tasks {
		if t.Status == StatusQueued && !t.NextRunAt.After(now) {
			due = append(due, t.Clone())
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].NextRunAt.Before(due[j].NextRunAt)
	})

	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (ms *MemoryStore) StaleRunning(ctx context.Context, olderThan time.Time, limit int) ([]*Task, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var stale []*Task
	for _, t := range ms.tasks {
		if t.Status == StatusRunning && t.UpdatedAt.Before(olderThan) {
			stale = append(stale, t.Clone())
		}
	}

	sort.Slice(stale, func(i, j int) bool {
		return stale[i].UpdatedAt.Before(stale[j].UpdatedAt)
	})

	if len(stale) > limit {
		stale = stale[:limit]
	}
	return stale, nil
}

func (ms *MemoryStore) List(ctx context.Context, filter ListFilter) ([]*Task, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var rows []*Task
	for _, t := range ms.tasks {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Cursor != nil && !lessInListOrder(t, filter.Cursor) {
			continue
		}
		rows = append(rows, t.Clone())
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID > rows[j].ID
	})

	if filter.Limit > 0 && len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}
	return rows, nil
}

// lessInListOrder reports whether t sorts strictly after the cursor row
// in (created_at DESC, id DESC) order.
func lessInListOrder(t *Task, c *Cursor) bool {
	if t.CreatedAt.Before(c.CreatedAt) {
		return true
	}
	return t.CreatedAt.Equal(c.CreatedAt) && t.ID < c.ID
}

func (ms *MemoryStore) FindByIdempotencyKey(ctx context.Context, taskType, key string) (*Task, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	for _, t := range ms.tasks {
		if t.TaskType == taskType && t.IdempotencyKey != nil && *t.IdempotencyKey == key {
			return t.Clone(), nil
		}
	}
	return nil, ErrTaskNotFound
}

func (ms *MemoryStore) Events(ctx context.Context, taskID string) ([]Event, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var out []Event
	for _, e := range ms.events {
		if e.TaskID == taskID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (ms *MemoryStore) appendEvents(events []Event) {
	for _, e := range events {
		e.ID = ms.nextID
		ms.nextID++
		ms.events = append(ms.events, e)
	}
}
