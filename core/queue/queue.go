package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// entry is the wire format shared by producers and workers. Priority
// is carried for observability only; consumption order is the list
// order.
type entry struct {
	TaskID   string `json:"task_id"`
	Priority int    `json:"priority"`
}

// Queue is a shared work-item channel backed by a named Redis list.
// It is not durable in the task-correctness sense: the task store is
// authoritative and the scheduler republishes lost entries.
type Queue struct {
	client *redis.Client
	key    string
}

// New creates a queue on the given Redis list key.
func New(client *redis.Client, key string) (*Queue, error) {
	if client == nil {
		return nil, ErrClientNil
	}
	if key == "" {
		key = DefaultQueueName
	}
	return &Queue{client: client, key: key}, nil
}

// Enqueue publishes a task id at the head of the list. Non-blocking.
func (q *Queue) Enqueue(ctx context.Context, taskID string, priority int) error {
	payload, err := json.Marshal(entry{TaskID: taskID, Priority: priority})
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return errors.Join(ErrEnqueueFailed, err)
	}
	return nil
}

// Dequeue blocks up to timeout for the next entry at the tail and
// returns its task id, or "" when the timeout elapses with no entry.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", errors.Join(ErrDequeueFailed, err)
	}

	// BRPOP returns [key, value].
	if len(res) != 2 {
		return "", ErrDequeueFailed
	}

	var e entry
	if err := json.Unmarshal([]byte(res[1]), &e); err != nil {
		return "", errors.Join(ErrDequeueFailed, err)
	}
	return e.TaskID, nil
}
