package queue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// lockKeyPrefix namespaces per-task lock keys.
const lockKeyPrefix = "dto:lock:"

// Lock is a short-lived per-task mutex with TTL. Expiry is the
// recovery mechanism for crashed holders, so the TTL must exceed the
// worker's maximum per-task processing budget.
type Lock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLock creates a lock manager with the given TTL.
func NewLock(client *redis.Client, ttl time.Duration) (*Lock, error) {
	if client == nil {
		return nil, ErrClientNil
	}
	if ttl <= 0 {
		return nil, ErrInvalidLockTTL
	}
	return &Lock{client: client, ttl: ttl}, nil
}

// Acquire atomically takes the lock for the task iff no unexpired lock
// exists, setting an expiration ttl from now.
func (l *Lock) Acquire(ctx context.Context, taskID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKeyPrefix+taskID, "1", l.ttl).Result()
	if err != nil {
		return false, errors.Join(ErrLockFailed, err)
	}
	return ok, nil
}

// Release deletes the lock unconditionally.
func (l *Lock) Release(ctx context.Context, taskID string) error {
	if err := l.client.Del(ctx, lockKeyPrefix+taskID).Err(); err != nil {
		return errors.Join(ErrLockFailed, err)
	}
	return nil
}
