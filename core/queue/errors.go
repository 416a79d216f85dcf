package queue

import "errors"

// Common errors
var (
	// ErrClientNil is returned when a nil Redis client is provided
	ErrClientNil = errors.New("redis client cannot be nil")

	// ErrInvalidLockTTL is returned when the lock TTL is not positive
	ErrInvalidLockTTL = errors.New("lock ttl must be positive")

	// ErrEnqueueFailed is returned when publishing to the queue fails
	ErrEnqueueFailed = errors.New("failed to enqueue task")

	// ErrDequeueFailed is returned when the queue pop fails or yields a malformed entry
	ErrDequeueFailed = errors.New("failed to dequeue task")

	// ErrLockFailed is returned when a lock operation fails
	ErrLockFailed = errors.New("task lock operation failed")
)
