package task

import "errors"

// Common errors
var (
	// ErrStoreNil is returned when a nil store is provided
	ErrStoreNil = errors.New("store cannot be nil")

	// ErrEnqueuerNil is returned when a nil enqueuer is provided
	ErrEnqueuerNil = errors.New("enqueuer cannot be nil")

	// ErrTaskNotFound is returned when the requested task does not exist
	ErrTaskNotFound = errors.New("task not found")

	// ErrDuplicateIdempotencyKey is returned when an insert collides on
	// a non-null (task_type, idempotency_key) pair
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key for task type")

	// ErrInvalidTransition is returned when a status change violates the state machine
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrTerminalStatus is returned when mutating a task in a terminal status
	ErrTerminalStatus = errors.New("task is in a terminal status")

	// ErrInvalidStatus is returned when a status string is not one of the enumerated values
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrInvalidCursor is returned when a pagination cursor cannot be decoded
	ErrInvalidCursor = errors.New("invalid pagination cursor")

	// ErrInvalidPriority is returned when priority is outside [-100, 100]
	ErrInvalidPriority = errors.New("priority must be between -100 and 100")

	// ErrInvalidTaskType is returned when task_type is empty or too long
	ErrInvalidTaskType = errors.New("task_type must be between 1 and 64 characters")

	// ErrInvalidIdempotencyKey is returned when the key length is outside 1..128
	ErrInvalidIdempotencyKey = errors.New("idempotency_key must be between 1 and 128 characters")
)
