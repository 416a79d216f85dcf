package worker

import "errors"

// Common errors
var (
	// ErrStoreNil is returned when a nil store is provided
	ErrStoreNil = errors.New("store cannot be nil")

	// ErrQueueNil is returned when a nil queue is provided
	ErrQueueNil = errors.New("queue cannot be nil")

	// ErrLockerNil is returned when a nil locker is provided
	ErrLockerNil = errors.New("locker cannot be nil")

	// ErrRegistryNil is returned when a nil registry is provided
	ErrRegistryNil = errors.New("registry cannot be nil")

	// ErrNoHandlers is returned when the worker starts with an empty registry
	ErrNoHandlers = errors.New("no task handlers registered")

	// ErrHandlerNil is returned when registering a nil handler
	ErrHandlerNil = errors.New("handler cannot be nil")

	// ErrHandlerAlreadyRegistered is returned on duplicate registration of a task type
	ErrHandlerAlreadyRegistered = errors.New("handler already registered for task type")

	// ErrUnknownTaskType is returned when no handler is registered for a task type
	ErrUnknownTaskType = errors.New("unknown task type")

	// ErrAlreadyStarted is returned when Start is called twice
	ErrAlreadyStarted = errors.New("worker already started")

	// ErrNotStarted is returned when Stop is called before Start
	ErrNotStarted = errors.New("worker not started")
)
