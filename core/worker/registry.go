package worker

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps task types to handlers. It is populated explicitly at
// process start; there is no dynamic registration while the worker
// runs. Submission does not consult the registry, so a task may be
// enqueued before its handler ships — it fails and retries until the
// type is registered.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler under its Name.
func (r *Registry) Register(h Handler) error {
	if h == nil {
		return ErrHandlerNil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[h.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrHandlerAlreadyRegistered, h.Name())
	}
	r.handlers[h.Name()] = h
	return nil
}

// MustRegister registers handlers and panics on conflict. Intended for
// process start wiring.
func (r *Registry) MustRegister(handlers ...Handler) {
	for _, h := range handlers {
		if err := r.Register(h); err != nil {
			panic(err)
		}
	}
}

// Get returns the handler for the task type or ErrUnknownTaskType.
func (r *Registry) Get(taskType string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[taskType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskType, taskType)
	}
	return h, nil
}

// TaskTypes returns the registered task types in sorted order.
func (r *Registry) TaskTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
