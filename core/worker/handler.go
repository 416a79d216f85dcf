package worker

import (
	"context"
	"encoding/json"
	"fmt"
)

type (
	// Handler executes one attempt of a task: it maps an opaque payload
	// to an opaque result document. The payload is validated here, not
	// by the orchestrator.
	Handler interface {
		Name() string
		Handle(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
	}

	// HandlerFunc is the typed form wrapped by NewHandler.
	HandlerFunc[T any] func(ctx context.Context, payload T) (any, error)
)

// NewHandler adapts a typed handler function to the Handler interface,
// taking care of payload decoding and result encoding. A payload that
// does not decode into T fails the attempt.
func NewHandler[T any](name string, fn HandlerFunc[T]) Handler {
	return &typedHandler[T]{name: name, fn: fn}
}

type typedHandler[T any] struct {
	name string
	fn   HandlerFunc[T]
}

func (h *typedHandler[T]) Name() string {
	return h.name
}

func (h *typedHandler[T]) Handle(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return nil, fmt.Errorf("invalid payload for %s: %w", h.name, err)
	}

	res, err := h.fn(ctx, t)
	if err != nil {
		return nil, err
	}

	out, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result of %s: %w", h.name, err)
	}
	return out, nil
}
