package task

import (
	"fmt"
	"time"
)

type transition struct {
	from Status
	to   Status
}

// allowed is the closed set of legal status transitions. Terminal
// states have no outgoing edges.
var allowed = map[transition]struct{}{
	{StatusPending, StatusQueued}:    {},
	{StatusPending, StatusCanceled}:  {},
	{StatusQueued, StatusRunning}:    {},
	{StatusQueued, StatusCanceled}:   {},
	{StatusRunning, StatusCompleted}: {},
	{StatusRunning, StatusFailed}:    {},
	{StatusRunning, StatusQueued}:    {}, // retry
	{StatusRunning, StatusCanceled}:  {},
}

// CanTransition validates a proposed (from, to) pair against the
// allowed-transition set.
func CanTransition(from, to Status) bool {
	_, ok := allowed[transition{from, to}]
	return ok
}

// Transition moves the task to the given status, updating UpdatedAt.
// It returns ErrInvalidTransition if the state machine forbids the
// move; the task is left untouched in that case.
func (t *Task) Transition(to Status, now time.Time) error {
	if !CanTransition(t.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, to)
	}
	t.Status = to
	t.UpdatedAt = now.UTC()
	return nil
}
