package task_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskflow/core/task"
)

// tolerance absorbs the wall-clock read inside NextRun.
const tolerance = 100 * time.Millisecond

func delayOf(t *testing.T, p task.RetryPolicy, attempts int) time.Duration {
	t.Helper()
	return time.Until(p.NextRun(attempts))
}

func TestRetryPolicyNextRun(t *testing.T) {
	t.Parallel()

	t.Run("doubles per attempt without jitter", func(t *testing.T) {
		t.Parallel()

		p := task.RetryPolicy{Base: time.Second, Cap: time.Minute}
		expected := []time.Duration{
			time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
			16 * time.Second, 32 * time.Second,
		}
		for i, want := range expected {
			got := delayOf(t, p, i+1)
			assert.InDelta(t, want, got, float64(tolerance), "attempt %d", i+1)
		}
	})

	t.Run("caps the exponential term", func(t *testing.T) {
		t.Parallel()

		p := task.RetryPolicy{Base: time.Second, Cap: time.Minute}
		for _, attempts := range []int{7, 10, 30} {
			got := delayOf(t, p, attempts)
			assert.InDelta(t, time.Minute, got, float64(tolerance), "attempt %d", attempts)
		}
	})

	t.Run("jitter stays within its bound", func(t *testing.T) {
		t.Parallel()

		p := task.RetryPolicy{Base: time.Second, Cap: time.Minute, Jitter: 250 * time.Millisecond}
		for i := 0; i < 50; i++ {
			got := delayOf(t, p, 1)
			assert.GreaterOrEqual(t, got, time.Second-tolerance)
			assert.LessOrEqual(t, got, time.Second+250*time.Millisecond+tolerance)
		}
	})

	t.Run("clamps attempts below one", func(t *testing.T) {
		t.Parallel()

		p := task.RetryPolicy{Base: time.Second, Cap: time.Minute}
		assert.InDelta(t, delayOf(t, p, 1), delayOf(t, p, 0), float64(tolerance))
		assert.InDelta(t, delayOf(t, p, 1), delayOf(t, p, -3), float64(tolerance))
	})

	t.Run("returns UTC in the future", func(t *testing.T) {
		t.Parallel()

		p := task.DefaultRetryPolicy()
		next := p.NextRun(1)
		require.Equal(t, time.UTC, next.Location())
		assert.True(t, next.After(time.Now().UTC()))
	})
}
