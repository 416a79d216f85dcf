package task

import (
	"math"
	"math/rand"
	"time"
)

// RetryPolicy computes the earliest time the next attempt may run,
// using capped exponential backoff with additive jitter:
//
//	delay = min(cap, base * 2^(attempts-1)) + uniform(0, jitter)
//
// Jitter is non-negative, so the returned instant is always in the
// future relative to now. Zero jitter is permitted.
type RetryPolicy struct {
	Base   time.Duration
	Cap    time.Duration
	Jitter time.Duration
}

// DefaultRetryPolicy mirrors the configuration defaults (1s base, 60s
// cap, 250ms jitter).
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Base:   time.Second,
		Cap:    time.Minute,
		Jitter: 250 * time.Millisecond,
	}
}

// NextRun returns now + delay for the given failed-attempt count
// (after increment, so attempts >= 1). The result is in UTC.
func (p RetryPolicy) NextRun(attempts int) time.Time {
	if attempts < 1 {
		attempts = 1
	}

	delay := float64(p.Base) * math.Pow(2, float64(attempts-1))
	if delay > float64(p.Cap) {
		delay = float64(p.Cap)
	}
	if p.Jitter > 0 {
		delay += rand.Float64() * float64(p.Jitter)
	}

	return time.Now().UTC().Add(time.Duration(delay))
}
