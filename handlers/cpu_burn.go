package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/taskflow/core/worker"
)

type cpuBurnPayload struct {
	Milliseconds *int `json:"milliseconds"`
}

type cpuBurnResult struct {
	BurnedMs int   `json:"burned_ms"`
	Checksum int64 `json:"checksum"`
}

// NewCPUBurn returns the "cpu_burn" handler: it spins the CPU for the
// requested number of milliseconds (clamped to [1, 500]) and reports a
// checksum of the work done.
func NewCPUBurn() worker.Handler {
	return worker.NewHandler("cpu_burn", func(ctx context.Context, p cpuBurnPayload) (any, error) {
		if p.Milliseconds == nil {
			return nil, errors.New("payload.milliseconds must be an integer")
		}

		ms := *p.Milliseconds
		if ms < 1 {
			ms = 1
		}
		if ms > 500 {
			ms = 500
		}

		var x int64
		deadline := time.Now().Add(time.Duration(ms) * time.Millisecond)
		for time.Now().Before(deadline) {
			x = (x*31 + 7) % 1_000_000_007
		}

		return cpuBurnResult{BurnedMs: ms, Checksum: x}, nil
	})
}
