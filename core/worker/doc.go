// Package worker implements the claim/execute loop: it pops task ids
// from the shared queue, takes the per-task exclusion lock, re-reads
// the durable record, transitions it QUEUED -> RUNNING, runs the
// registered handler under a wall-clock timeout, and commits the
// outcome (COMPLETED, FAILED, or QUEUED with a backoff next_run_at).
//
// Execution is at-least-once. Duplicate deliveries from the scheduler
// are filtered by the claim protocol, and a cancel that lands while a
// handler is running wins over the handler's outcome.
package worker
