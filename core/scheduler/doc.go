// Package scheduler runs the periodic republish loop: due tasks are
// pushed back onto the queue and stale RUNNING tasks left by crashed
// workers are requeued. Duplicate deliveries are expected and filtered
// by the worker claim protocol.
package scheduler
