// Package queue implements the Redis-backed work-item channel between
// producers (submission service, scheduler) and the worker pool, plus
// the per-task exclusion lock used by the worker claim protocol.
//
// Entries are JSON objects {"task_id": ..., "priority": ...} pushed to
// a named list with LPUSH and consumed with BRPOP. The queue carries no
// correctness guarantees of its own: the task store is authoritative
// and the scheduler recovers lost entries by republishing due tasks.
package queue
