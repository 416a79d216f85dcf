// Package postgres persists task records and their append-only audit
// events. Uniqueness of non-null (task_type, idempotency_key) pairs is
// enforced by a partial unique index, surfaced to callers as
// task.ErrDuplicateIdempotencyKey.
package postgres
