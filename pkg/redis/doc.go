// Package redis wraps the go-redis client with a retrying Connect and
// a health-check probe. Redis backs the work-item queue and the
// per-task exclusion lock.
package redis
