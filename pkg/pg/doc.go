// Package pg provides the PostgreSQL plumbing: a retrying pgxpool
// Connect and goose migrations bridged over the pool. Postgres is the
// durable store for task records and their audit events.
package pg
