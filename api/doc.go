// Package api exposes the orchestrator over HTTP: task submission,
// lookup, cursor-paginated listing, cancellation, health, and
// Prometheus metrics. Every /v1 endpoint requires the X-API-Key
// header and bodies are capped at MAX_REQUEST_BYTES.
package api
