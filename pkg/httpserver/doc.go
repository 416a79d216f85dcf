// Package httpserver wraps http.Server with graceful shutdown tied to
// context cancellation and OS signals, configured through functional
// options or environment variables.
package httpserver
