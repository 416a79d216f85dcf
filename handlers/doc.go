// Package handlers ships the built-in task handlers: cpu_burn (spin
// the CPU for a bounded duration), data_transform (project and rename
// fields of an object), and http_fetch (GET a public URL). They double
// as reference implementations for writing custom handlers with
// worker.NewHandler.
package handlers
