// Package httpserver wraps http.Server with graceful shutdown, signal
// handling, and environment-driven configuration.
package httpserver
