// Package logger builds configured slog.Logger instances with optional
// context attribute extraction, plus attribute helpers shared across the
// service.
package logger
