// Package logger provides structured logging functionality for the
// application using Go's standard library log/slog package. It configures a
// JSON logger from the server settings and carries request-scoped loggers
// through context.
package logger
