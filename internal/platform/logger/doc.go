// Package logger provides structured logging functionality for the application.
//
// It builds log/slog JSON loggers whose level can be changed at runtime and
// carries request-scoped loggers through context.Context.
package logger
