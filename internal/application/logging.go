package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/roombot/internal/command"
	"github.com/example/roombot/internal/logging"
	"github.com/example/roombot/internal/policy"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = defaultLogger(base)
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	pairs = append(pairs, attrs...)
	return logger.With(pairs...)
}

// ErrorKind maps errors to a stable label for logs, audit and metrics.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}

	var (
		pErr *command.ParseError
		vErr *policy.Violation
		fErr *ValidationError
	)
	switch {
	case errors.As(err, &pErr):
		return "parse"
	case errors.As(err, &vErr):
		return "policy"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.As(err, &fErr):
		return "validation"
	}
	return "store_failure"
}
