package api

import (
	"errors"
	"net/http"

	"github.com/LoweKTH/MarketingAgentFactory/internal/engine"
	"github.com/LoweKTH/MarketingAgentFactory/internal/service"
	"github.com/LoweKTH/MarketingAgentFactory/internal/store"
	"github.com/LoweKTH/MarketingAgentFactory/internal/task"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authorization errors
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrTaskNotCancellable),
		errors.Is(err, store.ErrInvalidTransition),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, engine.ErrEngineRejected):
		return http.StatusBadRequest

	// Upstream engine failures
	case errors.Is(err, engine.ErrEngineUnavailable),
		errors.Is(err, engine.ErrEngineFault),
		errors.Is(err, engine.ErrInvalidResponse):
		return http.StatusBadGateway

	// Saturation
	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrRunnerClosed):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrForbidden):
		return "You do not have permission to access this task"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, service.ErrTaskNotCancellable),
		errors.Is(err, store.ErrInvalidTransition):
		return "Task has already finished and cannot be cancelled"

	case errors.Is(err, store.ErrDuplicate):
		return "Task already exists"

	case errors.Is(err, service.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	case errors.Is(err, engine.ErrEngineRejected):
		return "Generation engine rejected the request"

	case errors.Is(err, engine.ErrEngineUnavailable),
		errors.Is(err, engine.ErrEngineFault),
		errors.Is(err, engine.ErrInvalidResponse):
		return "Generation engine is unavailable"

	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrRunnerClosed):
		return "Service is at capacity, try again later"

	default:
		return "An unexpected error occurred"
	}
}
