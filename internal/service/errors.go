package service

import "errors"

// Common service errors mapped to caller-visible failures at the API layer.
var (
	// ErrValidation is returned when a generation or save request fails
	// validation. No task exists when this is returned.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden is returned when a requester who is neither the task's
	// owner nor an admin attempts to modify it.
	ErrForbidden = errors.New("not allowed to modify this task")

	// ErrTaskNotCancellable is returned when cancellation is requested for
	// a task already in a terminal state.
	ErrTaskNotCancellable = errors.New("task cannot be cancelled")
)
