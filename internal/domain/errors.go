package domain

import "errors"

// Common validation errors for Task
var (
	ErrEmptyTaskID       = errors.New("task ID cannot be empty")
	ErrEmptyExternalID   = errors.New("external task ID cannot be empty")
	ErrEmptyOwnerID      = errors.New("task owner ID cannot be empty")
	ErrMissingTaskFields = errors.New("content type, brand voice and topic are required")
	ErrInvalidTaskStatus = errors.New("invalid task status")
)
