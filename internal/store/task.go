package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/LoweKTH/MarketingAgentFactory/internal/domain"
)

// StatusUpdate carries the fields written alongside a status transition.
// GeneratedContent and Metadata are only meaningful when moving to the
// completed state; ErrorMessage when moving to failed or cancelled.
type StatusUpdate struct {
	Status           domain.TaskStatus
	GeneratedContent string
	Metadata         string
	ErrorMessage     string
}

// TaskStore defines the persistence operations for content generation tasks.
// Writers serialize per external id through Transition's compare-and-set
// semantics; no two writers can move the same task concurrently.
type TaskStore interface {
	// Create persists a new task. Returns ErrDuplicate if the external id
	// already exists and ErrInvalidEntity if the task fails validation.
	Create(ctx context.Context, task *domain.Task) error

	// GetByTaskID retrieves a task by its external id.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByTaskID(ctx context.Context, taskID string) (*domain.Task, error)

	// ListByOwner returns the owner's tasks most-recent-first. Page numbers
	// are zero-based; a page beyond the available data yields an empty
	// slice, never an error.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, page, size int) ([]*domain.Task, error)

	// Transition atomically moves a task to update.Status if and only if
	// its current status is one of from. Returns ErrTaskNotFound if the
	// task does not exist and ErrInvalidTransition if the current status
	// is not in from.
	Transition(ctx context.Context, taskID string, from []domain.TaskStatus, update StatusUpdate) error

	// Delete removes a task by its external id.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, taskID string) error
}
