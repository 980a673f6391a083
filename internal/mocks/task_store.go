package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LoweKTH/MarketingAgentFactory/internal/domain"
	"github.com/LoweKTH/MarketingAgentFactory/internal/store"
)

// MockTaskStore implements store.TaskStore for testing. The default
// implementation is a thread-safe in-memory map with the same
// compare-and-set transition semantics as the real store, so concurrency
// tests exercise the actual race behavior.
type MockTaskStore struct {
	// Function fields for customizable behavior
	CreateFn      func(ctx context.Context, task *domain.Task) error
	GetByTaskIDFn func(ctx context.Context, taskID string) (*domain.Task, error)
	ListByOwnerFn func(ctx context.Context, ownerID uuid.UUID, page, size int) ([]*domain.Task, error)
	TransitionFn  func(ctx context.Context, taskID string, from []domain.TaskStatus, update store.StatusUpdate) error
	DeleteFn      func(ctx context.Context, taskID string) error

	// Errors for the default implementation
	CreateError     error
	TransitionError error

	mu    sync.Mutex
	tasks map[string]*domain.Task
}

// NewMockTaskStore creates a new mock store with initialized defaults
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		tasks: make(map[string]*domain.Task),
	}
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	if m.CreateError != nil {
		return m.CreateError
	}

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tasks[task.TaskID]; exists {
		return fmt.Errorf("%w: task id %s", store.ErrDuplicate, task.TaskID)
	}

	copied := *task
	m.tasks[task.TaskID] = &copied
	return nil
}

// GetByTaskID implements the TaskStore interface
func (m *MockTaskStore) GetByTaskID(ctx context.Context, taskID string) (*domain.Task, error) {
	if m.GetByTaskIDFn != nil {
		return m.GetByTaskIDFn(ctx, taskID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[taskID]
	if !ok {
		return nil, store.ErrTaskNotFound
	}

	copied := *task
	return &copied, nil
}

// ListByOwner implements the TaskStore interface
func (m *MockTaskStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, page, size int) ([]*domain.Task, error) {
	if m.ListByOwnerFn != nil {
		return m.ListByOwnerFn(ctx, ownerID, page, size)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	owned := []*domain.Task{}
	for _, task := range m.tasks {
		if task.OwnerID == ownerID {
			copied := *task
			owned = append(owned, &copied)
		}
	}

	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})

	start := page * size
	if start >= len(owned) {
		return []*domain.Task{}, nil
	}
	end := start + size
	if end > len(owned) {
		end = len(owned)
	}
	return owned[start:end], nil
}

// Transition implements the TaskStore interface with the same
// compare-and-set guarantee as the PostgreSQL store.
func (m *MockTaskStore) Transition(ctx context.Context, taskID string, from []domain.TaskStatus, update store.StatusUpdate) error {
	if m.TransitionFn != nil {
		return m.TransitionFn(ctx, taskID, from, update)
	}

	if m.TransitionError != nil {
		return m.TransitionError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[taskID]
	if !ok {
		return store.ErrTaskNotFound
	}

	matched := false
	for _, status := range from {
		if task.Status == status {
			matched = true
			break
		}
	}
	if !matched {
		return fmt.Errorf("%w: task is %s", store.ErrInvalidTransition, task.Status)
	}

	task.Status = update.Status
	if update.GeneratedContent != "" {
		task.GeneratedContent = update.GeneratedContent
	}
	if update.Metadata != "" {
		task.Metadata = update.Metadata
	}
	if update.ErrorMessage != "" {
		task.ErrorMessage = update.ErrorMessage
	}
	task.UpdatedAt = time.Now().UTC()
	return nil
}

// Delete implements the TaskStore interface
func (m *MockTaskStore) Delete(ctx context.Context, taskID string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, taskID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[taskID]; !ok {
		return store.ErrTaskNotFound
	}

	delete(m.tasks, taskID)
	return nil
}
