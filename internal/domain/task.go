package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// TaskStatus represents the lifecycle state of a content generation task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusCreated    TaskStatus = "created"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Role identifies the privilege level of a requester.
type Role string

// Possible requester roles
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Task represents a tracked unit of content generation work. The external
// TaskID is the only identifier exposed to callers; the internal ID is a
// surrogate key owned by the persistence layer.
type Task struct {
	ID               uuid.UUID  `json:"-"`
	TaskID           string     `json:"task_id"`
	ContentType      string     `json:"content_type"`
	BrandVoice       string     `json:"brand_voice"`
	Topic            string     `json:"topic"`
	Platform         string     `json:"platform,omitempty"`
	TargetAudience   string     `json:"target_audience,omitempty"`
	KeyMessages      []string   `json:"key_messages,omitempty"`
	Status           TaskStatus `json:"status"`
	GeneratedContent string     `json:"generated_content,omitempty"`
	Metadata         string     `json:"metadata,omitempty"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	OwnerID          uuid.UUID  `json:"owner_id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewTaskID generates a new external task identifier. The ULID body keeps
// ids lexically sortable by creation time while the 16 random characters
// make collisions negligible.
func NewTaskID() string {
	return "task-" + ulid.Make().String()
}

// NewTask creates a new Task in the created state with a fresh external id.
// Returns an error if validation fails.
func NewTask(ownerID uuid.UUID, contentType, brandVoice, topic, platform, targetAudience string, keyMessages []string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:             uuid.New(),
		TaskID:         NewTaskID(),
		ContentType:    contentType,
		BrandVoice:     brandVoice,
		Topic:          topic,
		Platform:       platform,
		TargetAudience: targetAudience,
		KeyMessages:    keyMessages,
		Status:         TaskStatusCreated,
		OwnerID:        ownerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.TaskID == "" {
		return ErrEmptyExternalID
	}

	if t.OwnerID == uuid.Nil {
		return ErrEmptyOwnerID
	}

	if t.ContentType == "" || t.BrandVoice == "" || t.Topic == "" {
		return ErrMissingTaskFields
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	return nil
}

// IsTerminal reports whether the status admits no further transitions.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether a task in status s may move to next.
// Transitions are monotonic: terminal states admit no exits, and a task
// cannot move backwards in the lifecycle.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	if s.IsTerminal() {
		return false
	}

	switch s {
	case TaskStatusCreated:
		return next == TaskStatusProcessing || next == TaskStatusFailed || next == TaskStatusCancelled
	case TaskStatusProcessing:
		return next == TaskStatusCompleted || next == TaskStatusFailed || next == TaskStatusCancelled
	default:
		return false
	}
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusCreated, TaskStatusProcessing, TaskStatusCompleted,
		TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}
