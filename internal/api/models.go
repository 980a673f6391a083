package api

import (
	"time"

	"github.com/LoweKTH/MarketingAgentFactory/internal/domain"
)

// TaskResponse is the API view of a task. Internal row identity and owner
// are not exposed; callers address tasks by external id only.
type TaskResponse struct {
	TaskID           string    `json:"taskId"`
	ContentType      string    `json:"contentType"`
	BrandVoice       string    `json:"brandVoice"`
	Topic            string    `json:"topic"`
	Platform         string    `json:"platform,omitempty"`
	TargetAudience   string    `json:"targetAudience,omitempty"`
	KeyMessages      []string  `json:"keyMessages,omitempty"`
	Status           string    `json:"status"`
	GeneratedContent string    `json:"generatedContent,omitempty"`
	Metadata         string    `json:"metadata,omitempty"`
	ErrorMessage     string    `json:"errorMessage,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ToTaskResponse converts a domain task to its API view.
func ToTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		TaskID:           t.TaskID,
		ContentType:      t.ContentType,
		BrandVoice:       t.BrandVoice,
		Topic:            t.Topic,
		Platform:         t.Platform,
		TargetAudience:   t.TargetAudience,
		KeyMessages:      t.KeyMessages,
		Status:           string(t.Status),
		GeneratedContent: t.GeneratedContent,
		Metadata:         t.Metadata,
		ErrorMessage:     t.ErrorMessage,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

// TaskCreatedResponse is returned by the endpoints that accept work and hand
// back an external id.
type TaskCreatedResponse struct {
	TaskID string `json:"taskId"`
	Status string `json:"status"`
}

// TaskListResponse is one page of an owner's task history.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}
