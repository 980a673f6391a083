package service

import (
	"time"

	"github.com/LoweKTH/MarketingAgentFactory/internal/engine"
)

// GenerationRequest is a caller's content generation request. It is
// transient: owned solely by the single workflow execution that received it.
type GenerationRequest struct {
	ContentType       string   `json:"contentType"       validate:"required,max=50"`
	BrandVoice        string   `json:"brandVoice"        validate:"required,max=50"`
	Topic             string   `json:"topic"             validate:"required,max=500"`
	Platform          string   `json:"platform"          validate:"max=50"`
	TargetAudience    string   `json:"targetAudience"    validate:"max=200"`
	KeyMessages       []string `json:"keyMessages"       validate:"max=10,dive,max=100"`
	LengthPreference  string   `json:"lengthPreference"  validate:"max=20"`
	IncludeHashtags   *bool    `json:"includeHashtags"`
	CallToAction      string   `json:"callToAction"      validate:"max=200"`
	AdditionalContext string   `json:"additionalContext" validate:"max=500"`
}

// SaveContentRequest persists previously-previewed content as a completed
// task, so callers can preview before committing anything to history.
type SaveContentRequest struct {
	Content               string   `json:"content"          validate:"required"`
	ContentType           string   `json:"contentType"      validate:"required,max=50"`
	BrandVoice            string   `json:"brandVoice"       validate:"required,max=50"`
	Topic                 string   `json:"topic"            validate:"required,max=500"`
	Platform              string   `json:"platform"         validate:"max=50"`
	TargetAudience        string   `json:"targetAudience"   validate:"max=200"`
	KeyMessages           []string `json:"keyMessages"      validate:"max=10,dive,max=100"`
	GenerationTimeSeconds float64  `json:"generationTimeSeconds"`
	ModelUsed             string   `json:"modelUsed"`
}

// ContentResponse is the single canonical result shape returned to callers
// regardless of which optional engine fields were populated. TaskID is nil
// only in preview mode.
type ContentResponse struct {
	TaskID                *string                `json:"taskId"`
	Content               string                 `json:"content,omitempty"`
	ContentType           string                 `json:"contentType"`
	Platform              string                 `json:"platform,omitempty"`
	BrandVoice            string                 `json:"brandVoice,omitempty"`
	TargetAudience        string                 `json:"targetAudience,omitempty"`
	GenerationTimeSeconds float64                `json:"generationTimeSeconds"`
	WorkflowInfo          engine.WorkflowSummary `json:"workflowInfo"`
	Suggestions           []string               `json:"suggestions,omitempty"`
	EstimatedMetrics      map[string]any         `json:"estimatedMetrics,omitempty"`
	GeneratedAt           time.Time              `json:"generatedAt"`
	FeedbackEnabled       bool                   `json:"feedbackEnabled"`
}
