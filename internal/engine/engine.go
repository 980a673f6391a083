package engine

import "context"

// Generator is the network boundary to the external content generation
// engine. Implementations enforce their own request timeouts and perform no
// retries; retry policy belongs to the caller.
type Generator interface {
	// Generate submits a generation request and returns the engine's
	// response. Failures are one of the typed errors in this package.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// HealthCheck probes the engine's health endpoint with a short,
	// independent timeout. It has no side effects and is never consulted
	// by the generation path.
	HealthCheck(ctx context.Context) bool
}

// Request is the payload sent to the engine's generate endpoint. It is the
// caller's generation request plus the derived brand guidelines context.
type Request struct {
	ContentType       string   `json:"contentType"`
	BrandVoice        string   `json:"brandVoice"`
	Topic             string   `json:"topic"`
	Platform          string   `json:"platform,omitempty"`
	TargetAudience    string   `json:"targetAudience,omitempty"`
	KeyMessages       []string `json:"keyMessages,omitempty"`
	BrandGuidelines   string   `json:"brandGuidelines,omitempty"`
	AdditionalContext string   `json:"additionalContext,omitempty"`
	LengthPreference  string   `json:"lengthPreference,omitempty"`
	IncludeHashtags   *bool    `json:"includeHashtags,omitempty"`
	CallToAction      string   `json:"callToAction,omitempty"`
}

// Response is the engine's answer as it arrives on the wire. The shape is
// untrusted: every optional field is a pointer, and optimizationPerformed
// and modelUsed may appear both at the top level and inside workflowInfo,
// with either copy missing. SummarizeWorkflow reconciles them.
type Response struct {
	Content               string         `json:"content"`
	ContentType           string         `json:"contentType,omitempty"`
	Platform              string         `json:"platform,omitempty"`
	BrandVoice            string         `json:"brandVoice,omitempty"`
	TargetAudience        string         `json:"targetAudience,omitempty"`
	GenerationTimeSeconds float64        `json:"generationTimeSeconds"`
	WorkflowInfo          *WorkflowInfo  `json:"workflowInfo,omitempty"`
	Evaluation            *Evaluation    `json:"evaluation,omitempty"`
	Metadata              map[string]any `json:"metadata,omitempty"`
	OptimizationPerformed *bool          `json:"optimizationPerformed,omitempty"`
	Suggestions           []string       `json:"suggestions,omitempty"`
	EstimatedMetrics      map[string]any `json:"estimatedMetrics,omitempty"`
	ModelUsed             *string        `json:"modelUsed,omitempty"`
}

// WorkflowInfo describes which generation, evaluation and optimization
// steps the engine actually ran. All fields are optional on the wire.
type WorkflowInfo struct {
	InitialGenerationCompleted *bool    `json:"initialGenerationCompleted,omitempty"`
	EvaluationPerformed        *bool    `json:"evaluationPerformed,omitempty"`
	EvaluationScore            *float64 `json:"evaluationScore,omitempty"`
	OptimizationPerformed      *bool    `json:"optimizationPerformed,omitempty"`
	OptimizationType           *string  `json:"optimizationType,omitempty"`
	OptimizationIterations     *int     `json:"optimizationIterations,omitempty"`
	ModelUsed                  *string  `json:"modelUsed,omitempty"`
}

// Evaluation carries the evaluator's assessment of the generated content.
type Evaluation struct {
	Score            *float64 `json:"score,omitempty"`
	Strengths        []string `json:"strengths,omitempty"`
	Improvements     []string `json:"improvements,omitempty"`
	NeedsImprovement *bool    `json:"needsImprovement,omitempty"`
	RawEvaluation    *string  `json:"rawEvaluation,omitempty"`
}
