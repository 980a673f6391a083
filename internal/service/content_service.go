package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/LoweKTH/MarketingAgentFactory/internal/config"
	"github.com/LoweKTH/MarketingAgentFactory/internal/domain"
	"github.com/LoweKTH/MarketingAgentFactory/internal/engine"
	"github.com/LoweKTH/MarketingAgentFactory/internal/platform/logger"
	"github.com/LoweKTH/MarketingAgentFactory/internal/platform/metrics"
	"github.com/LoweKTH/MarketingAgentFactory/internal/store"
	"github.com/LoweKTH/MarketingAgentFactory/internal/task"
)

// defaultBrandGuidelines is the brand-guidance context merged into every
// engine request until per-tenant guidelines are stored.
const defaultBrandGuidelines = "Voice Guidelines: Professional yet approachable tone " +
	"Messaging: Focus on value proposition and customer benefits " +
	"Platform Guidelines: Adapt content length and style to platform requirements"

// defaultPageSize bounds history reads when the caller passes no size.
const defaultPageSize = 20

// maxRetryDelay caps the exponential backoff between engine retries.
const maxRetryDelay = 30 * time.Second

// ContentService orchestrates the content generation workflow.
type ContentService interface {
	// Generate runs a generation synchronously. For a well-formed request
	// it never fails on an engine-side error: the task is driven to failed
	// and a soft-failure response is returned instead.
	Generate(ctx context.Context, req *GenerationRequest, ownerID uuid.UUID) (*ContentResponse, error)

	// GenerateAsync creates the task and returns its external id
	// immediately; generation continues on a background worker.
	GenerateAsync(ctx context.Context, req *GenerationRequest, ownerID uuid.UUID) (string, error)

	// Preview runs the full generation pipeline without persisting
	// anything. The returned response has a nil task id.
	Preview(ctx context.Context, req *GenerationRequest, ownerID uuid.UUID) (*ContentResponse, error)

	// SaveContent persists previously-previewed content as an
	// already-completed task and returns its external id.
	SaveContent(ctx context.Context, req *SaveContentRequest, ownerID uuid.UUID) (string, error)

	// GetTask retrieves a task by its external id.
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)

	// ListTasks returns one page of the owner's history, most-recent-first.
	ListTasks(ctx context.Context, ownerID uuid.UUID, page, size int) ([]*domain.Task, error)

	// Cancel moves a non-terminal task to cancelled. The requester must be
	// the owner or an admin. An in-flight engine call is not interrupted;
	// its late result loses against the cancelled state.
	Cancel(ctx context.Context, taskID string, requesterID uuid.UUID, role domain.Role) error

	// Delete removes a task record. Operator action only.
	Delete(ctx context.Context, taskID string) error
}

// contentService is the default ContentService implementation.
type contentService struct {
	tasks     store.TaskStore
	generator engine.Generator
	runner    *task.Runner
	engineCfg config.EngineConfig
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewContentService creates the orchestrator. The runner may be nil when
// asynchronous generation is not needed (GenerateAsync then rejects).
func NewContentService(
	tasks store.TaskStore,
	generator engine.Generator,
	runner *task.Runner,
	engineCfg config.EngineConfig,
	log *slog.Logger,
) ContentService {
	if log == nil {
		log = slog.Default()
	}

	return &contentService{
		tasks:     tasks,
		generator: generator,
		runner:    runner,
		engineCfg: engineCfg,
		validate:  validator.New(),
		logger:    log.With(slog.String("component", "content_service")),
	}
}

func (s *contentService) Generate(ctx context.Context, req *GenerationRequest, ownerID uuid.UUID) (*ContentResponse, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	t, err := s.createTask(ctx, req, ownerID)
	if err != nil {
		return nil, err
	}

	log.Info("processing content generation request",
		slog.String("task_id", t.TaskID),
		slog.String("content_type", req.ContentType))

	resp, pipelineErr := s.executePipeline(ctx, t, req)
	if pipelineErr != nil {
		s.failTask(ctx, t.TaskID, pipelineErr)
		return s.failureResponse(t), nil
	}

	return resp, nil
}

func (s *contentService) GenerateAsync(ctx context.Context, req *GenerationRequest, ownerID uuid.UUID) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.validateStruct(req); err != nil {
		return "", err
	}

	if s.runner == nil {
		return "", task.ErrRunnerClosed
	}

	t, err := s.createTask(ctx, req, ownerID)
	if err != nil {
		return "", err
	}

	job := &generationJob{svc: s, task: t, req: req}
	if err := s.runner.Enqueue(job); err != nil {
		// The task already exists; drive it terminal so it is never
		// reported as pending work that will not happen.
		s.failTask(ctx, t.TaskID, fmt.Errorf("could not schedule generation: %w", err))
		return "", err
	}

	log.Info("queued async content generation", slog.String("task_id", t.TaskID))
	return t.TaskID, nil
}

func (s *contentService) Preview(ctx context.Context, req *GenerationRequest, ownerID uuid.UUID) (*ContentResponse, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	log.Info("generating content preview",
		slog.String("owner_id", ownerID.String()),
		slog.String("content_type", req.ContentType))

	engineResp, err := s.callEngine(ctx, buildEngineRequest(req))
	if err != nil {
		return nil, err
	}

	return buildContentResponse(nil, req, engineResp), nil
}

func (s *contentService) SaveContent(ctx context.Context, req *SaveContentRequest, ownerID uuid.UUID) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.validateStruct(req); err != nil {
		return "", err
	}

	t, err := domain.NewTask(ownerID, req.ContentType, req.BrandVoice, req.Topic,
		req.Platform, req.TargetAudience, req.KeyMessages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	// The content was already generated during preview, so the task is
	// born completed.
	t.Status = domain.TaskStatusCompleted
	t.GeneratedContent = req.Content
	t.Metadata = taskMetadata(req.ModelUsed, req.GenerationTimeSeconds)

	if err := s.tasks.Create(ctx, t); err != nil {
		return "", fmt.Errorf("failed to save content: %w", err)
	}
	metrics.TaskTransition(string(domain.TaskStatusCompleted))

	log.Info("previewed content saved", slog.String("task_id", t.TaskID))
	return t.TaskID, nil
}

func (s *contentService) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	return s.tasks.GetByTaskID(ctx, taskID)
}

func (s *contentService) ListTasks(ctx context.Context, ownerID uuid.UUID, page, size int) ([]*domain.Task, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	return s.tasks.ListByOwner(ctx, ownerID, page, size)
}

func (s *contentService) Cancel(ctx context.Context, taskID string, requesterID uuid.UUID, role domain.Role) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	t, err := s.tasks.GetByTaskID(ctx, taskID)
	if err != nil {
		return err
	}

	if t.OwnerID != requesterID && role != domain.RoleAdmin {
		log.Warn("cancel denied",
			slog.String("task_id", taskID),
			slog.String("requester_id", requesterID.String()))
		return ErrForbidden
	}

	if t.Status.IsTerminal() {
		return fmt.Errorf("%w: task is %s", ErrTaskNotCancellable, t.Status)
	}

	err = s.tasks.Transition(ctx, taskID,
		[]domain.TaskStatus{domain.TaskStatusCreated, domain.TaskStatusProcessing},
		store.StatusUpdate{
			Status:       domain.TaskStatusCancelled,
			ErrorMessage: "task cancelled by user",
		})
	if errors.Is(err, store.ErrInvalidTransition) {
		// Lost the race against a terminal transition.
		return fmt.Errorf("%w: task reached a terminal state concurrently", ErrTaskNotCancellable)
	}
	if err != nil {
		return err
	}

	metrics.TaskTransition(string(domain.TaskStatusCancelled))
	log.Info("task cancelled",
		slog.String("task_id", taskID),
		slog.String("requester_id", requesterID.String()))
	return nil
}

func (s *contentService) Delete(ctx context.Context, taskID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return err
	}

	log.Info("task deleted", slog.String("task_id", taskID))
	return nil
}

// createTask validates nothing; callers validate first. It persists a fresh
// task in the created state. Store failures here are hard errors: no task
// exists yet for a soft failure to reference.
func (s *contentService) createTask(ctx context.Context, req *GenerationRequest, ownerID uuid.UUID) (*domain.Task, error) {
	t, err := domain.NewTask(ownerID, req.ContentType, req.BrandVoice, req.Topic,
		req.Platform, req.TargetAudience, req.KeyMessages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	metrics.TaskTransition(string(domain.TaskStatusCreated))
	return t, nil
}

// executePipeline drives a created task through the engine call to the
// completed state. Any failure, including a panic anywhere in assembly or
// post-processing, is returned as an error so the caller can drive the task
// to failed; the task is never abandoned in processing.
func (s *contentService) executePipeline(ctx context.Context, t *domain.Task, req *GenerationRequest) (resp *ContentResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generation pipeline panic: %v", r)
		}
	}()

	log := logger.FromContextOrDefault(ctx, s.logger)

	engineReq := buildEngineRequest(req)

	// Bookkeeping writes survive caller disconnects; only the engine call
	// itself respects cancellation.
	writeCtx := context.WithoutCancel(ctx)

	if err := s.tasks.Transition(writeCtx, t.TaskID,
		[]domain.TaskStatus{domain.TaskStatusCreated},
		store.StatusUpdate{Status: domain.TaskStatusProcessing}); err != nil {
		return nil, fmt.Errorf("failed to mark task processing: %w", err)
	}
	metrics.TaskTransition(string(domain.TaskStatusProcessing))

	engineResp, err := s.callEngine(ctx, engineReq)
	if err != nil {
		return nil, err
	}

	summary := engine.SummarizeWorkflow(engineResp)

	err = s.tasks.Transition(writeCtx, t.TaskID,
		[]domain.TaskStatus{domain.TaskStatusProcessing},
		store.StatusUpdate{
			Status:           domain.TaskStatusCompleted,
			GeneratedContent: engineResp.Content,
			Metadata:         taskMetadata(summary.ModelUsed, engineResp.GenerationTimeSeconds),
		})
	if errors.Is(err, store.ErrInvalidTransition) {
		// The task was cancelled while the engine call was in flight. The
		// cancelled state wins; the late success is discarded.
		log.Info("discarding engine result for task no longer processing",
			slog.String("task_id", t.TaskID))
		return nil, fmt.Errorf("task was cancelled during generation")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark task completed: %w", err)
	}
	metrics.TaskTransition(string(domain.TaskStatusCompleted))

	log.Info("content generation completed", slog.String("task_id", t.TaskID))

	id := t.TaskID
	return buildContentResponse(&id, req, engineResp), nil
}

// failTask drives a task to failed with the cause recorded. If the task
// already reached a terminal state (e.g. cancelled concurrently), the
// existing state is kept.
func (s *contentService) failTask(ctx context.Context, taskID string, cause error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.tasks.Transition(context.WithoutCancel(ctx), taskID,
		[]domain.TaskStatus{domain.TaskStatusCreated, domain.TaskStatusProcessing},
		store.StatusUpdate{
			Status:       domain.TaskStatusFailed,
			ErrorMessage: cause.Error(),
		})
	if errors.Is(err, store.ErrInvalidTransition) {
		log.Info("task already terminal, keeping existing state",
			slog.String("task_id", taskID))
		return
	}
	if err != nil {
		log.Error("failed to mark task failed",
			slog.String("task_id", taskID),
			slog.String("error", err.Error()))
		return
	}

	metrics.TaskTransition(string(domain.TaskStatusFailed))
	log.Error("content generation failed",
		slog.String("task_id", taskID),
		slog.String("error", cause.Error()))
}

// callEngine invokes the generator, retrying transport and server-side
// failures with exponential backoff and jitter. Requests the engine rejected
// as malformed are never retried. Retries are disabled when MaxRetries is 0.
func (s *contentService) callEngine(ctx context.Context, req *engine.Request) (*engine.Response, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	maxRetries := s.engineCfg.MaxRetries
	baseDelay := s.engineCfg.RetryDelaySeconds
	if baseDelay < 1 {
		baseDelay = 2
	}

	for attempt := 0; ; attempt++ {
		resp, err := s.generator.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		if attempt >= maxRetries || !isRetryable(err) {
			return nil, err
		}

		// delay = baseDelay * 2^attempt * jitter in [0.5, 1.0), capped.
		backoff := float64(baseDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rand.Float64()*0.5) * float64(time.Second))
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}

		log.Warn("retrying engine call",
			slog.Int("attempt", attempt+1),
			slog.Int("max_retries", maxRetries),
			slog.Float64("delay_seconds", delay.Seconds()),
			slog.String("error", err.Error()))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", engine.ErrEngineUnavailable, ctx.Err())
		}
	}
}

// isRetryable reports whether an engine failure may resolve on retry.
func isRetryable(err error) bool {
	return errors.Is(err, engine.ErrEngineUnavailable) || errors.Is(err, engine.ErrEngineFault)
}

// validateStruct maps validator failures to ErrValidation.
func (s *contentService) validateStruct(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// buildEngineRequest assembles the engine request from the caller's request
// plus the derived brand-guidance context.
func buildEngineRequest(req *GenerationRequest) *engine.Request {
	return &engine.Request{
		ContentType:       req.ContentType,
		BrandVoice:        req.BrandVoice,
		Topic:             req.Topic,
		Platform:          req.Platform,
		TargetAudience:    req.TargetAudience,
		KeyMessages:       req.KeyMessages,
		BrandGuidelines:   defaultBrandGuidelines,
		AdditionalContext: req.AdditionalContext,
		LengthPreference:  req.LengthPreference,
		IncludeHashtags:   req.IncludeHashtags,
		CallToAction:      req.CallToAction,
	}
}

// buildContentResponse builds the canonical response for a successful
// generation. taskID is nil in preview mode.
func buildContentResponse(taskID *string, req *GenerationRequest, engineResp *engine.Response) *ContentResponse {
	return &ContentResponse{
		TaskID:                taskID,
		Content:               engineResp.Content,
		ContentType:           req.ContentType,
		Platform:              req.Platform,
		BrandVoice:            req.BrandVoice,
		TargetAudience:        req.TargetAudience,
		GenerationTimeSeconds: engineResp.GenerationTimeSeconds,
		WorkflowInfo:          engine.SummarizeWorkflow(engineResp),
		Suggestions:           engineResp.Suggestions,
		EstimatedMetrics:      engineResp.EstimatedMetrics,
		GeneratedAt:           time.Now().UTC(),
		FeedbackEnabled:       true,
	}
}

// failureResponse is the soft-failure shape returned when generation failed
// after the task was created: the caller gets the task id and a workflow
// summary reporting that initial generation did not complete.
func (s *contentService) failureResponse(t *domain.Task) *ContentResponse {
	id := t.TaskID
	return &ContentResponse{
		TaskID:      &id,
		ContentType: t.ContentType,
		WorkflowInfo: engine.WorkflowSummary{
			InitialGenerationCompleted: false,
			ModelUsed:                  engine.UnknownModel,
		},
		GeneratedAt: time.Now().UTC(),
	}
}

// taskMetadata renders the compact metadata summary stored on a completed
// task.
func taskMetadata(model string, generationTimeSeconds float64) string {
	meta, err := json.Marshal(struct {
		Model                 string  `json:"model"`
		GenerationTimeSeconds float64 `json:"generationTimeSeconds"`
	}{
		Model:                 model,
		GenerationTimeSeconds: generationTimeSeconds,
	})
	if err != nil {
		return ""
	}
	return string(meta)
}
