package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LoweKTH/MarketingAgentFactory/internal/config"
	"github.com/LoweKTH/MarketingAgentFactory/internal/domain"
	"github.com/LoweKTH/MarketingAgentFactory/internal/engine"
	"github.com/LoweKTH/MarketingAgentFactory/internal/mocks"
	"github.com/LoweKTH/MarketingAgentFactory/internal/service"
	"github.com/LoweKTH/MarketingAgentFactory/internal/store"
	"github.com/LoweKTH/MarketingAgentFactory/internal/task"
)

func validRequest() *service.GenerationRequest {
	return &service.GenerationRequest{
		ContentType:    "social_post",
		BrandVoice:     "professional",
		Topic:          "Product launch",
		Platform:       "linkedin",
		TargetAudience: "B2B buyers",
		KeyMessages:    []string{"value", "trust"},
	}
}

func engineResponse() *engine.Response {
	model := "test-model"
	evaluated := true
	score := 8.5
	return &engine.Response{
		Content:               "generated content",
		GenerationTimeSeconds: 2.5,
		ModelUsed:             &model,
		WorkflowInfo: &engine.WorkflowInfo{
			EvaluationPerformed: &evaluated,
			EvaluationScore:     &score,
		},
		Suggestions: []string{"post in the morning"},
	}
}

func newService(tasks store.TaskStore, gen engine.Generator, runner *task.Runner) service.ContentService {
	return service.NewContentService(tasks, gen, runner, config.EngineConfig{
		URL:            "http://localhost:5000",
		TimeoutSeconds: 5,
	}, slog.Default())
}

func TestGenerate_Success(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	generator := mocks.NewMockGenerator()
	generator.Response = engineResponse()
	svc := newService(taskStore, generator, nil)

	ownerID := uuid.New()
	resp, err := svc.Generate(context.Background(), validRequest(), ownerID)
	require.NoError(t, err)

	require.NotNil(t, resp.TaskID)
	assert.Equal(t, "generated content", resp.Content)
	assert.Equal(t, "social_post", resp.ContentType)
	assert.Equal(t, 2.5, resp.GenerationTimeSeconds)
	assert.True(t, resp.FeedbackEnabled)
	assert.True(t, resp.WorkflowInfo.InitialGenerationCompleted)
	assert.True(t, resp.WorkflowInfo.EvaluationPerformed)
	assert.Equal(t, "test-model", resp.WorkflowInfo.ModelUsed)

	persisted, err := taskStore.GetByTaskID(context.Background(), *resp.TaskID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, persisted.Status)
	assert.Equal(t, "generated content", persisted.GeneratedContent)
	assert.Equal(t, ownerID, persisted.OwnerID)

	var meta struct {
		Model                 string  `json:"model"`
		GenerationTimeSeconds float64 `json:"generationTimeSeconds"`
	}
	require.NoError(t, json.Unmarshal([]byte(persisted.Metadata), &meta))
	assert.Equal(t, "test-model", meta.Model)
	assert.Equal(t, 2.5, meta.GenerationTimeSeconds)
}

func TestGenerate_PassesBrandGuidelines(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	generator := mocks.NewMockGenerator()
	svc := newService(taskStore, generator, nil)

	_, err := svc.Generate(context.Background(), validRequest(), uuid.New())
	require.NoError(t, err)

	reqs := generator.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].BrandGuidelines, "Voice Guidelines")
	assert.Equal(t, "social_post", reqs[0].ContentType)
}

func TestGenerate_ValidationFailureCreatesNoTask(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	created := false
	taskStore.CreateFn = func(ctx context.Context, task *domain.Task) error {
		created = true
		return nil
	}
	svc := newService(taskStore, mocks.NewMockGenerator(), nil)

	req := validRequest()
	req.Topic = ""

	_, err := svc.Generate(context.Background(), req, uuid.New())
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.False(t, created, "no task may be created for an invalid request")
}

func TestGenerate_EngineFailureIsSoft(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	generator := mocks.NewMockGenerator()
	generator.Err = fmt.Errorf("%w: status 503", engine.ErrEngineFault)
	svc := newService(taskStore, generator, nil)

	resp, err := svc.Generate(context.Background(), validRequest(), uuid.New())
	require.NoError(t, err, "engine failure after task creation is a soft failure")

	require.NotNil(t, resp.TaskID)
	assert.Empty(t, resp.Content)
	assert.False(t, resp.WorkflowInfo.InitialGenerationCompleted)
	assert.Equal(t, engine.UnknownModel, resp.WorkflowInfo.ModelUsed)

	persisted, err := taskStore.GetByTaskID(context.Background(), *resp.TaskID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusFailed, persisted.Status)
	assert.NotEmpty(t, persisted.ErrorMessage)
}

func TestGenerate_StoreFailureIsHard(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	taskStore.CreateError = errors.New("connection refused")
	svc := newService(taskStore, mocks.NewMockGenerator(), nil)

	_, err := svc.Generate(context.Background(), validRequest(), uuid.New())
	assert.Error(t, err)
}

func TestGenerate_PanicInPipelineFailsTask(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	generator := mocks.NewMockGenerator()
	generator.GenerateFn = func(ctx context.Context, req *engine.Request) (*engine.Response, error) {
		panic("engine client bug")
	}
	svc := newService(taskStore, generator, nil)

	resp, err := svc.Generate(context.Background(), validRequest(), uuid.New())
	require.NoError(t, err)

	require.NotNil(t, resp.TaskID)
	persisted, err := taskStore.GetByTaskID(context.Background(), *resp.TaskID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusFailed, persisted.Status)
	assert.Contains(t, persisted.ErrorMessage, "panic")
}

func TestGenerate_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	generator := mocks.NewMockGenerator()

	attempts := 0
	generator.GenerateFn = func(ctx context.Context, req *engine.Request) (*engine.Response, error) {
		attempts++
		if attempts == 1 {
			return nil, fmt.Errorf("%w: connection refused", engine.ErrEngineUnavailable)
		}
		return engineResponse(), nil
	}

	svc := service.NewContentService(taskStore, generator, nil, config.EngineConfig{
		URL:               "http://localhost:5000",
		MaxRetries:        1,
		RetryDelaySeconds: 1,
	}, slog.Default())

	resp, err := svc.Generate(context.Background(), validRequest(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 2, attempts)
	assert.Equal(t, "generated content", resp.Content)
}

func TestGenerate_RejectedRequestsAreNotRetried(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	generator := mocks.NewMockGenerator()
	generator.Err = fmt.Errorf("%w: status 400", engine.ErrEngineRejected)

	svc := service.NewContentService(taskStore, generator, nil, config.EngineConfig{
		URL:               "http://localhost:5000",
		MaxRetries:        3,
		RetryDelaySeconds: 1,
	}, slog.Default())

	start := time.Now()
	_, err := svc.Generate(context.Background(), validRequest(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 1, generator.CallCount(), "rejected requests must not be retried")
	assert.Less(t, time.Since(start), time.Second)
}

func TestPreview_NoStoreWrites(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	taskStore.CreateFn = func(ctx context.Context, task *domain.Task) error {
		t.Fatal("preview must not create tasks")
		return nil
	}
	taskStore.TransitionFn = func(ctx context.Context, taskID string, from []domain.TaskStatus, update store.StatusUpdate) error {
		t.Fatal("preview must not transition tasks")
		return nil
	}

	generator := mocks.NewMockGenerator()
	generator.Response = engineResponse()
	svc := newService(taskStore, generator, nil)

	resp, err := svc.Preview(context.Background(), validRequest(), uuid.New())
	require.NoError(t, err)

	assert.Nil(t, resp.TaskID, "preview responses carry no task id")
	assert.Equal(t, "generated content", resp.Content)
}

func TestPreview_EngineFailureIsHard(t *testing.T) {
	t.Parallel()

	generator := mocks.NewMockGenerator()
	generator.Err = fmt.Errorf("%w: connection refused", engine.ErrEngineUnavailable)
	svc := newService(mocks.NewMockTaskStore(), generator, nil)

	_, err := svc.Preview(context.Background(), validRequest(), uuid.New())
	assert.ErrorIs(t, err, engine.ErrEngineUnavailable)
}

func TestSaveContent(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	svc := newService(taskStore, mocks.NewMockGenerator(), nil)

	ownerID := uuid.New()
	taskID, err := svc.SaveContent(context.Background(), &service.SaveContentRequest{
		Content:               "previewed content",
		ContentType:           "social_post",
		BrandVoice:            "professional",
		Topic:                 "Product launch",
		GenerationTimeSeconds: 3.2,
		ModelUsed:             "test-model",
	}, ownerID)
	require.NoError(t, err)
	require.NotEmpty(t, taskID)

	persisted, err := taskStore.GetByTaskID(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, persisted.Status)
	assert.Equal(t, "previewed content", persisted.GeneratedContent)
	assert.Equal(t, ownerID, persisted.OwnerID)
	assert.Contains(t, persisted.Metadata, "test-model")
}

func TestSaveContent_ValidationFailure(t *testing.T) {
	t.Parallel()

	svc := newService(mocks.NewMockTaskStore(), mocks.NewMockGenerator(), nil)

	_, err := svc.SaveContent(context.Background(), &service.SaveContentRequest{
		ContentType: "social_post",
		BrandVoice:  "professional",
		Topic:       "Topic",
	}, uuid.New())
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestGetTask_NotFound(t *testing.T) {
	t.Parallel()

	svc := newService(mocks.NewMockTaskStore(), mocks.NewMockGenerator(), nil)

	_, err := svc.GetTask(context.Background(), "task-missing")
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestListTasks_Pagination(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	generator := mocks.NewMockGenerator()
	svc := newService(taskStore, generator, nil)

	ownerID := uuid.New()
	for i := 0; i < 5; i++ {
		_, err := svc.Generate(context.Background(), validRequest(), ownerID)
		require.NoError(t, err)
	}
	// Another owner's task must not leak into the listing.
	_, err := svc.Generate(context.Background(), validRequest(), uuid.New())
	require.NoError(t, err)

	page0, err := svc.ListTasks(context.Background(), ownerID, 0, 3)
	require.NoError(t, err)
	assert.Len(t, page0, 3)

	page1, err := svc.ListTasks(context.Background(), ownerID, 1, 3)
	require.NoError(t, err)
	assert.Len(t, page1, 2)

	beyond, err := svc.ListTasks(context.Background(), ownerID, 10, 3)
	require.NoError(t, err)
	assert.Empty(t, beyond, "a page beyond the data is empty, not an error")
}

func TestCancel(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	createTask := func(t *testing.T, taskStore *mocks.MockTaskStore) string {
		t.Helper()
		task, err := domain.NewTask(ownerID, "social_post", "professional", "Topic", "", "", nil)
		require.NoError(t, err)
		require.NoError(t, taskStore.Create(context.Background(), task))
		return task.TaskID
	}

	t.Run("owner can cancel", func(t *testing.T) {
		t.Parallel()

		taskStore := mocks.NewMockTaskStore()
		svc := newService(taskStore, mocks.NewMockGenerator(), nil)
		taskID := createTask(t, taskStore)

		require.NoError(t, svc.Cancel(context.Background(), taskID, ownerID, domain.RoleUser))

		persisted, err := taskStore.GetByTaskID(context.Background(), taskID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusCancelled, persisted.Status)
		assert.Equal(t, "task cancelled by user", persisted.ErrorMessage)
	})

	t.Run("admin can cancel another owner's task", func(t *testing.T) {
		t.Parallel()

		taskStore := mocks.NewMockTaskStore()
		svc := newService(taskStore, mocks.NewMockGenerator(), nil)
		taskID := createTask(t, taskStore)

		require.NoError(t, svc.Cancel(context.Background(), taskID, uuid.New(), domain.RoleAdmin))
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		t.Parallel()

		taskStore := mocks.NewMockTaskStore()
		svc := newService(taskStore, mocks.NewMockGenerator(), nil)
		taskID := createTask(t, taskStore)

		err := svc.Cancel(context.Background(), taskID, uuid.New(), domain.RoleUser)
		assert.ErrorIs(t, err, service.ErrForbidden)

		persisted, gerr := taskStore.GetByTaskID(context.Background(), taskID)
		require.NoError(t, gerr)
		assert.Equal(t, domain.TaskStatusCreated, persisted.Status)
	})

	t.Run("terminal task is not cancellable", func(t *testing.T) {
		t.Parallel()

		taskStore := mocks.NewMockTaskStore()
		svc := newService(taskStore, mocks.NewMockGenerator(), nil)
		taskID := createTask(t, taskStore)

		require.NoError(t, taskStore.Transition(context.Background(), taskID,
			[]domain.TaskStatus{domain.TaskStatusCreated},
			store.StatusUpdate{Status: domain.TaskStatusFailed, ErrorMessage: "boom"}))

		err := svc.Cancel(context.Background(), taskID, ownerID, domain.RoleUser)
		assert.ErrorIs(t, err, service.ErrTaskNotCancellable)
	})

	t.Run("missing task reports not found", func(t *testing.T) {
		t.Parallel()

		svc := newService(mocks.NewMockTaskStore(), mocks.NewMockGenerator(), nil)
		err := svc.Cancel(context.Background(), "task-missing", ownerID, domain.RoleUser)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestCancel_DuringFlight_LateSuccessDiscarded(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	generator := mocks.NewMockGenerator()

	engineStarted := make(chan string, 1)
	release := make(chan struct{})
	generator.GenerateFn = func(ctx context.Context, req *engine.Request) (*engine.Response, error) {
		engineStarted <- req.Topic
		<-release
		return engineResponse(), nil
	}

	svc := newService(taskStore, generator, nil)
	ownerID := uuid.New()

	type result struct {
		resp *service.ContentResponse
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := svc.Generate(context.Background(), validRequest(), ownerID)
		done <- result{resp, err}
	}()

	select {
	case <-engineStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("engine call never started")
	}

	// The task is now processing; find and cancel it mid-flight.
	tasks, err := taskStore.ListByOwner(context.Background(), ownerID, 0, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	taskID := tasks[0].TaskID

	require.NoError(t, svc.Cancel(context.Background(), taskID, ownerID, domain.RoleUser))

	close(release)

	var res result
	select {
	case res = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("generation never returned")
	}
	require.NoError(t, res.err)

	// The late engine success lost the race; cancelled wins.
	persisted, err := taskStore.GetByTaskID(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCancelled, persisted.Status)
	assert.Empty(t, persisted.GeneratedContent)
	assert.False(t, res.resp.WorkflowInfo.InitialGenerationCompleted)
}

func TestGenerateAsync(t *testing.T) {
	t.Parallel()

	t.Run("completes in the background", func(t *testing.T) {
		t.Parallel()

		taskStore := mocks.NewMockTaskStore()
		generator := mocks.NewMockGenerator()
		generator.Response = engineResponse()

		runner := task.NewRunner(task.RunnerConfig{WorkerCount: 1, QueueSize: 10}, slog.Default())
		svc := newService(taskStore, generator, runner)

		taskID, err := svc.GenerateAsync(context.Background(), validRequest(), uuid.New())
		require.NoError(t, err)
		require.NotEmpty(t, taskID)

		// Stop drains the queue, so afterwards the job has run.
		runner.Stop()

		persisted, err := taskStore.GetByTaskID(context.Background(), taskID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusCompleted, persisted.Status)
		assert.Equal(t, "generated content", persisted.GeneratedContent)
	})

	t.Run("engine failure still reaches a terminal state", func(t *testing.T) {
		t.Parallel()

		taskStore := mocks.NewMockTaskStore()
		generator := mocks.NewMockGenerator()
		generator.Err = fmt.Errorf("%w: status 500", engine.ErrEngineFault)

		runner := task.NewRunner(task.RunnerConfig{WorkerCount: 1, QueueSize: 10}, slog.Default())
		svc := newService(taskStore, generator, runner)

		taskID, err := svc.GenerateAsync(context.Background(), validRequest(), uuid.New())
		require.NoError(t, err)

		runner.Stop()

		persisted, err := taskStore.GetByTaskID(context.Background(), taskID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusFailed, persisted.Status)
		assert.NotEmpty(t, persisted.ErrorMessage)
	})

	t.Run("validation failure creates nothing", func(t *testing.T) {
		t.Parallel()

		taskStore := mocks.NewMockTaskStore()
		runner := task.NewRunner(task.RunnerConfig{WorkerCount: 1, QueueSize: 10}, slog.Default())
		defer runner.Stop()
		svc := newService(taskStore, mocks.NewMockGenerator(), runner)

		req := validRequest()
		req.ContentType = ""

		_, err := svc.GenerateAsync(context.Background(), req, uuid.New())
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("closed runner fails the created task", func(t *testing.T) {
		t.Parallel()

		taskStore := mocks.NewMockTaskStore()
		runner := task.NewRunner(task.RunnerConfig{WorkerCount: 1, QueueSize: 1}, slog.Default())
		runner.Stop()
		svc := newService(taskStore, mocks.NewMockGenerator(), runner)

		ownerID := uuid.New()
		_, err := svc.GenerateAsync(context.Background(), validRequest(), ownerID)
		assert.ErrorIs(t, err, task.ErrRunnerClosed)

		// The task that was created for the rejected enqueue is terminal.
		tasks, lerr := taskStore.ListByOwner(context.Background(), ownerID, 0, 10)
		require.NoError(t, lerr)
		require.Len(t, tasks, 1)
		assert.Equal(t, domain.TaskStatusFailed, tasks[0].Status)
	})
}
