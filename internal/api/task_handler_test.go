package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LoweKTH/MarketingAgentFactory/internal/api"
	"github.com/LoweKTH/MarketingAgentFactory/internal/domain"
)

func createTaskViaAPI(t *testing.T, env *testEnv) string {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/api/content/generate", generationPayload())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		TaskID *string `json:"taskId"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.TaskID)
	return *resp.TaskID
}

func TestTaskHandler_GetTask(t *testing.T) {
	t.Parallel()

	t.Run("returns task view", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, domain.RoleUser)
		taskID := createTaskViaAPI(t, env)

		rec := env.do(t, http.MethodGet, "/api/tasks/"+taskID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var view api.TaskResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
		assert.Equal(t, taskID, view.TaskID)
		assert.Equal(t, "completed", view.Status)
		assert.Equal(t, "generated content", view.GeneratedContent)
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, domain.RoleUser)

		rec := env.do(t, http.MethodGet, "/api/tasks/task-does-not-exist", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTaskHandler_ListTasks(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, domain.RoleUser)
	for i := 0; i < 3; i++ {
		createTaskViaAPI(t, env)
	}

	t.Run("returns owner's history", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/tasks?page=0&size=10", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.TaskListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Len(t, resp.Tasks, 3)
		assert.Equal(t, 0, resp.Page)
	})

	t.Run("page beyond data is empty", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/tasks?page=5&size=10", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.TaskListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Empty(t, resp.Tasks)
	})

	t.Run("malformed paging falls back to defaults", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/tasks?page=abc&size=xyz", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestTaskHandler_CancelTask(t *testing.T) {
	t.Parallel()

	t.Run("completed task returns conflict", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, domain.RoleUser)
		taskID := createTaskViaAPI(t, env)

		rec := env.do(t, http.MethodPost, "/api/tasks/"+taskID+"/cancel", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("owner cancels pending task", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, domain.RoleUser)

		task, err := domain.NewTask(env.ownerID, "social_post", "professional", "Topic", "", "", nil)
		require.NoError(t, err)
		require.NoError(t, env.taskStore.Create(context.Background(), task))

		rec := env.do(t, http.MethodPost, "/api/tasks/"+task.TaskID+"/cancel", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		persisted, err := env.taskStore.GetByTaskID(context.Background(), task.TaskID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusCancelled, persisted.Status)
	})

	t.Run("another user's task is forbidden", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, domain.RoleUser)

		task, err := domain.NewTask(uuid.New(), "social_post", "professional", "Topic", "", "", nil)
		require.NoError(t, err)
		require.NoError(t, env.taskStore.Create(context.Background(), task))

		rec := env.do(t, http.MethodPost, "/api/tasks/"+task.TaskID+"/cancel", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin may cancel any task", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, domain.RoleAdmin)

		task, err := domain.NewTask(uuid.New(), "social_post", "professional", "Topic", "", "", nil)
		require.NoError(t, err)
		require.NoError(t, env.taskStore.Create(context.Background(), task))

		rec := env.do(t, http.MethodPost, "/api/tasks/"+task.TaskID+"/cancel", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("unknown task returns 404", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, domain.RoleUser)

		rec := env.do(t, http.MethodPost, "/api/tasks/task-missing/cancel", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTaskHandler_DeleteTask(t *testing.T) {
	t.Parallel()

	t.Run("deletes existing task", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, domain.RoleUser)
		taskID := createTaskViaAPI(t, env)

		rec := env.do(t, http.MethodDelete, "/api/tasks/"+taskID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/tasks/"+taskID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown task returns 404", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, domain.RoleUser)

		rec := env.do(t, http.MethodDelete, "/api/tasks/task-missing", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
