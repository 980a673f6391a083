package domain_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LoweKTH/MarketingAgentFactory/internal/domain"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	t.Run("creates valid task in created state", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask(ownerID, "social_post", "professional", "Product launch",
			"linkedin", "B2B buyers", []string{"value", "trust"})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, task.ID)
		assert.True(t, strings.HasPrefix(task.TaskID, "task-"))
		assert.Equal(t, domain.TaskStatusCreated, task.Status)
		assert.Equal(t, ownerID, task.OwnerID)
		assert.Equal(t, "social_post", task.ContentType)
		assert.Empty(t, task.GeneratedContent)
		assert.Empty(t, task.ErrorMessage)
		assert.False(t, task.CreatedAt.IsZero())
		assert.Equal(t, task.CreatedAt, task.UpdatedAt)
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			name        string
			contentType string
			brandVoice  string
			topic       string
		}{
			{"missing content type", "", "professional", "Topic"},
			{"missing brand voice", "social_post", "", "Topic"},
			{"missing topic", "social_post", "professional", ""},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := domain.NewTask(ownerID, tc.contentType, tc.brandVoice, tc.topic, "", "", nil)
				assert.ErrorIs(t, err, domain.ErrMissingTaskFields)
			})
		}
	})

	t.Run("rejects nil owner", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewTask(uuid.Nil, "social_post", "professional", "Topic", "", "", nil)
		assert.ErrorIs(t, err, domain.ErrEmptyOwnerID)
	})

	t.Run("platform and audience are optional", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask(ownerID, "email", "friendly", "Newsletter", "", "", nil)
		require.NoError(t, err)
		assert.Empty(t, task.Platform)
		assert.Empty(t, task.TargetAudience)
	})
}

func TestNewTaskID_Unique(t *testing.T) {
	t.Parallel()

	const n = 1000

	var mu sync.Mutex
	seen := make(map[string]bool, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := domain.NewTaskID()

			mu.Lock()
			defer mu.Unlock()
			seen[id] = true
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n, "concurrent id generation must not collide")
}

func TestTaskStatus_IsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, domain.TaskStatusCreated.IsTerminal())
	assert.False(t, domain.TaskStatusProcessing.IsTerminal())
	assert.True(t, domain.TaskStatusCompleted.IsTerminal())
	assert.True(t, domain.TaskStatusFailed.IsTerminal())
	assert.True(t, domain.TaskStatusCancelled.IsTerminal())
}

func TestTaskStatus_CanTransitionTo(t *testing.T) {
	t.Parallel()

	allowed := map[domain.TaskStatus][]domain.TaskStatus{
		domain.TaskStatusCreated: {
			domain.TaskStatusProcessing,
			domain.TaskStatusFailed,
			domain.TaskStatusCancelled,
		},
		domain.TaskStatusProcessing: {
			domain.TaskStatusCompleted,
			domain.TaskStatusFailed,
			domain.TaskStatusCancelled,
		},
		domain.TaskStatusCompleted: {},
		domain.TaskStatusFailed:    {},
		domain.TaskStatusCancelled: {},
	}

	all := []domain.TaskStatus{
		domain.TaskStatusCreated,
		domain.TaskStatusProcessing,
		domain.TaskStatusCompleted,
		domain.TaskStatusFailed,
		domain.TaskStatusCancelled,
	}

	for from, nexts := range allowed {
		allowedSet := make(map[domain.TaskStatus]bool)
		for _, next := range nexts {
			allowedSet[next] = true
		}

		for _, to := range all {
			got := from.CanTransitionTo(to)
			assert.Equal(t, allowedSet[to], got, "%s -> %s", from, to)
		}
	}
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()

	valid := func() *domain.Task {
		task, err := domain.NewTask(uuid.New(), "blog", "casual", "Topic", "", "", nil)
		require.NoError(t, err)
		return task
	}

	t.Run("valid task passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, valid().Validate())
	})

	t.Run("empty external id fails", func(t *testing.T) {
		t.Parallel()
		task := valid()
		task.TaskID = ""
		assert.ErrorIs(t, task.Validate(), domain.ErrEmptyExternalID)
	})

	t.Run("unknown status fails", func(t *testing.T) {
		t.Parallel()
		task := valid()
		task.Status = domain.TaskStatus("paused")
		assert.ErrorIs(t, task.Validate(), domain.ErrInvalidTaskStatus)
	})
}
