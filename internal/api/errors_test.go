package api_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LoweKTH/MarketingAgentFactory/internal/api"
	"github.com/LoweKTH/MarketingAgentFactory/internal/engine"
	"github.com/LoweKTH/MarketingAgentFactory/internal/service"
	"github.com/LoweKTH/MarketingAgentFactory/internal/store"
	"github.com/LoweKTH/MarketingAgentFactory/internal/task"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", service.ErrValidation, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("%w: topic required", service.ErrValidation), http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"engine rejected", engine.ErrEngineRejected, http.StatusBadRequest},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"not cancellable", service.ErrTaskNotCancellable, http.StatusConflict},
		{"invalid transition", store.ErrInvalidTransition, http.StatusConflict},
		{"duplicate", store.ErrDuplicate, http.StatusConflict},
		{"engine unavailable", engine.ErrEngineUnavailable, http.StatusBadGateway},
		{"engine fault", engine.ErrEngineFault, http.StatusBadGateway},
		{"invalid engine response", engine.ErrInvalidResponse, http.StatusBadGateway},
		{"queue full", task.ErrQueueFull, http.StatusServiceUnavailable},
		{"runner closed", task.ErrRunnerClosed, http.StatusServiceUnavailable},
		{"unknown", errors.New("anything else"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, api.MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("never leaks internal details", func(t *testing.T) {
		t.Parallel()

		err := fmt.Errorf("pq: connection to 10.0.0.3:5432 refused")
		msg := api.GetSafeErrorMessage(err)
		assert.NotContains(t, msg, "10.0.0.3")
		assert.Equal(t, "An unexpected error occurred", msg)
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "An unexpected error occurred", api.GetSafeErrorMessage(nil))
	})

	t.Run("known errors map to friendly messages", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Task not found", api.GetSafeErrorMessage(store.ErrTaskNotFound))
		assert.Equal(t, "Invalid request data", api.GetSafeErrorMessage(service.ErrValidation))
	})
}
