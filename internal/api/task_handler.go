package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/LoweKTH/MarketingAgentFactory/internal/api/middleware"
	"github.com/LoweKTH/MarketingAgentFactory/internal/api/shared"
	"github.com/LoweKTH/MarketingAgentFactory/internal/service"
)

// TaskHandler holds the task status, history and cancellation endpoints.
type TaskHandler struct {
	contentService service.ContentService
	logger         *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(contentService service.ContentService, log *slog.Logger) *TaskHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TaskHandler{
		contentService: contentService,
		logger:         log.With(slog.String("component", "task_handler")),
	}
}

// GetTask handles GET /api/tasks/{taskID}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if taskID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task ID is required")
		return
	}

	task, err := h.contentService.GetTask(r.Context(), taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ToTaskResponse(task))
}

// ListTasks handles GET /api/tasks?page=&size=.
// Returns one page of the authenticated owner's history, most-recent-first.
// A page beyond the available tasks yields an empty list, not an error.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	page := queryInt(r, "page", 0)
	size := queryInt(r, "size", 0)

	tasks, err := h.contentService.ListTasks(r.Context(), ownerID, page, size)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	views := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, ToTaskResponse(t))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks: views,
		Page:  page,
		Size:  len(views),
	})
}

// CancelTask handles POST /api/tasks/{taskID}/cancel.
// The requester must own the task or be an admin; tasks that already reached
// a terminal state cannot be cancelled.
func (h *TaskHandler) CancelTask(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	taskID := chi.URLParam(r, "taskID")
	if taskID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task ID is required")
		return
	}

	err := h.contentService.Cancel(r.Context(), taskID, ownerID, middleware.GetUserRole(r))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteTask handles DELETE /api/tasks/{taskID}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if taskID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task ID is required")
		return
	}

	if err := h.contentService.Delete(r.Context(), taskID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// queryInt reads an integer query parameter, falling back when absent or
// malformed.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
