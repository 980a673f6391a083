package api

import (
	"log/slog"
	"net/http"

	"github.com/LoweKTH/MarketingAgentFactory/internal/api/middleware"
	"github.com/LoweKTH/MarketingAgentFactory/internal/api/shared"
	"github.com/LoweKTH/MarketingAgentFactory/internal/domain"
	"github.com/LoweKTH/MarketingAgentFactory/internal/service"
)

// ContentHandler holds the content generation endpoints.
type ContentHandler struct {
	contentService service.ContentService
	logger         *slog.Logger
}

// NewContentHandler creates a new ContentHandler with the given dependencies.
func NewContentHandler(contentService service.ContentService, log *slog.Logger) *ContentHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ContentHandler{
		contentService: contentService,
		logger:         log.With(slog.String("component", "content_handler")),
	}
}

// Generate handles POST /api/content/generate.
// Runs the generation synchronously and returns the full content response.
// Engine-side failures surface as a soft-failure response, not an error
// status; only validation and store failures map to error codes.
func (h *ContentHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.GenerationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.contentService.Generate(r.Context(), &req, ownerID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GenerateAsync handles POST /api/content/generate/async.
// Accepts the work and returns 202 with the external task id; generation
// continues on a background worker.
func (h *ContentHandler) GenerateAsync(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.GenerationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	taskID, err := h.contentService.GenerateAsync(r.Context(), &req, ownerID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, TaskCreatedResponse{
		TaskID: taskID,
		Status: string(domain.TaskStatusCreated),
	})
}

// Preview handles POST /api/content/preview.
// Runs the full pipeline without persisting anything; the response carries a
// null task id. Engine failures here are hard errors.
func (h *ContentHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.GenerationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.contentService.Preview(r.Context(), &req, ownerID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// SaveContent handles POST /api/content/save.
// Persists previously-previewed content as a completed task.
func (h *ContentHandler) SaveContent(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.SaveContentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	taskID, err := h.contentService.SaveContent(r.Context(), &req, ownerID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, TaskCreatedResponse{
		TaskID: taskID,
		Status: string(domain.TaskStatusCompleted),
	})
}
