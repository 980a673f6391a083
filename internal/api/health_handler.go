package api

import (
	"net/http"

	"github.com/LoweKTH/MarketingAgentFactory/internal/api/shared"
	"github.com/LoweKTH/MarketingAgentFactory/internal/engine"
)

// HealthResponse reports service and engine readiness.
type HealthResponse struct {
	Status string `json:"status"`
	Engine string `json:"engine"`
}

// HealthHandler reports readiness of the service and the generation engine.
type HealthHandler struct {
	generator engine.Generator
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(generator engine.Generator) *HealthHandler {
	return &HealthHandler{generator: generator}
}

// Health handles GET /health. The engine is probed with its short health
// timeout; an unreachable engine degrades the report but the service itself
// still answers 200 so orchestrators do not restart a healthy process.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	engineStatus := "unreachable"
	if h.generator != nil && h.generator.HealthCheck(r.Context()) {
		engineStatus = "healthy"
	}

	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status: "healthy",
		Engine: engineStatus,
	})
}
