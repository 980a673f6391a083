// Package contentagent implements the engine.Generator interface against
// the HTTP API of the external content agent service.
package contentagent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/LoweKTH/MarketingAgentFactory/internal/config"
	"github.com/LoweKTH/MarketingAgentFactory/internal/engine"
	"github.com/LoweKTH/MarketingAgentFactory/internal/platform/logger"
	"github.com/LoweKTH/MarketingAgentFactory/internal/platform/metrics"
)

// Default timeouts applied when the configuration leaves them unset.
const (
	defaultTimeout       = 30 * time.Second
	defaultHealthTimeout = 5 * time.Second
)

// healthStatus is the body of the engine's health endpoint.
type healthStatus struct {
	Status string `json:"status"`
}

// Client calls the content agent over HTTP. It performs no retries; retry
// policy belongs to the orchestrator.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	timeout       time.Duration
	healthTimeout time.Duration
	logger        *slog.Logger
}

// Ensure Client implements the engine.Generator interface
var _ engine.Generator = (*Client)(nil)

// NewClient creates a content agent client from the engine configuration.
// If log is nil, the default logger is used.
func NewClient(cfg config.EngineConfig, log *slog.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("engine URL cannot be empty")
	}

	if log == nil {
		log = slog.Default()
	}

	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	healthTimeout := defaultHealthTimeout
	if cfg.HealthTimeoutSeconds > 0 {
		healthTimeout = time.Duration(cfg.HealthTimeoutSeconds) * time.Second
	}

	return &Client{
		baseURL: cfg.URL,
		// Per-request deadlines are set via context so the health probe
		// can use its own shorter timeout on the same client.
		httpClient:    &http.Client{},
		timeout:       timeout,
		healthTimeout: healthTimeout,
		logger:        log.With(slog.String("component", "content_agent_client")),
	}, nil
}

// Generate implements engine.Generator. It posts the request to the
// engine's generate endpoint and classifies failures: transport errors and
// timeouts as ErrEngineUnavailable, client-error responses as
// ErrEngineRejected, and server-error responses as ErrEngineFault.
func (c *Client) Generate(ctx context.Context, req *engine.Request) (*engine.Response, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode engine request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build engine request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	log.Debug("sending generation request to content engine",
		slog.String("content_type", req.ContentType),
		slog.String("platform", req.Platform))

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		metrics.EngineRequest(metrics.OutcomeUnavailable, elapsed)
		log.Error("content engine call failed",
			slog.String("error", err.Error()),
			slog.Float64("elapsed_seconds", elapsed))
		return nil, fmt.Errorf("%w: %v", engine.ErrEngineUnavailable, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Error("failed to close engine response body", slog.String("error", cerr.Error()))
		}
	}()

	if err := classifyStatus(resp.StatusCode); err != nil {
		metrics.EngineRequest(outcomeFor(err), elapsed)
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("content engine returned error status",
			slog.Int("status_code", resp.StatusCode),
			slog.String("body", string(detail)))
		return nil, fmt.Errorf("%w: status %d", err, resp.StatusCode)
	}

	var engineResp engine.Response
	if err := json.NewDecoder(resp.Body).Decode(&engineResp); err != nil {
		metrics.EngineRequest(metrics.OutcomeFault, elapsed)
		log.Error("failed to decode engine response", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", engine.ErrInvalidResponse, err)
	}

	metrics.EngineRequest(metrics.OutcomeSuccess, elapsed)
	log.Debug("content engine call succeeded",
		slog.Int("content_length", len(engineResp.Content)),
		slog.Float64("elapsed_seconds", elapsed))

	return &engineResp, nil
}

// HealthCheck implements engine.Generator. It probes the engine's health
// endpoint with a short independent timeout and never affects the
// generation path.
func (c *Client) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("content engine health check failed", slog.String("error", err.Error()))
		return false
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var health healthStatus
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return false
	}

	return health.Status == "healthy"
}

// classifyStatus maps a non-2xx status code to the typed engine error.
func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code >= 400 && code < 500:
		return engine.ErrEngineRejected
	default:
		return engine.ErrEngineFault
	}
}

// outcomeFor translates a typed engine error into a metrics label.
func outcomeFor(err error) string {
	switch {
	case errors.Is(err, engine.ErrEngineRejected):
		return metrics.OutcomeRejected
	case errors.Is(err, engine.ErrEngineUnavailable):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeFault
	}
}
