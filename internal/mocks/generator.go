package mocks

import (
	"context"
	"sync"

	"github.com/LoweKTH/MarketingAgentFactory/internal/engine"
)

// MockGenerator implements engine.Generator for testing
type MockGenerator struct {
	// Function fields for customizable behavior
	GenerateFn    func(ctx context.Context, req *engine.Request) (*engine.Response, error)
	HealthCheckFn func(ctx context.Context) bool

	// Canned results for the default implementation
	Response *engine.Response
	Err      error
	Healthy  bool

	mu       sync.Mutex
	requests []*engine.Request
}

// NewMockGenerator creates a mock generator that succeeds with a minimal
// response by default.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		Response: &engine.Response{Content: "generated content"},
		Healthy:  true,
	}
}

var _ engine.Generator = (*MockGenerator)(nil)

// Generate implements the Generator interface
func (m *MockGenerator) Generate(ctx context.Context, req *engine.Request) (*engine.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, req)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

// HealthCheck implements the Generator interface
func (m *MockGenerator) HealthCheck(ctx context.Context) bool {
	if m.HealthCheckFn != nil {
		return m.HealthCheckFn(ctx)
	}
	return m.Healthy
}

// Requests returns a snapshot of all requests seen so far.
func (m *MockGenerator) Requests() []*engine.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*engine.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// CallCount returns how many Generate calls were made.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
