package services

import (
	"context"
	"sync"
)

// MockLLMAPI is a mock implementation of LLMService for testing
type MockLLMAPI struct {
	CompleteFunc func(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
	PingFunc     func(ctx context.Context) error

	// Track calls for testing
	CompleteCalls []CompleteCall
	PingCalls     int

	mu sync.Mutex // protects all fields above
}

type CompleteCall struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
}

// Ensure MockLLMAPI implements LLMService interface
var _ LLMService = (*MockLLMAPI)(nil)

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		CompleteCalls: make([]CompleteCall, 0),
	}
}

// Complete mocks a completion
func (m *MockLLMAPI) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	m.mu.Lock()
	m.CompleteCalls = append(m.CompleteCalls, CompleteCall{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  temperature,
	})
	fn := m.CompleteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, systemPrompt, userPrompt, temperature)
	}

	// Default behavior - a well-formed scene
	return `{"title": "Mock Scene", "body": "Mock response"}`, nil
}

// Ping mocks a health check
func (m *MockLLMAPI) Ping(ctx context.Context) error {
	m.mu.Lock()
	m.PingCalls++
	fn := m.PingFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return nil
}

// SetResponse sets up the mock to return text from Complete
func (m *MockLLMAPI) SetResponse(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteFunc = func(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
		return text, nil
	}
}

// SetCompleteError sets up the mock to return an error on Complete
func (m *MockLLMAPI) SetCompleteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteFunc = func(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
		return "", err
	}
}

// SetPingError sets up the mock to return an error on Ping
func (m *MockLLMAPI) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PingFunc = func(ctx context.Context) error {
		return err
	}
}

// GetCalls returns a copy of the call tracking data in a thread-safe way
func (m *MockLLMAPI) GetCalls() []CompleteCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]CompleteCall, len(m.CompleteCalls))
	copy(calls, m.CompleteCalls)
	return calls
}

// Reset clears all call tracking
func (m *MockLLMAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteCalls = make([]CompleteCall, 0)
	m.PingCalls = 0
}
