package generator

import (
	"context"
	"sync"
)

// MockGenerator is a mock implementation of Generator for testing
type MockGenerator struct {
	SuggestSceneFunc   func(ctx context.Context, req SceneRequest) (*SceneSuggestion, error)
	SuggestChoicesFunc func(ctx context.Context, req ChoicesRequest) (*ChoicesSuggestion, error)
	ImproveTextFunc    func(ctx context.Context, sceneBody string) (*ImprovedText, error)

	// Track calls for testing
	SuggestSceneCalls   []SceneRequest
	SuggestChoicesCalls []ChoicesRequest
	ImproveTextCalls    []string

	mu sync.Mutex // protects all fields above
}

// NewMockGenerator creates a mock that answers with fixed content.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		SuggestSceneCalls:   make([]SceneRequest, 0),
		SuggestChoicesCalls: make([]ChoicesRequest, 0),
		ImproveTextCalls:    make([]string, 0),
	}
}

func (m *MockGenerator) SuggestScene(ctx context.Context, req SceneRequest) (*SceneSuggestion, error) {
	m.mu.Lock()
	m.SuggestSceneCalls = append(m.SuggestSceneCalls, req)
	fn := m.SuggestSceneFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return &SceneSuggestion{Title: "Mock Scene", Body: "Mock body."}, nil
}

func (m *MockGenerator) SuggestChoices(ctx context.Context, req ChoicesRequest) (*ChoicesSuggestion, error) {
	m.mu.Lock()
	m.SuggestChoicesCalls = append(m.SuggestChoicesCalls, req)
	fn := m.SuggestChoicesFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return &ChoicesSuggestion{Choices: []ChoiceSuggestion{{Text: "Go on"}, {Text: "Turn back"}}}, nil
}

func (m *MockGenerator) ImproveText(ctx context.Context, sceneBody string) (*ImprovedText, error) {
	m.mu.Lock()
	m.ImproveTextCalls = append(m.ImproveTextCalls, sceneBody)
	fn := m.ImproveTextFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, sceneBody)
	}
	return &ImprovedText{ImprovedBody: sceneBody}, nil
}

// SetSceneResponse makes SuggestScene return the given title and body.
func (m *MockGenerator) SetSceneResponse(title, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SuggestSceneFunc = func(ctx context.Context, req SceneRequest) (*SceneSuggestion, error) {
		return &SceneSuggestion{Title: title, Body: body}, nil
	}
}

// SetSceneError makes SuggestScene fail with err.
func (m *MockGenerator) SetSceneError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SuggestSceneFunc = func(ctx context.Context, req SceneRequest) (*SceneSuggestion, error) {
		return nil, err
	}
}

// SetChoicesResponse makes SuggestChoices return the given texts.
func (m *MockGenerator) SetChoicesResponse(texts ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SuggestChoicesFunc = func(ctx context.Context, req ChoicesRequest) (*ChoicesSuggestion, error) {
		out := &ChoicesSuggestion{Choices: make([]ChoiceSuggestion, 0, len(texts))}
		for _, t := range texts {
			out.Choices = append(out.Choices, ChoiceSuggestion{Text: t})
		}
		return out, nil
	}
}

// SetChoicesError makes SuggestChoices fail with err.
func (m *MockGenerator) SetChoicesError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SuggestChoicesFunc = func(ctx context.Context, req ChoicesRequest) (*ChoicesSuggestion, error) {
		return nil, err
	}
}

// GetCalls returns a copy of the call tracking data in a thread-safe way
func (m *MockGenerator) GetCalls() ([]SceneRequest, []ChoicesRequest, []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	scenes := make([]SceneRequest, len(m.SuggestSceneCalls))
	copy(scenes, m.SuggestSceneCalls)
	choices := make([]ChoicesRequest, len(m.SuggestChoicesCalls))
	copy(choices, m.SuggestChoicesCalls)
	improve := make([]string, len(m.ImproveTextCalls))
	copy(improve, m.ImproveTextCalls)

	return scenes, choices, improve
}
