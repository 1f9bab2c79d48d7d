package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/storyweaver/internal/config"
)

func TestNewLLMService(t *testing.T) {
	llm, err := NewLLMService(&config.Config{LLMProvider: config.ProviderNone}, discardLogger())
	require.NoError(t, err)
	assert.Nil(t, llm)

	_, err = NewLLMService(&config.Config{LLMProvider: config.ProviderAnthropic}, discardLogger())
	assert.Error(t, err)

	llm, err = NewLLMService(&config.Config{LLMProvider: config.ProviderAnthropic, AnthropicAPIKey: "k"}, discardLogger())
	require.NoError(t, err)
	inst, ok := llm.(*InstrumentedLLM)
	require.True(t, ok)
	assert.IsType(t, &AnthropicService{}, inst.next)

	llm, err = NewLLMService(&config.Config{LLMProvider: config.ProviderOpenAI, OpenAIBaseURL: "http://localhost:11434/v1"}, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &OpenAIService{}, llm.(*InstrumentedLLM).next)

	_, err = NewLLMService(&config.Config{LLMProvider: "venice"}, discardLogger())
	assert.Error(t, err)
}
