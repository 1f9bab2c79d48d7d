package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/storyweaver/internal/config"
)

// LLMService defines the interface for interacting with the LLM API
type LLMService interface {
	// Complete sends one system/user exchange and returns the model's text.
	// Failures are *generator.Error values classified by kind.
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)

	// Ping checks that the provider is reachable and the key is accepted.
	Ping(ctx context.Context) error
}

// NewLLMService builds the configured provider wrapped with metrics.
// It returns nil, nil when generation is disabled.
func NewLLMService(cfg *config.Config, logger *slog.Logger) (LLMService, error) {
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, errors.New("anthropic API key is required when using anthropic provider")
		}
		logger.Info("Using Anthropic LLM provider")
		return NewInstrumentedLLM(NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, logger), config.ProviderAnthropic), nil
	case config.ProviderOpenAI:
		logger.Info("Using OpenAI LLM provider", "base_url", cfg.OpenAIBaseURL)
		return NewInstrumentedLLM(NewOpenAIService(cfg.OpenAIAPIKey, cfg.ModelName, cfg.OpenAIBaseURL, logger), config.ProviderOpenAI), nil
	case config.ProviderNone:
		logger.Info("LLM provider disabled; custom actions and suggestions are off")
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid LLM provider %q", cfg.LLMProvider)
	}
}
