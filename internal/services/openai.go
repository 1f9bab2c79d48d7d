package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jwebster45206/storyweaver/pkg/generator"
)

const DefaultOpenAIModel = openai.GPT4oMini

// OpenAIService implements LLMService for OpenAI and OpenAI-compatible
// hosts (OpenRouter, local gateways) selected by base URL.
type OpenAIService struct {
	client    *openai.Client
	modelName string
	logger    *slog.Logger
}

// Ensure OpenAIService implements LLMService interface
var _ LLMService = (*OpenAIService)(nil)

func NewOpenAIService(apiKey, modelName, baseURL string, logger *slog.Logger) *OpenAIService {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	config.HTTPClient = &http.Client{
		Timeout: 120 * time.Second,
	}
	if modelName == "" {
		modelName = DefaultOpenAIModel
	}

	return &OpenAIService{
		client:    openai.NewClientWithConfig(config),
		modelName: modelName,
		logger:    logger,
	}
}

func (o *OpenAIService) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	const op = "openai chat completion"

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: float32(temperature),
	})
	if err != nil {
		return "", classifyOpenAIError(op, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", generator.NewError(op, generator.KindMalformed, errors.New("received empty response from API"))
	}

	o.logger.Debug("OpenAI response received",
		"model", resp.Model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIService) Ping(ctx context.Context) error {
	if _, err := o.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai ping failed: %w", err)
	}
	return nil
}

func classifyOpenAIError(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return generator.NewError(op, generator.KindStatus,
			fmt.Errorf("API request failed with status %d: %w", apiErr.HTTPStatusCode, err))
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return generator.NewError(op, generator.KindStatus,
			fmt.Errorf("API request failed with status %d: %w", reqErr.HTTPStatusCode, err))
	}
	return generator.NewError(op, generator.KindTransport, err)
}
