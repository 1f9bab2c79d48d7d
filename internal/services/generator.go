package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jwebster45206/storyweaver/pkg/generator"
	"github.com/jwebster45206/storyweaver/pkg/prompts"
)

// LLMGenerator implements generator.Generator on top of an LLMService:
// it builds the prompt, calls the model and parses the JSON reply.
type LLMGenerator struct {
	llm         LLMService
	logger      *slog.Logger
	temperature float64
}

// Ensure LLMGenerator implements Generator interface
var _ generator.Generator = (*LLMGenerator)(nil)

func NewLLMGenerator(llm LLMService, logger *slog.Logger) *LLMGenerator {
	return &LLMGenerator{llm: llm, logger: logger}
}

// WithTemperature overrides the per-operation default temperatures.
// Zero keeps the defaults.
func (g *LLMGenerator) WithTemperature(t float64) *LLMGenerator {
	g.temperature = t
	return g
}

func (g *LLMGenerator) SuggestScene(ctx context.Context, req generator.SceneRequest) (*generator.SceneSuggestion, error) {
	const op = "suggest scene"

	p, err := prompts.New().
		WithStory(req.StoryTitle, req.StoryDescription).
		WithSceneBody(req.CurrentSceneBody).
		WithSummary(req.StorySummary).
		WithAction(req.Action).
		BuildScene()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", generator.ErrInvalidRequest, err)
	}

	var out generator.SceneSuggestion
	if err := g.complete(ctx, op, p, &out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, generator.NewError(op, generator.KindMalformed, err)
	}
	out.Title = strings.TrimSpace(out.Title)
	out.Body = strings.TrimSpace(out.Body)
	return &out, nil
}

func (g *LLMGenerator) SuggestChoices(ctx context.Context, req generator.ChoicesRequest) (*generator.ChoicesSuggestion, error) {
	const op = "suggest choices"

	p, err := prompts.New().
		WithSceneBody(req.SceneBody).
		WithStoryContext(req.StoryContext).
		BuildChoices()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", generator.ErrInvalidRequest, err)
	}

	var out generator.ChoicesSuggestion
	if err := g.complete(ctx, op, p, &out); err != nil {
		return nil, err
	}
	if out.Choices == nil {
		return nil, generator.NewError(op, generator.KindMalformed, errors.New("missing choices"))
	}
	return &out, nil
}

func (g *LLMGenerator) ImproveText(ctx context.Context, sceneBody string) (*generator.ImprovedText, error) {
	const op = "improve text"

	p, err := prompts.New().WithSceneBody(sceneBody).WithMaxBodyLength(0).BuildImprove()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", generator.ErrInvalidRequest, err)
	}

	var out generator.ImprovedText
	if err := g.complete(ctx, op, p, &out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, generator.NewError(op, generator.KindMalformed, err)
	}
	return &out, nil
}

func (g *LLMGenerator) complete(ctx context.Context, op string, p prompts.Prompt, out any) error {
	temperature := p.Temperature
	if g.temperature > 0 {
		temperature = g.temperature
	}

	text, err := g.llm.Complete(ctx, p.System, p.User, temperature)
	if err != nil {
		var gerr *generator.Error
		if errors.As(err, &gerr) {
			return err
		}
		return generator.NewError(op, generator.KindTransport, err)
	}

	raw, err := extractJSONObject(text)
	if err != nil {
		g.logger.Warn("Model reply has no JSON object", "op", op, "reply_length", len(text))
		return generator.NewError(op, generator.KindMalformed, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return generator.NewError(op, generator.KindMalformed, fmt.Errorf("failed to parse reply: %w", err))
	}
	return nil
}

// extractJSONObject returns the first balanced JSON object in text.
// Models often wrap the object in code fences or a sentence of prose.
func extractJSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", errors.New("no JSON object in reply")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", errors.New("unterminated JSON object in reply")
}
