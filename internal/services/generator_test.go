package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/storyweaver/pkg/generator"
	"github.com/jwebster45206/storyweaver/pkg/prompts"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"bare", `{"a":1}`, `{"a":1}`, false},
		{"code fence", "```json\n{\"a\":1}\n```", `{"a":1}`, false},
		{"prose around", `Here you go: {"a":{"b":2}} Enjoy!`, `{"a":{"b":2}}`, false},
		{"braces in strings", `{"body":"a } and a { inside \"quotes\""}`, `{"body":"a } and a { inside \"quotes\""}`, false},
		{"first of two", `{"a":1}{"b":2}`, `{"a":1}`, false},
		{"none", `no json here`, "", true},
		{"unterminated", `{"a":`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSONObject(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLLMGenerator_SuggestScene(t *testing.T) {
	llm := NewMockLLMAPI()
	llm.SetResponse("```json\n{\"title\": \" Cave \", \"body\": \"You enter a cave.\"}\n```")
	g := NewLLMGenerator(llm, discardLogger())

	s, err := g.SuggestScene(context.Background(), generator.SceneRequest{
		StoryTitle:       "T",
		StoryDescription: "D",
		CurrentSceneBody: "You stand in a hall.",
		Action:           "look for a cave",
	})
	require.NoError(t, err)
	assert.Equal(t, "Cave", s.Title)
	assert.Equal(t, "You enter a cave.", s.Body)

	calls := llm.GetCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, prompts.SceneSystemPrompt, calls[0].SystemPrompt)
	assert.Contains(t, calls[0].UserPrompt, "look for a cave")
	assert.Equal(t, prompts.SceneTemperature, calls[0].Temperature)
}

func TestLLMGenerator_SuggestSceneMalformed(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"missing body", `{"title":"Cave"}`},
		{"not json", `I could not think of a scene.`},
		{"wrong types", `{"title": 3, "body": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := NewMockLLMAPI()
			llm.SetResponse(tt.reply)
			g := NewLLMGenerator(llm, discardLogger())

			_, err := g.SuggestScene(context.Background(), generator.SceneRequest{StoryTitle: "T"})
			require.Error(t, err)
			assert.True(t, generator.IsMalformed(err), "got %v", err)
		})
	}
}

func TestLLMGenerator_TransportErrorsKeepKind(t *testing.T) {
	llm := NewMockLLMAPI()
	llm.SetCompleteError(generator.NewError("anthropic messages", generator.KindStatus, errors.New("HTTP 529")))
	g := NewLLMGenerator(llm, discardLogger())

	_, err := g.SuggestScene(context.Background(), generator.SceneRequest{StoryTitle: "T"})
	assert.Equal(t, generator.KindStatus, generator.KindOf(err))

	llm.SetCompleteError(context.DeadlineExceeded)
	_, err = g.SuggestScene(context.Background(), generator.SceneRequest{StoryTitle: "T"})
	assert.Equal(t, generator.KindTransport, generator.KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLLMGenerator_SuggestChoices(t *testing.T) {
	llm := NewMockLLMAPI()
	llm.SetResponse(`{"choices":[{"text":"Light a torch"},{"text":"Turn back"}]}`)
	g := NewLLMGenerator(llm, discardLogger()).WithTemperature(0.2)

	c, err := g.SuggestChoices(context.Background(), generator.ChoicesRequest{SceneBody: "A cave.", StoryContext: "T"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Light a torch", "Turn back"}, c.Texts())
	assert.Equal(t, 0.2, llm.GetCalls()[0].Temperature)

	llm.SetResponse(`{"choices":[]}`)
	c, err = g.SuggestChoices(context.Background(), generator.ChoicesRequest{SceneBody: "The end."})
	require.NoError(t, err, "zero choices is a valid dead end")
	assert.Empty(t, c.Texts())

	llm.SetResponse(`{"options":["a"]}`)
	_, err = g.SuggestChoices(context.Background(), generator.ChoicesRequest{SceneBody: "x"})
	assert.True(t, generator.IsMalformed(err))
}

func TestLLMGenerator_ImproveText(t *testing.T) {
	llm := NewMockLLMAPI()
	llm.SetResponse(`{"improvedBody":"The door creaks open."}`)
	g := NewLLMGenerator(llm, discardLogger())

	long := strings.Repeat("word ", 2000)
	out, err := g.ImproveText(context.Background(), long)
	require.NoError(t, err)
	assert.Equal(t, "The door creaks open.", out.ImprovedBody)
	assert.Equal(t, strings.TrimSpace(long), llm.GetCalls()[0].UserPrompt, "the whole body is sent for rewriting")

	llm.SetResponse(`{"improved":"x"}`)
	_, err = g.ImproveText(context.Background(), "x")
	assert.True(t, generator.IsMalformed(err))

	_, err = g.ImproveText(context.Background(), " ")
	assert.Error(t, err)
}

func TestLLMGenerator_EmptyBodyNeverReachesModel(t *testing.T) {
	llm := NewMockLLMAPI()
	g := NewLLMGenerator(llm, discardLogger())

	_, err := g.SuggestChoices(context.Background(), generator.ChoicesRequest{StoryContext: "T"})
	assert.ErrorIs(t, err, generator.ErrInvalidRequest)
	assert.ErrorIs(t, err, prompts.ErrEmptyBody)

	_, err = g.ImproveText(context.Background(), "   ")
	assert.ErrorIs(t, err, generator.ErrInvalidRequest)
	assert.False(t, generator.IsMalformed(err))

	assert.Empty(t, llm.GetCalls())
}

func TestInstrumentedLLM(t *testing.T) {
	llm := NewMockLLMAPI()
	inst := NewInstrumentedLLM(llm, "test")

	okBefore := testutil.ToFloat64(llmRequestsTotal.WithLabelValues("test", "ok"))
	statusBefore := testutil.ToFloat64(llmRequestsTotal.WithLabelValues("test", "status"))

	_, err := inst.Complete(context.Background(), "s", "u", 0.7)
	require.NoError(t, err)

	llm.SetCompleteError(generator.NewError("op", generator.KindStatus, errors.New("HTTP 500")))
	_, err = inst.Complete(context.Background(), "s", "u", 0.7)
	require.Error(t, err)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(llmRequestsTotal.WithLabelValues("test", "ok")))
	assert.Equal(t, statusBefore+1, testutil.ToFloat64(llmRequestsTotal.WithLabelValues("test", "status")))

	llm.SetPingError(errors.New("down"))
	assert.Error(t, inst.Ping(context.Background()))
}
