package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/storyweaver/pkg/generator"
)

func newOpenAITestServer(t *testing.T, handler http.HandlerFunc) *OpenAIService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIService("test-key", "test-model", srv.URL+"/v1", discardLogger())
}

func TestOpenAIService_Complete(t *testing.T) {
	var got openai.ChatCompletionRequest
	service := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"test-model","choices":[{"index":0,"message":{"role":"assistant","content":"{\"choices\":[]}"},"finish_reason":"stop"}],"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`))
	})

	text, err := service.Complete(context.Background(), "sys", "usr", 0.5)
	require.NoError(t, err)
	assert.Equal(t, `{"choices":[]}`, text)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "sys", got.Messages[0].Content)
	assert.Equal(t, "usr", got.Messages[1].Content)
	assert.InDelta(t, 0.5, got.Temperature, 0.0001)
}

func TestOpenAIService_StatusError(t *testing.T) {
	service := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	})

	_, err := service.Complete(context.Background(), "s", "u", 0.7)
	require.Error(t, err)
	assert.Equal(t, generator.KindStatus, generator.KindOf(err))
}

func TestOpenAIService_EmptyReply(t *testing.T) {
	service := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[]}`))
	})

	_, err := service.Complete(context.Background(), "s", "u", 0.7)
	assert.True(t, generator.IsMalformed(err))
}

func TestOpenAIService_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	service := NewOpenAIService("k", "", url+"/v1", discardLogger())
	assert.Equal(t, DefaultOpenAIModel, service.modelName)

	_, err := service.Complete(context.Background(), "s", "u", 0.7)
	assert.Equal(t, generator.KindTransport, generator.KindOf(err))
	assert.Error(t, service.Ping(context.Background()))
}

func TestOpenAIService_Ping(t *testing.T) {
	service := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	})
	assert.NoError(t, service.Ping(context.Background()))
}
