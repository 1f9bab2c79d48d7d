package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jwebster45206/storyweaver/internal/handlers"
	"github.com/jwebster45206/storyweaver/pkg/playback"
	"github.com/jwebster45206/storyweaver/pkg/story"
)

// apiError is a non-2xx reply from the API.
type apiError struct {
	Status int
	Msg    string
	Kind   string
}

func (e *apiError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s (%s)", e.Msg, e.Kind)
	}
	return e.Msg
}

type apiClient struct {
	client  *http.Client
	baseURL string
}

func newAPIClient(client *http.Client, baseURL string) *apiClient {
	return &apiClient{client: client, baseURL: baseURL}
}

// testConnection accepts a degraded API: playback works without an LLM.
func (a *apiClient) testConnection(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusServiceUnavailable
}

func (a *apiClient) do(ctx context.Context, method, path string, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != want {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil || errorResp.Error == "" {
			return &apiError{Status: resp.StatusCode, Msg: fmt.Sprintf("API returned status %d: %s", resp.StatusCode, string(data))}
		}
		return &apiError{Status: resp.StatusCode, Msg: errorResp.Error, Kind: errorResp.Kind}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (a *apiClient) listStories(ctx context.Context) ([]story.Story, error) {
	var stories []story.Story
	err := a.do(ctx, http.MethodGet, "/v1/stories", nil, http.StatusOK, &stories)
	return stories, err
}

func (a *apiClient) startPlay(ctx context.Context, storyID string) (*playback.View, error) {
	var view playback.View
	if err := a.do(ctx, http.MethodPost, "/v1/play", handlers.StartPlayRequest{StoryID: storyID}, http.StatusCreated, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (a *apiClient) choose(ctx context.Context, sessionID, choiceID string) (*handlers.ChooseResponse, error) {
	var resp handlers.ChooseResponse
	if err := a.do(ctx, http.MethodPost, "/v1/play/"+sessionID+"/choose", handlers.ChooseRequest{ChoiceID: choiceID}, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *apiClient) action(ctx context.Context, sessionID, action string) (*handlers.ActionResponse, error) {
	var resp handlers.ActionResponse
	if err := a.do(ctx, http.MethodPost, "/v1/play/"+sessionID+"/action", handlers.ActionRequest{Action: action}, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *apiClient) restart(ctx context.Context, sessionID string) (*playback.View, error) {
	var view playback.View
	if err := a.do(ctx, http.MethodPost, "/v1/play/"+sessionID+"/restart", nil, http.StatusOK, &view); err != nil {
		return nil, err
	}
	return &view, nil
}
