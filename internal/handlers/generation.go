package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jwebster45206/storyweaver/pkg/generator"
	"github.com/jwebster45206/storyweaver/pkg/playback"
)

// GenerationResponse wraps an applied generation. ChoicesError is set when
// the scene was linked but its choices could not be suggested.
type GenerationResponse struct {
	playback.GenerationResult
	ChoicesError string `json:"choices_error,omitempty"`
}

func newGenerationResponse(res playback.GenerationResult) GenerationResponse {
	out := GenerationResponse{GenerationResult: res}
	if res.ChoicesErr != nil {
		out.ChoicesError = res.ChoicesErr.Error()
	}
	return out
}

// SceneGenerationHandler runs the editor's generation flows on one scene.
//
//	POST /v1/stories/{storyID}/scenes/{sceneID}/suggest
//	POST /v1/stories/{storyID}/scenes/{sceneID}/improve
type SceneGenerationHandler struct {
	engine *playback.Engine
	logger *slog.Logger
}

func NewSceneGenerationHandler(engine *playback.Engine, logger *slog.Logger) *SceneGenerationHandler {
	return &SceneGenerationHandler{engine: engine, logger: logger}
}

func (h *SceneGenerationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, h.logger, "POST")
		return
	}
	storyID := r.PathValue("storyID")
	sceneID := r.PathValue("sceneID")

	var (
		res    playback.GenerationResult
		err    error
		status = http.StatusOK
	)
	switch {
	case strings.HasSuffix(r.URL.Path, "/suggest"):
		res, err = h.engine.SuggestNextScene(r.Context(), storyID, sceneID)
		status = http.StatusCreated
	case strings.HasSuffix(r.URL.Path, "/improve"):
		res, err = h.engine.ImproveScene(r.Context(), storyID, sceneID)
	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown generation endpoint.", kindNotFound)
		return
	}
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, status, newGenerationResponse(res))
}

// ImproveRequest is the body of POST /v1/generate/improve.
type ImproveRequest struct {
	SceneBody string `json:"scene_body"`
}

// GenerateHandler exposes the generator without touching any story.
//
//	POST /v1/generate/scene
//	POST /v1/generate/choices
//	POST /v1/generate/improve
type GenerateHandler struct {
	gen     generator.Generator
	timeout time.Duration
	logger  *slog.Logger
}

// NewGenerateHandler bounds every call by timeout, or by
// playback.DefaultTimeout when timeout is not positive.
func NewGenerateHandler(gen generator.Generator, timeout time.Duration, logger *slog.Logger) *GenerateHandler {
	if timeout <= 0 {
		timeout = playback.DefaultTimeout
	}
	return &GenerateHandler{gen: gen, timeout: timeout, logger: logger}
}

func (h *GenerateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, h.logger, "POST")
		return
	}
	if h.gen == nil {
		writeDomainError(w, h.logger, playback.ErrNoGenerator)
		return
	}

	op := r.PathValue("op")
	h.logger.Debug("Generate request", "op", op)

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	switch op {
	case "scene":
		var req generator.SceneRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body.", kindBadRequest)
			return
		}
		s, err := h.gen.SuggestScene(ctx, req)
		if err == nil {
			err = s.Validate()
		}
		if err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		writeJSON(w, h.logger, http.StatusOK, s)
	case "choices":
		var req generator.ChoicesRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body.", kindBadRequest)
			return
		}
		if strings.TrimSpace(req.SceneBody) == "" {
			writeError(w, h.logger, http.StatusBadRequest, "scene_body is required.", kindBadRequest)
			return
		}
		c, err := h.gen.SuggestChoices(ctx, req)
		if err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		writeJSON(w, h.logger, http.StatusOK, c)
	case "improve":
		var req ImproveRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body.", kindBadRequest)
			return
		}
		if strings.TrimSpace(req.SceneBody) == "" {
			writeError(w, h.logger, http.StatusBadRequest, "scene_body is required.", kindBadRequest)
			return
		}
		t, err := h.gen.ImproveText(ctx, req.SceneBody)
		if err == nil {
			err = t.Validate()
		}
		if err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		writeJSON(w, h.logger, http.StatusOK, t)
	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown generate operation: "+op, kindNotFound)
	}
}
