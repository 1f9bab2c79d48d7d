package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/storyweaver/pkg/story"
)

// CreateStoryRequest is the body of POST /v1/stories.
type CreateStoryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// StoryHandler serves the story collection and individual stories.
//
//	GET    /v1/stories
//	POST   /v1/stories
//	GET    /v1/stories/{storyID}
//	PATCH  /v1/stories/{storyID}
//	DELETE /v1/stories/{storyID}
type StoryHandler struct {
	store  *story.Store
	logger *slog.Logger
}

func NewStoryHandler(store *story.Store, logger *slog.Logger) *StoryHandler {
	return &StoryHandler{store: store, logger: logger}
}

func (h *StoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	storyID := r.PathValue("storyID")
	if storyID == "" {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, h.logger, http.StatusOK, h.store.ListStories())
		case http.MethodPost:
			h.create(w, r)
		default:
			methodNotAllowed(w, r, h.logger, "GET, POST")
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		st, ok := h.store.GetStory(storyID)
		if !ok {
			writeDomainError(w, h.logger, &story.NotFoundError{Kind: story.KindStory, ID: storyID})
			return
		}
		writeJSON(w, h.logger, http.StatusOK, st)
	case http.MethodPatch:
		var upd story.StoryUpdate
		if err := decodeJSON(w, r, &upd); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body.", kindBadRequest)
			return
		}
		st, err := h.store.UpdateStory(storyID, upd)
		if err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		writeJSON(w, h.logger, http.StatusOK, st)
	case http.MethodDelete:
		h.store.DeleteStory(storyID)
		h.logger.Info("Story deleted", "story_id", storyID)
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, h.logger, "GET, PATCH, DELETE")
	}
}

func (h *StoryHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateStoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Debug("Invalid create story request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body.", kindBadRequest)
		return
	}
	st := h.store.CreateStory(req.Title, req.Description)
	h.logger.Info("Story created", "story_id", st.ID, "title", st.Title)
	writeJSON(w, h.logger, http.StatusCreated, st)
}

// CreateSceneRequest is the body of POST /v1/stories/{storyID}/scenes.
type CreateSceneRequest struct {
	Title string `json:"title"`
}

// SceneHandler serves the scenes of one story.
//
//	POST   /v1/stories/{storyID}/scenes
//	GET    /v1/stories/{storyID}/scenes/{sceneID}
//	PATCH  /v1/stories/{storyID}/scenes/{sceneID}
//	DELETE /v1/stories/{storyID}/scenes/{sceneID}
type SceneHandler struct {
	store  *story.Store
	logger *slog.Logger
}

func NewSceneHandler(store *story.Store, logger *slog.Logger) *SceneHandler {
	return &SceneHandler{store: store, logger: logger}
}

func (h *SceneHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	storyID := r.PathValue("storyID")
	sceneID := r.PathValue("sceneID")

	if sceneID == "" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, h.logger, "POST")
			return
		}
		var req CreateSceneRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body.", kindBadRequest)
			return
		}
		sc, err := h.store.CreateScene(storyID, req.Title)
		if err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		h.logger.Info("Scene created", "story_id", storyID, "scene_id", sc.ID)
		writeJSON(w, h.logger, http.StatusCreated, sc)
		return
	}

	switch r.Method {
	case http.MethodGet:
		st, ok := h.store.GetStory(storyID)
		if !ok {
			writeDomainError(w, h.logger, &story.NotFoundError{Kind: story.KindStory, ID: storyID})
			return
		}
		sc, ok := st.Scene(sceneID)
		if !ok {
			writeDomainError(w, h.logger, &story.NotFoundError{Kind: story.KindScene, ID: sceneID})
			return
		}
		writeJSON(w, h.logger, http.StatusOK, sc)
	case http.MethodPatch:
		var upd story.SceneUpdate
		if err := decodeJSON(w, r, &upd); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body.", kindBadRequest)
			return
		}
		sc, err := h.store.UpdateScene(storyID, sceneID, upd)
		if err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		writeJSON(w, h.logger, http.StatusOK, sc)
	case http.MethodDelete:
		if err := h.store.DeleteScene(storyID, sceneID); err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		h.logger.Info("Scene deleted", "story_id", storyID, "scene_id", sceneID)
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, h.logger, "GET, PATCH, DELETE")
	}
}

// CreateChoiceRequest is the body of POST .../scenes/{sceneID}/choices.
type CreateChoiceRequest struct {
	Text string `json:"text"`
}

// ChoiceHandler serves the choices of one scene.
//
//	POST   /v1/stories/{storyID}/scenes/{sceneID}/choices
//	PATCH  /v1/stories/{storyID}/scenes/{sceneID}/choices/{choiceID}
//	DELETE /v1/stories/{storyID}/scenes/{sceneID}/choices/{choiceID}
type ChoiceHandler struct {
	store  *story.Store
	logger *slog.Logger
}

func NewChoiceHandler(store *story.Store, logger *slog.Logger) *ChoiceHandler {
	return &ChoiceHandler{store: store, logger: logger}
}

func (h *ChoiceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	storyID := r.PathValue("storyID")
	sceneID := r.PathValue("sceneID")
	choiceID := r.PathValue("choiceID")

	if choiceID == "" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, h.logger, "POST")
			return
		}
		var req CreateChoiceRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body.", kindBadRequest)
			return
		}
		ch, err := h.store.AddChoice(storyID, sceneID, req.Text)
		if err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		writeJSON(w, h.logger, http.StatusCreated, ch)
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var upd story.ChoiceUpdate
		if err := decodeJSON(w, r, &upd); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body.", kindBadRequest)
			return
		}
		ch, err := h.store.UpdateChoice(storyID, sceneID, choiceID, upd)
		if err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		writeJSON(w, h.logger, http.StatusOK, ch)
	case http.MethodDelete:
		if err := h.store.DeleteChoice(storyID, sceneID, choiceID); err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, h.logger, "PATCH, DELETE")
	}
}
