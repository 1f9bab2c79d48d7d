package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/storyweaver/pkg/story"
)

// GraphResponse describes the link structure of a story.
type GraphResponse struct {
	StoryID      string       `json:"story_id"`
	StartSceneID string       `json:"start_scene_id,omitempty"`
	StartValid   bool         `json:"start_valid"`
	Edges        []story.Edge `json:"edges"`
	Unreachable  []string     `json:"unreachable"`
	Endings      []string     `json:"endings"`
}

// GraphHandler serves GET /v1/stories/{storyID}/graph.
type GraphHandler struct {
	store  *story.Store
	logger *slog.Logger
}

func NewGraphHandler(store *story.Store, logger *slog.Logger) *GraphHandler {
	return &GraphHandler{store: store, logger: logger}
}

func (h *GraphHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, h.logger, "GET")
		return
	}
	storyID := r.PathValue("storyID")
	st, ok := h.store.GetStory(storyID)
	if !ok {
		writeDomainError(w, h.logger, &story.NotFoundError{Kind: story.KindStory, ID: storyID})
		return
	}

	resp := GraphResponse{
		StoryID:      st.ID,
		StartSceneID: st.StartSceneID,
		StartValid:   st.HasScene(st.StartSceneID),
		Edges:        story.Edges(st),
		Unreachable:  story.Unreachable(st),
		Endings:      story.Endings(st),
	}
	if resp.Unreachable == nil {
		resp.Unreachable = []string{}
	}
	if resp.Endings == nil {
		resp.Endings = []string{}
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}
