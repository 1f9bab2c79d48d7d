package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/storyweaver/pkg/playback"
	"github.com/jwebster45206/storyweaver/pkg/story"
)

// StartPlayRequest is the body of POST /v1/play.
type StartPlayRequest struct {
	StoryID string `json:"story_id"`
}

// ChooseRequest is the body of POST /v1/play/{sessionID}/choose.
type ChooseRequest struct {
	ChoiceID string `json:"choice_id"`
}

// ActionRequest is the body of POST /v1/play/{sessionID}/action.
type ActionRequest struct {
	Action string `json:"action"`
}

// ChooseResponse reports whether the player moved along with the new view.
type ChooseResponse struct {
	Moved bool          `json:"moved"`
	View  playback.View `json:"view"`
}

// ActionResponse carries the applied generation and the new view.
type ActionResponse struct {
	Result GenerationResponse `json:"result"`
	View   playback.View      `json:"view"`
}

// PlayHandler serves playback sessions.
//
//	POST   /v1/play
//	GET    /v1/play/{sessionID}
//	DELETE /v1/play/{sessionID}
//	POST   /v1/play/{sessionID}/{action}   (choose, action, restart)
type PlayHandler struct {
	sessions *playback.Sessions
	logger   *slog.Logger
}

func NewPlayHandler(sessions *playback.Sessions, logger *slog.Logger) *PlayHandler {
	return &PlayHandler{sessions: sessions, logger: logger}
}

func (h *PlayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, h.logger, "POST")
			return
		}
		h.start(w, r)
		return
	}

	sess, ok := h.sessions.Get(sessionID)
	if !ok {
		writeError(w, h.logger, http.StatusNotFound, "session not found: "+sessionID, kindNotFound)
		return
	}

	action := r.PathValue("action")
	if action == "" {
		switch r.Method {
		case http.MethodGet:
			h.writeView(w, sess, http.StatusOK)
		case http.MethodDelete:
			h.sessions.Delete(sessionID)
			w.WriteHeader(http.StatusNoContent)
		default:
			methodNotAllowed(w, r, h.logger, "GET, DELETE")
		}
		return
	}

	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, h.logger, "POST")
		return
	}
	switch action {
	case "choose":
		h.choose(w, r, sess)
	case "action":
		h.customAction(w, r, sess)
	case "restart":
		if err := sess.Restart(); err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		h.writeView(w, sess, http.StatusOK)
	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown play action: "+action, kindNotFound)
	}
}

func (h *PlayHandler) start(w http.ResponseWriter, r *http.Request) {
	var req StartPlayRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body.", kindBadRequest)
		return
	}
	if req.StoryID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "story_id is required.", kindBadRequest)
		return
	}

	sess, err := h.sessions.Start(req.StoryID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.logger.Info("Playback started", "session_id", sess.ID(), "story_id", req.StoryID)
	h.writeView(w, sess, http.StatusCreated)
}

func (h *PlayHandler) choose(w http.ResponseWriter, r *http.Request, sess *playback.Session) {
	var req ChooseRequest
	if err := decodeJSON(w, r, &req); err != nil || req.ChoiceID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "choice_id is required.", kindBadRequest)
		return
	}
	moved, err := sess.Choose(req.ChoiceID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	view, err := sess.View()
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, ChooseResponse{Moved: moved, View: view})
}

func (h *PlayHandler) customAction(w http.ResponseWriter, r *http.Request, sess *playback.Session) {
	var req ActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body.", kindBadRequest)
		return
	}
	res, err := sess.CustomAction(r.Context(), req.Action)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	view, err := sess.View()
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, ActionResponse{Result: newGenerationResponse(res), View: view})
}

func (h *PlayHandler) writeView(w http.ResponseWriter, sess *playback.Session, status int) {
	view, err := sess.View()
	if err != nil {
		// the story was deleted under the session
		if errors.Is(err, story.ErrNotFound) {
			h.sessions.Delete(sess.ID())
		}
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, status, view)
}
