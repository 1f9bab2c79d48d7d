package playback

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/jwebster45206/storyweaver/pkg/story"
)

// Session is one player's walk through a story.
type Session struct {
	id      string
	storyID string
	engine  *Engine

	mu          sync.Mutex
	current     string
	cannotStart *CannotStartError

	// single-flight for CustomAction
	gen *semaphore.Weighted
}

// ChoiceView is a choice as the player sees it.
type ChoiceView struct {
	story.Choice
	// Enabled is false for unlinked choices and choices whose target was deleted.
	Enabled bool `json:"enabled"`
}

// View is everything a presentation layer needs to render the session.
type View struct {
	SessionID   string       `json:"session_id"`
	StoryID     string       `json:"story_id"`
	StoryTitle  string       `json:"story_title"`
	Scene       *story.Scene `json:"scene,omitempty"`
	Choices     []ChoiceView `json:"choices"`
	Ending      bool         `json:"ending"`
	CannotStart bool         `json:"cannot_start"`
	Message     string       `json:"message,omitempty"`
	// Words is the scene body split on whitespace, for word-level highlighting.
	Words []string `json:"words,omitempty"`
}

func (s *Session) ID() string      { return s.id }
func (s *Session) StoryID() string { return s.storyID }

// CurrentSceneID returns the scene the player is at, or "" when playback
// could not start.
func (s *Session) CurrentSceneID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Restart moves the player back to the start scene.
func (s *Session) Restart() error {
	st, ok := s.engine.store.GetStory(s.storyID)
	if !ok {
		return &story.NotFoundError{Kind: story.KindStory, ID: s.storyID}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = ""
	s.cannotStart = nil
	switch {
	case st.StartSceneID == "":
		s.cannotStart = &CannotStartError{StoryID: s.storyID, Reason: reasonNoStart}
	case !st.HasScene(st.StartSceneID):
		s.cannotStart = &CannotStartError{StoryID: s.storyID, Reason: reasonMissingStart}
	default:
		s.current = st.StartSceneID
		return nil
	}
	return s.cannotStart
}

// Choose follows a choice of the current scene. It reports whether the
// player moved. Unlinked choices and choices whose target no longer
// exists are inert: nothing changes and no error is returned.
func (s *Session) Choose(choiceID string) (bool, error) {
	st, ok := s.engine.store.GetStory(s.storyID)
	if !ok {
		return false, &story.NotFoundError{Kind: story.KindStory, ID: s.storyID}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cannotStart != nil {
		return false, s.cannotStart
	}
	sc, ok := st.Scene(s.current)
	if !ok {
		return false, &CannotStartError{StoryID: s.storyID, Reason: reasonLostScene}
	}
	ch, ok := sc.Choice(choiceID)
	if !ok {
		return false, &story.NotFoundError{Kind: story.KindChoice, ID: choiceID}
	}
	if !st.HasScene(ch.TargetSceneID) {
		s.engine.logger.Debug("Ignoring inert choice",
			"session_id", s.id,
			"choice_id", choiceID,
			"target_scene_id", ch.TargetSceneID)
		return false, nil
	}
	s.current = ch.TargetSceneID
	return true, nil
}

// CustomAction generates a scene that follows from the player's free-text
// action, links it to the current scene and moves the player there.
// Only one action may be outstanding per session.
func (s *Session) CustomAction(ctx context.Context, action string) (GenerationResult, error) {
	action = strings.TrimSpace(action)
	if action == "" {
		return GenerationResult{Err: ErrEmptyAction}, ErrEmptyAction
	}
	if s.engine.gen == nil {
		return GenerationResult{Err: ErrNoGenerator}, ErrNoGenerator
	}
	if !s.gen.TryAcquire(1) {
		return busy()
	}
	defer s.gen.Release(1)

	s.mu.Lock()
	if s.cannotStart != nil {
		err := s.cannotStart
		s.mu.Unlock()
		return GenerationResult{Err: err}, err
	}
	from := s.current
	s.mu.Unlock()

	// shared with the editor flows so one scene never gets two links at once
	sem := s.engine.sceneLock(s.storyID, from)
	if !sem.TryAcquire(1) {
		return busy()
	}
	defer sem.Release(1)

	st, sc, err := s.engine.resolve(s.storyID, from)
	if err != nil {
		return GenerationResult{Err: err}, err
	}

	res, err := s.engine.generateAndLink(ctx, st, sc, action)
	if err != nil {
		return res, err
	}

	s.mu.Lock()
	s.current = res.Scene.ID
	s.mu.Unlock()
	return res, nil
}

// View renders the current state of the session.
func (s *Session) View() (View, error) {
	st, ok := s.engine.store.GetStory(s.storyID)
	if !ok {
		return View{}, &story.NotFoundError{Kind: story.KindStory, ID: s.storyID}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		SessionID:  s.id,
		StoryID:    st.ID,
		StoryTitle: st.Title,
		Choices:    []ChoiceView{},
	}
	if s.cannotStart != nil {
		v.CannotStart = true
		v.Message = s.cannotStart.Reason
		return v, nil
	}
	sc, ok := st.Scene(s.current)
	if !ok {
		v.CannotStart = true
		v.Message = reasonLostScene
		return v, nil
	}

	v.Scene = sc
	for _, ch := range sc.Choices {
		v.Choices = append(v.Choices, ChoiceView{Choice: ch, Enabled: st.HasScene(ch.TargetSceneID)})
	}
	v.Ending = sc.IsEnding()
	if v.Ending {
		v.Message = "The End."
	}
	v.Words = strings.Fields(sc.Body)
	return v, nil
}
