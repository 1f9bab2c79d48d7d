// Package playback walks a story graph for a player and splices
// generated scenes into it.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/storyweaver/pkg/generator"
	"github.com/jwebster45206/storyweaver/pkg/story"
)

// DefaultTimeout bounds every generation.
const DefaultTimeout = 60 * time.Second

// Engine plays stories from a Store and writes generated scenes back to it.
type Engine struct {
	store   *story.Store
	gen     generator.Generator
	logger  *slog.Logger
	timeout time.Duration

	// one outstanding editor generation per scene
	sceneLocks sync.Map
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the generation timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine. gen may be nil, in which case only
// choice-driven playback is available.
func NewEngine(store *story.Store, gen generator.Generator, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		gen:     gen,
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start opens a session at the story's start scene. When the story
// cannot be played the session is still returned, in the cannot-start
// state, together with a *CannotStartError.
func (e *Engine) Start(storyID string) (*Session, error) {
	if _, ok := e.store.GetStory(storyID); !ok {
		return nil, &story.NotFoundError{Kind: story.KindStory, ID: storyID}
	}

	s := &Session{
		id:      uuid.NewString(),
		storyID: storyID,
		engine:  e,
		gen:     semaphore.NewWeighted(1),
	}
	if err := s.Restart(); err != nil {
		return s, err
	}
	return s, nil
}

// SuggestNextScene asks the generator for a scene that follows fromSceneID
// and links it into the story. It is the editor's counterpart of
// Session.CustomAction.
func (e *Engine) SuggestNextScene(ctx context.Context, storyID, fromSceneID string) (GenerationResult, error) {
	if e.gen == nil {
		return GenerationResult{Err: ErrNoGenerator}, ErrNoGenerator
	}
	sem := e.sceneLock(storyID, fromSceneID)
	if !sem.TryAcquire(1) {
		return busy()
	}
	defer sem.Release(1)

	st, from, err := e.resolve(storyID, fromSceneID)
	if err != nil {
		return GenerationResult{Err: err}, err
	}
	return e.generateAndLink(ctx, st, from, "")
}

// ImproveScene rewrites the scene body with the generator and saves it.
func (e *Engine) ImproveScene(ctx context.Context, storyID, sceneID string) (GenerationResult, error) {
	if e.gen == nil {
		return GenerationResult{Err: ErrNoGenerator}, ErrNoGenerator
	}
	sem := e.sceneLock(storyID, sceneID)
	if !sem.TryAcquire(1) {
		return busy()
	}
	defer sem.Release(1)

	_, sc, err := e.resolve(storyID, sceneID)
	if err != nil {
		return GenerationResult{Err: err}, err
	}
	if strings.TrimSpace(sc.Body) == "" {
		return GenerationResult{Err: ErrEmptyBody}, ErrEmptyBody
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	improved, err := e.gen.ImproveText(ctx, sc.Body)
	if err == nil {
		err = improved.Validate()
	}
	if err != nil {
		e.logger.Warn("Scene improvement failed", "story_id", storyID, "scene_id", sceneID, "error", err)
		return failed(err)
	}

	body := improved.ImprovedBody
	updated, err := e.store.UpdateScene(storyID, sceneID, story.SceneUpdate{Body: &body, IfBody: &sc.Body})
	if errors.Is(err, story.ErrStale) {
		e.logger.Info("Scene edited during improvement, keeping the edit", "story_id", storyID, "scene_id", sceneID)
		return GenerationResult{Status: StatusStale, Err: err}, err
	}
	if err != nil {
		return GenerationResult{Err: err}, err
	}
	return GenerationResult{Status: StatusApplied, Scene: updated, ImprovedBody: body}, nil
}

// generateAndLink runs every generator call first and commits the result
// in one store mutation, so a failure leaves the story untouched.
func (e *Engine) generateAndLink(ctx context.Context, st *story.Story, from *story.Scene, action string) (GenerationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	log := e.logger.With("story_id", st.ID, "scene_id", from.ID)
	start := time.Now()

	suggestion, err := e.gen.SuggestScene(ctx, generator.SceneRequest{
		StoryTitle:       st.Title,
		StoryDescription: st.Description,
		CurrentSceneBody: from.Body,
		StorySummary:     story.Summary(st),
		Action:           action,
	})
	if err == nil {
		err = suggestion.Validate()
	}
	if err != nil {
		log.Warn("Scene generation failed", "error", err, "kind", generator.KindOf(err))
		return failed(err)
	}

	var (
		texts      []string
		choicesErr error
	)
	choices, err := e.gen.SuggestChoices(ctx, generator.ChoicesRequest{
		SceneBody:    suggestion.Body,
		StoryContext: storyContext(st),
	})
	if err != nil {
		choicesErr = err
		log.Warn("Choice suggestion failed, scene will have no choices", "error", err)
	} else {
		texts = choices.Texts()
	}

	title := strings.TrimSpace(suggestion.Title)
	sc, link, err := e.store.LinkNewScene(st.ID, from.ID, story.SceneDraft{
		Title:       title,
		Body:        strings.TrimSpace(suggestion.Body),
		ChoiceTexts: texts,
	}, LinkText(title))
	if err != nil {
		// the story or origin scene was deleted while generating
		return GenerationResult{Err: err}, fmt.Errorf("failed to link generated scene: %w", err)
	}

	log.Info("Generated scene linked",
		"new_scene_id", sc.ID,
		"choices", len(texts),
		"duration", time.Since(start))

	return GenerationResult{
		Status:     StatusApplied,
		Scene:      sc,
		Link:       link,
		ChoicesErr: choicesErr,
	}, nil
}

func (e *Engine) resolve(storyID, sceneID string) (*story.Story, *story.Scene, error) {
	st, ok := e.store.GetStory(storyID)
	if !ok {
		return nil, nil, &story.NotFoundError{Kind: story.KindStory, ID: storyID}
	}
	sc, ok := st.Scene(sceneID)
	if !ok {
		return nil, nil, &story.NotFoundError{Kind: story.KindScene, ID: sceneID}
	}
	return st, sc, nil
}

func (e *Engine) sceneLock(storyID, sceneID string) *semaphore.Weighted {
	v, _ := e.sceneLocks.LoadOrStore(storyID+"/"+sceneID, semaphore.NewWeighted(1))
	return v.(*semaphore.Weighted)
}

// LinkText derives the text of the choice that leads to a generated scene.
func LinkText(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return story.DefaultChoiceText
	}
	// Casers keep state and are not safe for concurrent use.
	// NoLower keeps acronyms such as "NASA" intact.
	return "Go to " + cases.Title(language.English, cases.NoLower).String(title)
}

func storyContext(st *story.Story) string {
	if st.Description == "" {
		return st.Title
	}
	return st.Title + ": " + st.Description
}
