package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/storyweaver/internal/services"
	"github.com/jwebster45206/storyweaver/internal/storage"
	"github.com/jwebster45206/storyweaver/pkg/generator"
	"github.com/jwebster45206/storyweaver/pkg/playback"
	"github.com/jwebster45206/storyweaver/pkg/story"
)

// Deps is everything the HTTP API needs. Generator, LLM and Redis may be
// nil; the routes that depend on them degrade or are not mounted.
type Deps struct {
	Store     *story.Store
	Sessions  *playback.Sessions
	Generator generator.Generator
	LLM       services.LLMService
	Slot      storage.Slot
	Redis     *redis.Client
	Logger    *slog.Logger

	// GenTimeout bounds /v1/generate calls; zero means playback.DefaultTimeout.
	GenTimeout time.Duration
}

// Register mounts every route on mux.
func Register(mux *http.ServeMux, d Deps) {
	stories := NewStoryHandler(d.Store, d.Logger)
	scenes := NewSceneHandler(d.Store, d.Logger)
	choices := NewChoiceHandler(d.Store, d.Logger)
	sceneGen := NewSceneGenerationHandler(d.Sessions.Engine(), d.Logger)
	play := NewPlayHandler(d.Sessions, d.Logger)

	mux.Handle("/health", NewHealthHandler(d.Slot, d.LLM, d.Logger))
	mux.Handle("/metrics", promhttp.Handler())

	mux.Handle("/v1/stories", stories)
	mux.Handle("/v1/stories/{storyID}", stories)
	mux.Handle("/v1/stories/{storyID}/graph", NewGraphHandler(d.Store, d.Logger))
	mux.Handle("/v1/stories/{storyID}/scenes", scenes)
	mux.Handle("/v1/stories/{storyID}/scenes/{sceneID}", scenes)
	mux.Handle("/v1/stories/{storyID}/scenes/{sceneID}/suggest", sceneGen)
	mux.Handle("/v1/stories/{storyID}/scenes/{sceneID}/improve", sceneGen)
	mux.Handle("/v1/stories/{storyID}/scenes/{sceneID}/choices", choices)
	mux.Handle("/v1/stories/{storyID}/scenes/{sceneID}/choices/{choiceID}", choices)

	mux.Handle("/v1/generate/{op}", NewGenerateHandler(d.Generator, d.GenTimeout, d.Logger))

	mux.Handle("/v1/play", play)
	mux.Handle("/v1/play/{sessionID}", play)
	mux.Handle("/v1/play/{sessionID}/{action}", play)

	if d.Redis != nil {
		mux.Handle("/v1/events/stories/{storyID}", NewEventsHandler(d.Redis, d.Store, d.Logger))
	}
}
