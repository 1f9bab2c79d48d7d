package playback

import (
	"errors"
	"fmt"
)

var (
	// ErrCannotStart is matched by every CannotStartError.
	ErrCannotStart = errors.New("cannot start playback")
	// ErrBusy is returned when a generation is already running for the same session or scene.
	ErrBusy = errors.New("generation already in progress")
	// ErrNoGenerator is returned by generation paths when no generator is configured.
	ErrNoGenerator = errors.New("no generator configured")
	// ErrEmptyAction is returned for a blank custom action.
	ErrEmptyAction = errors.New("action is required")
	// ErrEmptyBody is returned by ImproveScene for a scene with no body yet.
	ErrEmptyBody = errors.New("scene body is empty; write some text before improving it")
)

// CannotStartError explains why a story cannot be played.
type CannotStartError struct {
	StoryID string
	Reason  string
}

func (e *CannotStartError) Error() string {
	return fmt.Sprintf("cannot start story %s: %s", e.StoryID, e.Reason)
}

func (e *CannotStartError) Is(target error) bool {
	return target == ErrCannotStart
}

const (
	reasonNoStart      = "the story has no start scene; choose one in the editor"
	reasonMissingStart = "the start scene was deleted; choose a new one in the editor"
	reasonLostScene    = "the current scene was deleted; restart to play again"
)
