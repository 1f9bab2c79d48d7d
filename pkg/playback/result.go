package playback

import (
	"errors"

	"github.com/jwebster45206/storyweaver/pkg/generator"
	"github.com/jwebster45206/storyweaver/pkg/story"
)

// Status is the outcome of a generation attempt.
type Status string

const (
	StatusApplied         Status = "applied"
	StatusTransportFailed Status = "transport_failed"
	StatusMalformed       Status = "malformed"
	StatusBusy            Status = "busy"
	// StatusStale means the scene was edited while the generator ran and
	// the edit was kept.
	StatusStale Status = "stale"
)

// GenerationResult tells the caller whether anything changed. Only
// StatusApplied results carry graph changes; every other status means
// the story was left exactly as it was.
type GenerationResult struct {
	Status Status `json:"status"`

	// Scene and Link are set when a new scene was linked into the story.
	Scene *story.Scene  `json:"scene,omitempty"`
	Link  *story.Choice `json:"link,omitempty"`

	// ImprovedBody is set by ImproveScene.
	ImprovedBody string `json:"improved_body,omitempty"`

	Err error `json:"-"`

	// ChoicesErr records a failed choice suggestion. The scene was still
	// applied, with no choices of its own.
	ChoicesErr error `json:"-"`
}

// Applied reports whether the attempt changed the story.
func (r GenerationResult) Applied() bool {
	return r.Status == StatusApplied
}

func failed(err error) (GenerationResult, error) {
	if errors.Is(err, generator.ErrInvalidRequest) {
		// rejected before reaching the upstream
		return GenerationResult{Err: err}, err
	}
	status := StatusTransportFailed
	if generator.IsMalformed(err) {
		status = StatusMalformed
	}
	return GenerationResult{Status: status, Err: err}, err
}

func busy() (GenerationResult, error) {
	return GenerationResult{Status: StatusBusy, Err: ErrBusy}, ErrBusy
}
