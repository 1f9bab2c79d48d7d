// Package generator defines the contract between StoryWeaver and the
// external text generator that suggests scenes, choices and rewrites.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Generator is the external AI text service.
type Generator interface {
	// SuggestScene proposes the next scene after the current one.
	SuggestScene(ctx context.Context, req SceneRequest) (*SceneSuggestion, error)

	// SuggestChoices proposes choice texts for a scene. Two to four are
	// expected but any number, including zero, is accepted.
	SuggestChoices(ctx context.Context, req ChoicesRequest) (*ChoicesSuggestion, error)

	// ImproveText rewrites a scene body.
	ImproveText(ctx context.Context, sceneBody string) (*ImprovedText, error)
}

type SceneRequest struct {
	StoryTitle       string `json:"story_title"`
	StoryDescription string `json:"story_description"`
	CurrentSceneBody string `json:"current_scene_body"`
	StorySummary     string `json:"story_summary,omitempty"`
	// Action is the player's free-text action, empty in the editing flow.
	Action string `json:"action,omitempty"`
}

type SceneSuggestion struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Validate enforces the one precondition placed on generated scenes:
// title and body are both present and non-blank.
func (s *SceneSuggestion) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: empty scene suggestion", ErrMalformedPayload)
	}
	var missing []string
	if strings.TrimSpace(s.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(s.Body) == "" {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMalformedPayload, strings.Join(missing, " and "))
	}
	return nil
}

type ChoicesRequest struct {
	SceneBody    string `json:"scene_body"`
	StoryContext string `json:"story_context,omitempty"`
}

type ChoiceSuggestion struct {
	Text string `json:"text"`
}

type ChoicesSuggestion struct {
	Choices []ChoiceSuggestion `json:"choices"`
}

// Texts returns the non-blank choice texts in order.
func (c *ChoicesSuggestion) Texts() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.Choices))
	for _, ch := range c.Choices {
		if t := strings.TrimSpace(ch.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

type ImprovedText struct {
	ImprovedBody string `json:"improvedBody"`
}

// Validate reports a missing improved body.
func (t *ImprovedText) Validate() error {
	if t == nil || strings.TrimSpace(t.ImprovedBody) == "" {
		return fmt.Errorf("%w: missing improvedBody", ErrMalformedPayload)
	}
	return nil
}

// ErrMalformedPayload is matched by every error of KindMalformed.
var ErrMalformedPayload = errors.New("malformed generator payload")

// ErrInvalidRequest is returned before any upstream call when the request
// itself cannot be turned into a prompt.
var ErrInvalidRequest = errors.New("invalid generator request")

// Kind classifies a generator failure.
type Kind string

const (
	// KindTransport covers unreachable upstreams, timeouts and cancellation.
	KindTransport Kind = "transport"
	// KindStatus is a non-success response from the upstream.
	KindStatus Kind = "status"
	// KindMalformed is a response that does not parse or lacks a required field.
	KindMalformed Kind = "malformed"
)

// Error is returned by every failing Generator call.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("generator %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return e.Kind == KindMalformed && target == ErrMalformedPayload
}

// NewError wraps err with an operation and kind.
func NewError(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf returns the kind of a generator failure. Errors that did not
// come from a generator are treated as transport failures.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	if errors.Is(err, ErrMalformedPayload) {
		return KindMalformed
	}
	return KindTransport
}

// IsMalformed reports whether err is a malformed payload failure.
func IsMalformed(err error) bool {
	return err != nil && KindOf(err) == KindMalformed
}
