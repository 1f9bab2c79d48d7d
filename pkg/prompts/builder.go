package prompts

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyBody is returned by builds that need a scene body and got a blank one.
var ErrEmptyBody = errors.New("scene body is required")

// Prompt is a system/user pair ready to send to a model.
type Prompt struct {
	System      string
	User        string
	Temperature float64
}

// Builder constructs generator prompts using a fluent interface.
type Builder struct {
	storyTitle       string
	storyDescription string
	sceneBody        string
	summary          string
	action           string
	storyContext     string
	maxBodyLength    int
}

// New creates a new prompt builder with default settings.
func New() *Builder {
	return &Builder{
		maxBodyLength: 4000, // runes of scene body sent to the model
	}
}

// WithStory sets the story title and description.
func (b *Builder) WithStory(title, description string) *Builder {
	b.storyTitle = title
	b.storyDescription = description
	return b
}

// WithSceneBody sets the body of the scene being continued, extended or rewritten.
func (b *Builder) WithSceneBody(body string) *Builder {
	b.sceneBody = body
	return b
}

// WithSummary sets the outline of the story so far.
func (b *Builder) WithSummary(summary string) *Builder {
	b.summary = summary
	return b
}

// WithAction sets the player's free-text action.
func (b *Builder) WithAction(action string) *Builder {
	b.action = action
	return b
}

// WithStoryContext sets free-form context for choice suggestions.
func (b *Builder) WithStoryContext(ctx string) *Builder {
	b.storyContext = ctx
	return b
}

// WithMaxBodyLength caps how much of the scene body is sent.
func (b *Builder) WithMaxBodyLength(n int) *Builder {
	b.maxBodyLength = n
	return b
}

// BuildScene returns the prompt for suggesting the next scene.
func (b *Builder) BuildScene() (Prompt, error) {
	if strings.TrimSpace(b.storyTitle) == "" && strings.TrimSpace(b.sceneBody) == "" {
		return Prompt{}, fmt.Errorf("story title or scene body is required")
	}

	var u strings.Builder
	section(&u, "Story title", b.storyTitle)
	section(&u, "Story description", b.storyDescription)
	section(&u, "Story so far", b.summary)
	if body := b.body(); body != "" {
		section(&u, "Current scene", body)
	} else {
		section(&u, "Current scene", "(none yet, write the opening scene)")
	}
	if action := strings.TrimSpace(b.action); action != "" {
		section(&u, "Player action", action)
		u.WriteString("Write the scene that follows from the player's action.")
	} else {
		u.WriteString("Write the next scene.")
	}

	return Prompt{System: SceneSystemPrompt, User: u.String(), Temperature: SceneTemperature}, nil
}

// BuildChoices returns the prompt for suggesting choices for a scene.
func (b *Builder) BuildChoices() (Prompt, error) {
	body := b.body()
	if body == "" {
		return Prompt{}, ErrEmptyBody
	}

	var u strings.Builder
	section(&u, "Story context", b.storyContext)
	section(&u, "Scene", body)
	u.WriteString("Propose the choices for this scene.")

	return Prompt{System: ChoicesSystemPrompt, User: u.String(), Temperature: ChoicesTemperature}, nil
}

// BuildImprove returns the prompt for rewriting a scene body.
func (b *Builder) BuildImprove() (Prompt, error) {
	body := b.body()
	if body == "" {
		return Prompt{}, ErrEmptyBody
	}
	return Prompt{System: ImproveSystemPrompt, User: body, Temperature: ImproveTemperature}, nil
}

func (b *Builder) body() string {
	body := strings.TrimSpace(b.sceneBody)
	if b.maxBodyLength <= 0 {
		return body
	}
	r := []rune(body)
	if len(r) <= b.maxBodyLength {
		return body
	}
	// keep the end of the scene, it is what the next scene continues from
	return "..." + string(r[len(r)-b.maxBodyLength:])
}

func section(w *strings.Builder, heading, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	fmt.Fprintf(w, "### %s:\n%s\n\n", heading, content)
}
