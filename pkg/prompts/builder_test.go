package prompts

import (
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	builder := New()
	if builder == nil {
		t.Fatal("Expected builder to be created, got nil")
	}
	if builder.maxBodyLength != 4000 {
		t.Errorf("Expected default max body length of 4000, got %d", builder.maxBodyLength)
	}
}

func TestBuilder_FluentInterface(t *testing.T) {
	builder := New().
		WithStory("T", "D").
		WithSceneBody("body").
		WithSummary("summary").
		WithAction("jump").
		WithStoryContext("ctx").
		WithMaxBodyLength(10)

	if builder.storyTitle != "T" || builder.storyDescription != "D" {
		t.Error("WithStory did not set story fields")
	}
	if builder.sceneBody != "body" {
		t.Error("WithSceneBody did not set body")
	}
	if builder.summary != "summary" || builder.action != "jump" || builder.storyContext != "ctx" {
		t.Error("optional fields were not set")
	}
	if builder.maxBodyLength != 10 {
		t.Error("WithMaxBodyLength did not set limit")
	}
}

func TestBuildScene(t *testing.T) {
	tests := []struct {
		name         string
		builder      *Builder
		wantErr      bool
		wantContains []string
		wantMissing  []string
	}{
		{
			name:    "nothing to continue",
			builder: New(),
			wantErr: true,
		},
		{
			name:         "editing flow",
			builder:      New().WithStory("The Mine", "A dwarf seeks gold.").WithSceneBody("You stand at the entrance."),
			wantContains: []string{"### Story title:\nThe Mine", "### Current scene:\nYou stand at the entrance.", "Write the next scene."},
			wantMissing:  []string{"Player action", "Story so far"},
		},
		{
			name:         "player action",
			builder:      New().WithStory("The Mine", "").WithSceneBody("A fork.").WithAction("take the left path").WithSummary("2 scenes so far:"),
			wantContains: []string{"### Player action:\ntake the left path", "### Story so far:\n2 scenes so far:", "follows from the player's action"},
			wantMissing:  []string{"Story description"},
		},
		{
			name:         "opening scene",
			builder:      New().WithStory("Empty", ""),
			wantContains: []string{"write the opening scene"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.builder.BuildScene()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if p.System != SceneSystemPrompt {
				t.Error("Expected scene system prompt")
			}
			if p.Temperature != SceneTemperature {
				t.Errorf("Expected temperature %v, got %v", SceneTemperature, p.Temperature)
			}
			for _, s := range tt.wantContains {
				if !strings.Contains(p.User, s) {
					t.Errorf("Expected user prompt to contain %q, got:\n%s", s, p.User)
				}
			}
			for _, s := range tt.wantMissing {
				if strings.Contains(p.User, s) {
					t.Errorf("Expected user prompt not to contain %q", s)
				}
			}
		})
	}
}

func TestBuildChoicesAndImproveRequireBody(t *testing.T) {
	if _, err := New().BuildChoices(); !errors.Is(err, ErrEmptyBody) {
		t.Errorf("Expected ErrEmptyBody from BuildChoices, got %v", err)
	}
	if _, err := New().WithSceneBody("  ").BuildImprove(); !errors.Is(err, ErrEmptyBody) {
		t.Errorf("Expected ErrEmptyBody from BuildImprove, got %v", err)
	}

	p, err := New().WithSceneBody("The door creaks.").WithStoryContext("Haunted house").BuildChoices()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p.System != ChoicesSystemPrompt || !strings.Contains(p.User, "Haunted house") {
		t.Errorf("Unexpected choices prompt: %+v", p)
	}

	p, err = New().WithSceneBody("teh door creeks").BuildImprove()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p.User != "teh door creeks" || p.Temperature != ImproveTemperature {
		t.Errorf("Unexpected improve prompt: %+v", p)
	}
}

func TestBodyKeepsTail(t *testing.T) {
	b := New().WithSceneBody("0123456789abcdef").WithMaxBodyLength(6)
	if got := b.body(); got != "...abcdef" {
		t.Errorf("Expected tail of body, got %q", got)
	}
}
