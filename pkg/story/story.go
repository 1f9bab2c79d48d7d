package story

import "time"

const (
	DefaultSceneTitle  = "New Scene"
	DefaultChoiceText  = "New choice"
	DefaultStoryTitle  = "Untitled Story"
	maxSummaryScenes   = 20
	summaryTitleLength = 60
)

// Choice is a labeled edge from one scene to another.
// An empty TargetSceneID means the choice is unlinked.
type Choice struct {
	ID            string `json:"id" yaml:"id"`
	Text          string `json:"text" yaml:"text"`
	TargetSceneID string `json:"target_scene_id,omitempty" yaml:"target_scene_id,omitempty"`
}

// Linked reports whether the choice names a target scene at all.
// It says nothing about whether that scene still exists.
func (c Choice) Linked() bool {
	return c.TargetSceneID != ""
}

// Scene is one narrative beat with its outgoing choices in display order.
type Scene struct {
	ID      string   `json:"id" yaml:"id"`
	Title   string   `json:"title" yaml:"title"`
	Body    string   `json:"body" yaml:"body"`
	Choices []Choice `json:"choices" yaml:"choices"`
}

// Choice returns the choice with the given ID.
func (s *Scene) Choice(id string) (*Choice, bool) {
	for i := range s.Choices {
		if s.Choices[i].ID == id {
			return &s.Choices[i], true
		}
	}
	return nil, false
}

// IsEnding reports whether the scene has no outgoing choices.
func (s *Scene) IsEnding() bool {
	return len(s.Choices) == 0
}

// Story is the top-level aggregate and the unit of persistence.
// Scenes are kept in creation order; traversal order comes from choice links.
type Story struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Description  string    `json:"description" yaml:"description"`
	Scenes       []Scene   `json:"scenes" yaml:"scenes"`
	StartSceneID string    `json:"start_scene_id,omitempty" yaml:"start_scene_id,omitempty"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"updated_at"`
}

// Scene returns the scene with the given ID.
func (s *Story) Scene(id string) (*Scene, bool) {
	if id == "" {
		return nil, false
	}
	for i := range s.Scenes {
		if s.Scenes[i].ID == id {
			return &s.Scenes[i], true
		}
	}
	return nil, false
}

// HasScene reports whether id resolves to a scene in this story.
func (s *Story) HasScene(id string) bool {
	_, ok := s.Scene(id)
	return ok
}

// StartScene resolves StartSceneID. It returns false when the start is
// unset or points at a deleted scene.
func (s *Story) StartScene() (*Scene, bool) {
	return s.Scene(s.StartSceneID)
}

func (s *Story) sceneIndex(id string) int {
	for i := range s.Scenes {
		if s.Scenes[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the story.
func (s *Story) Clone() *Story {
	if s == nil {
		return nil
	}
	c := *s
	if s.Scenes != nil {
		c.Scenes = make([]Scene, len(s.Scenes))
		for i := range s.Scenes {
			c.Scenes[i] = s.Scenes[i].clone()
		}
	}
	return &c
}

func (s Scene) clone() Scene {
	if s.Choices != nil {
		choices := make([]Choice, len(s.Choices))
		copy(choices, s.Choices)
		s.Choices = choices
	}
	return s
}

// StoryUpdate lists the story fields a caller may change.
// Nil fields are left alone. An empty StartSceneID clears the start scene.
type StoryUpdate struct {
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	StartSceneID *string `json:"start_scene_id,omitempty"`
}

// SceneUpdate lists the scene fields a caller may change.
// Choices, when set, replaces the whole choice sequence.
type SceneUpdate struct {
	Title   *string   `json:"title,omitempty"`
	Body    *string   `json:"body,omitempty"`
	Choices *[]Choice `json:"choices,omitempty"`

	// IfBody, when set, makes the update apply only while the scene body
	// still equals it. Not settable over the API.
	IfBody *string `json:"-" yaml:"-"`
}

// ChoiceUpdate lists the choice fields a caller may change.
// An empty TargetSceneID unlinks the choice.
type ChoiceUpdate struct {
	Text          *string `json:"text,omitempty"`
	TargetSceneID *string `json:"target_scene_id,omitempty"`
}

// SceneDraft is a fully formed scene that has not been given an ID yet.
// ChoiceTexts become unlinked choices in order.
type SceneDraft struct {
	Title       string
	Body        string
	ChoiceTexts []string
}
