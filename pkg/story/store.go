package story

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ChangeKind names the mutation that produced a Change.
type ChangeKind string

const (
	ChangeStoryCreated  ChangeKind = "story.created"
	ChangeStoryUpdated  ChangeKind = "story.updated"
	ChangeStoryDeleted  ChangeKind = "story.deleted"
	ChangeSceneCreated  ChangeKind = "scene.created"
	ChangeSceneUpdated  ChangeKind = "scene.updated"
	ChangeSceneDeleted  ChangeKind = "scene.deleted"
	ChangeSceneLinked   ChangeKind = "scene.linked"
	ChangeChoiceCreated ChangeKind = "choice.created"
	ChangeChoiceUpdated ChangeKind = "choice.updated"
	ChangeChoiceDeleted ChangeKind = "choice.deleted"
)

// Change describes one committed mutation.
type Change struct {
	Kind     ChangeKind `json:"kind"`
	StoryID  string     `json:"story_id"`
	EntityID string     `json:"entity_id,omitempty"`
}

// Observer is notified after every committed mutation, outside the store lock.
type Observer interface {
	StoryChanged(c Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(c Change)

func (f ObserverFunc) StoryChanged(c Change) { f(c) }

// Store owns every Story and is the only thing that mutates them.
// Readers always receive deep copies.
type Store struct {
	mu      sync.RWMutex
	stories map[string]*Story
	order   []string

	newID func() string
	now   func() time.Time

	obsMu     sync.RWMutex
	observers []Observer
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithIDFunc replaces the identifier generator. The function must return
// values that are unique across stories, scenes and choices.
func WithIDFunc(f func() string) StoreOption {
	return func(s *Store) {
		s.newID = f
	}
}

// WithClock replaces the time source used for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithObserver registers an observer at construction time.
func WithObserver(o Observer) StoreOption {
	return func(s *Store) {
		s.observers = append(s.observers, o)
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		stories: make(map[string]*Story),
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddObserver registers an observer for all future mutations.
func (s *Store) AddObserver(o Observer) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *Store) notify(c Change) {
	s.obsMu.RLock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.obsMu.RUnlock()

	for _, o := range observers {
		o.StoryChanged(c)
	}
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

// CreateStory adds a new story with no scenes and no start scene.
func (s *Store) CreateStory(title, description string) *Story {
	if strings.TrimSpace(title) == "" {
		title = DefaultStoryTitle
	}

	s.mu.Lock()
	now := s.timestamp()
	st := &Story{
		ID:          s.newID(),
		Title:       title,
		Description: description,
		Scenes:      make([]Scene, 0),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.stories[st.ID] = st
	s.order = append(s.order, st.ID)
	out := st.Clone()
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeStoryCreated, StoryID: out.ID, EntityID: out.ID})
	return out
}

// GetStory returns a copy of the story, or false if it does not exist.
func (s *Store) GetStory(id string) (*Story, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stories[id]
	if !ok {
		return nil, false
	}
	return st.Clone(), true
}

// ListStories returns copies of every story in creation order.
func (s *Store) ListStories() []*Story {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Story, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.stories[id].Clone())
	}
	return out
}

// Snapshot is ListStories under the name the persistence layer uses.
func (s *Store) Snapshot() []*Story {
	return s.ListStories()
}

// Replace installs a loaded collection, discarding the current one.
// Observers are not notified; the collection came from persistence.
func (s *Store) Replace(stories []*Story) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stories = make(map[string]*Story, len(stories))
	s.order = make([]string, 0, len(stories))
	for _, st := range stories {
		if st == nil || st.ID == "" {
			continue
		}
		if _, dup := s.stories[st.ID]; dup {
			continue
		}
		c := st.Clone()
		if c.Scenes == nil {
			c.Scenes = make([]Scene, 0)
		}
		s.stories[c.ID] = c
		s.order = append(s.order, c.ID)
	}
}

// UpdateStory merges the supplied fields into the story.
func (s *Store) UpdateStory(id string, upd StoryUpdate) (*Story, error) {
	s.mu.Lock()
	st, ok := s.stories[id]
	if !ok {
		s.mu.Unlock()
		return nil, notFound(KindStory, id)
	}
	if upd.Title != nil {
		st.Title = *upd.Title
	}
	if upd.Description != nil {
		st.Description = *upd.Description
	}
	if upd.StartSceneID != nil {
		st.StartSceneID = *upd.StartSceneID
	}
	st.UpdatedAt = s.timestamp()
	out := st.Clone()
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeStoryUpdated, StoryID: id, EntityID: id})
	return out, nil
}

// DeleteStory removes the story and everything it owns. Missing IDs are ignored.
func (s *Store) DeleteStory(id string) {
	s.mu.Lock()
	if _, ok := s.stories[id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.stories, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeStoryDeleted, StoryID: id, EntityID: id})
}

// CreateScene appends an empty scene to the story.
func (s *Store) CreateScene(storyID, title string) (*Scene, error) {
	if strings.TrimSpace(title) == "" {
		title = DefaultSceneTitle
	}

	s.mu.Lock()
	st, ok := s.stories[storyID]
	if !ok {
		s.mu.Unlock()
		return nil, notFound(KindStory, storyID)
	}
	sc := Scene{
		ID:      s.newID(),
		Title:   title,
		Choices: make([]Choice, 0),
	}
	st.Scenes = append(st.Scenes, sc)
	st.UpdatedAt = s.timestamp()
	out := sc.clone()
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeSceneCreated, StoryID: storyID, EntityID: out.ID})
	return &out, nil
}

// UpdateScene merges the supplied fields into the scene. Replacement
// choices without an ID are given one.
func (s *Store) UpdateScene(storyID, sceneID string, upd SceneUpdate) (*Scene, error) {
	s.mu.Lock()
	sc, err := s.sceneLocked(storyID, sceneID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if upd.IfBody != nil && sc.Body != *upd.IfBody {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrStale, sceneID)
	}
	if upd.Title != nil {
		sc.Title = *upd.Title
	}
	if upd.Body != nil {
		sc.Body = *upd.Body
	}
	if upd.Choices != nil {
		choices := make([]Choice, len(*upd.Choices))
		copy(choices, *upd.Choices)
		for i := range choices {
			if choices[i].ID == "" {
				choices[i].ID = s.newID()
			}
		}
		sc.Choices = choices
	}
	s.stories[storyID].UpdatedAt = s.timestamp()
	out := sc.clone()
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeSceneUpdated, StoryID: storyID, EntityID: sceneID})
	return &out, nil
}

// DeleteScene removes the scene and clears the start scene if it pointed
// here. Choices in other scenes that target it are left as they are.
// A missing scene is ignored; a missing story is reported.
func (s *Store) DeleteScene(storyID, sceneID string) error {
	s.mu.Lock()
	st, ok := s.stories[storyID]
	if !ok {
		s.mu.Unlock()
		return notFound(KindStory, storyID)
	}
	idx := st.sceneIndex(sceneID)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	st.Scenes = append(st.Scenes[:idx], st.Scenes[idx+1:]...)
	if st.StartSceneID == sceneID {
		st.StartSceneID = ""
	}
	st.UpdatedAt = s.timestamp()
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeSceneDeleted, StoryID: storyID, EntityID: sceneID})
	return nil
}

// AddChoice appends an unlinked choice to the scene.
func (s *Store) AddChoice(storyID, sceneID, text string) (*Choice, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultChoiceText
	}

	s.mu.Lock()
	sc, err := s.sceneLocked(storyID, sceneID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	ch := Choice{ID: s.newID(), Text: text}
	sc.Choices = append(sc.Choices, ch)
	s.stories[storyID].UpdatedAt = s.timestamp()
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeChoiceCreated, StoryID: storyID, EntityID: ch.ID})
	return &ch, nil
}

// UpdateChoice merges the supplied fields into the choice.
func (s *Store) UpdateChoice(storyID, sceneID, choiceID string, upd ChoiceUpdate) (*Choice, error) {
	s.mu.Lock()
	sc, err := s.sceneLocked(storyID, sceneID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	ch, ok := sc.Choice(choiceID)
	if !ok {
		s.mu.Unlock()
		return nil, notFound(KindChoice, choiceID)
	}
	if upd.Text != nil {
		ch.Text = *upd.Text
	}
	if upd.TargetSceneID != nil {
		ch.TargetSceneID = *upd.TargetSceneID
	}
	s.stories[storyID].UpdatedAt = s.timestamp()
	out := *ch
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeChoiceUpdated, StoryID: storyID, EntityID: choiceID})
	return &out, nil
}

// DeleteChoice removes the choice from its scene. A missing choice is ignored.
func (s *Store) DeleteChoice(storyID, sceneID, choiceID string) error {
	s.mu.Lock()
	sc, err := s.sceneLocked(storyID, sceneID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	idx := -1
	for i := range sc.Choices {
		if sc.Choices[i].ID == choiceID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	sc.Choices = append(sc.Choices[:idx], sc.Choices[idx+1:]...)
	s.stories[storyID].UpdatedAt = s.timestamp()
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeChoiceDeleted, StoryID: storyID, EntityID: choiceID})
	return nil
}

// LinkNewScene appends a scene built from draft and adds one choice with
// linkText on the originating scene that targets it. Both land in a
// single mutation, so observers never see an orphaned scene.
func (s *Store) LinkNewScene(storyID, fromSceneID string, draft SceneDraft, linkText string) (*Scene, *Choice, error) {
	if strings.TrimSpace(linkText) == "" {
		linkText = DefaultChoiceText
	}

	s.mu.Lock()
	st, ok := s.stories[storyID]
	if !ok {
		s.mu.Unlock()
		return nil, nil, notFound(KindStory, storyID)
	}
	if st.sceneIndex(fromSceneID) < 0 {
		s.mu.Unlock()
		return nil, nil, notFound(KindScene, fromSceneID)
	}

	sc := Scene{
		ID:      s.newID(),
		Title:   draft.Title,
		Body:    draft.Body,
		Choices: make([]Choice, 0, len(draft.ChoiceTexts)),
	}
	for _, text := range draft.ChoiceTexts {
		sc.Choices = append(sc.Choices, Choice{ID: s.newID(), Text: text})
	}
	link := Choice{ID: s.newID(), Text: linkText, TargetSceneID: sc.ID}

	// Append the new scene first: the slice may move, so re-resolve the origin.
	st.Scenes = append(st.Scenes, sc)
	from := &st.Scenes[st.sceneIndex(fromSceneID)]
	from.Choices = append(from.Choices, link)
	st.UpdatedAt = s.timestamp()
	out := sc.clone()
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeSceneLinked, StoryID: storyID, EntityID: out.ID})
	return &out, &link, nil
}

// sceneLocked resolves a scene for mutation. Caller holds s.mu.
func (s *Store) sceneLocked(storyID, sceneID string) (*Scene, error) {
	st, ok := s.stories[storyID]
	if !ok {
		return nil, notFound(KindStory, storyID)
	}
	sc, ok := st.Scene(sceneID)
	if !ok {
		return nil, notFound(KindScene, sceneID)
	}
	return sc, nil
}
