package story

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore(opts ...StoreOption) *Store {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	base := []StoreOption{
		WithIDFunc(sequentialIDs()),
		WithClock(func() time.Time { return fixed }),
	}
	return NewStore(append(base, opts...)...)
}

func strPtr(s string) *string { return &s }

func TestStore_CreateStory(t *testing.T) {
	s := newTestStore()

	st := s.CreateStory("T", "D")
	assert.Equal(t, "T", st.Title)
	assert.Equal(t, "D", st.Description)
	assert.Empty(t, st.Scenes)
	assert.NotNil(t, st.Scenes)
	assert.Empty(t, st.StartSceneID)

	got, ok := s.GetStory(st.ID)
	require.True(t, ok)
	assert.Equal(t, st, got)
}

func TestStore_CreateStoryDefaultsTitle(t *testing.T) {
	s := newTestStore()
	st := s.CreateStory("  ", "")
	assert.Equal(t, DefaultStoryTitle, st.Title)
}

func TestStore_GetStoryReturnsCopy(t *testing.T) {
	s := newTestStore()
	st := s.CreateStory("T", "D")
	_, err := s.CreateScene(st.ID, "A")
	require.NoError(t, err)

	got, _ := s.GetStory(st.ID)
	got.Title = "changed"
	got.Scenes[0].Title = "changed"

	again, _ := s.GetStory(st.ID)
	assert.Equal(t, "T", again.Title)
	assert.Equal(t, "A", again.Scenes[0].Title)
}

func TestStore_ListStoriesKeepsCreationOrder(t *testing.T) {
	s := newTestStore()
	a := s.CreateStory("A", "")
	b := s.CreateStory("B", "")
	c := s.CreateStory("C", "")
	s.DeleteStory(b.ID)

	list := s.ListStories()
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, c.ID, list[1].ID)
}

func TestStore_UpdateStory(t *testing.T) {
	s := newTestStore()
	st := s.CreateStory("T", "D")
	sc, _ := s.CreateScene(st.ID, "")

	updated, err := s.UpdateStory(st.ID, StoryUpdate{
		Title:        strPtr("New"),
		StartSceneID: strPtr(sc.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "D", updated.Description, "unset fields are untouched")
	assert.Equal(t, sc.ID, updated.StartSceneID)

	cleared, err := s.UpdateStory(st.ID, StoryUpdate{StartSceneID: strPtr("")})
	require.NoError(t, err)
	assert.Empty(t, cleared.StartSceneID)
}

func TestStore_UpdateStoryNotFound(t *testing.T) {
	s := newTestStore()
	_, err := s.UpdateStory("missing", StoryUpdate{Title: strPtr("x")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, KindStory, nf.Kind)
}

func TestStore_DeleteStoryIsIdempotent(t *testing.T) {
	s := newTestStore()
	st := s.CreateStory("T", "D")

	s.DeleteStory(st.ID)
	s.DeleteStory(st.ID)
	s.DeleteStory("never-existed")

	_, ok := s.GetStory(st.ID)
	assert.False(t, ok)
}

func TestStore_CreateSceneAddsExactlyOneEmptyScene(t *testing.T) {
	s := newTestStore()
	st := s.CreateStory("T", "D")
	_, _ = s.CreateScene(st.ID, "first")

	before, _ := s.GetStory(st.ID)
	sc, err := s.CreateScene(st.ID, "")
	require.NoError(t, err)
	after, _ := s.GetStory(st.ID)

	assert.Len(t, after.Scenes, len(before.Scenes)+1)
	assert.Equal(t, DefaultSceneTitle, sc.Title)
	assert.Empty(t, sc.Body)
	assert.Empty(t, sc.Choices)
	assert.Equal(t, sc.ID, after.Scenes[len(after.Scenes)-1].ID)
}

func TestStore_CreateSceneMissingStory(t *testing.T) {
	s := newTestStore()
	_, err := s.CreateScene("missing", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpdateScene(t *testing.T) {
	s := newTestStore()
	st := s.CreateStory("T", "D")
	sc, _ := s.CreateScene(st.ID, "")

	choices := []Choice{{Text: "left"}, {ID: "keep", Text: "right"}}
	updated, err := s.UpdateScene(st.ID, sc.ID, SceneUpdate{
		Body:    strPtr("It is dark."),
		Choices: &choices,
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultSceneTitle, updated.Title)
	assert.Equal(t, "It is dark.", updated.Body)
	require.Len(t, updated.Choices, 2)
	assert.NotEmpty(t, updated.Choices[0].ID, "missing choice IDs are allocated")
	assert.Equal(t, "keep", updated.Choices[1].ID)

	_, err = s.UpdateScene(st.ID, "missing", SceneUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpdateSceneIfBody(t *testing.T) {
	s := newTestStore()
	st := s.CreateStory("T", "D")
	sc, _ := s.CreateScene(st.ID, "")
	_, err := s.UpdateScene(st.ID, sc.ID, SceneUpdate{Body: strPtr("edited")})
	require.NoError(t, err)

	_, err = s.UpdateScene(st.ID, sc.ID, SceneUpdate{Body: strPtr("improved"), IfBody: strPtr("")})
	assert.ErrorIs(t, err, ErrStale)
	got, _ := s.GetStory(st.ID)
	kept, _ := got.Scene(sc.ID)
	assert.Equal(t, "edited", kept.Body)

	updated, err := s.UpdateScene(st.ID, sc.ID, SceneUpdate{Body: strPtr("improved"), IfBody: strPtr("edited")})
	require.NoError(t, err)
	assert.Equal(t, "improved", updated.Body)
}

func TestStore_DeleteStartSceneClearsStartOnly(t *testing.T) {
	s := newTestStore()
	st := s.CreateStory("T", "D")
	a, _ := s.CreateScene(st.ID, "A")
	b, _ := s.CreateScene(st.ID, "B")
	toA, _ := s.AddChoice(st.ID, b.ID, "back to A")
	_, _ = s.UpdateChoice(st.ID, b.ID, toA.ID, ChoiceUpdate{TargetSceneID: strPtr(a.ID)})
	_, _ = s.UpdateStory(st.ID, StoryUpdate{StartSceneID: strPtr(a.ID)})

	before, _ := s.GetStory(st.ID)
	require.NoError(t, s.DeleteScene(st.ID, a.ID))
	after, _ := s.GetStory(st.ID)

	assert.Empty(t, after.StartSceneID)
	require.Len(t, after.Scenes, 1)
	assert.Equal(t, before.Scenes[1], after.Scenes[0], "other scenes untouched")
	assert.Equal(t, a.ID, after.Scenes[0].Choices[0].TargetSceneID, "dangling reference is kept")
}

func TestStore_DeleteSceneKeepsOtherStart(t *testing.T) {
	s := newTestStore()
	st := s.CreateStory("T", "D")
	a, _ := s.CreateScene(st.ID, "A")
	b, _ := s.CreateScene(st.ID, "B")
	_, _ = s.UpdateStory(st.ID, StoryUpdate{StartSceneID: strPtr(a.ID)})

	require.NoError(t, s.DeleteScene(st.ID, b.ID))
	require.NoError(t, s.DeleteScene(st.ID, b.ID), "second delete is a no-op")

	after, _ := s.GetStory(st.ID)
	assert.Equal(t, a.ID, after.StartSceneID)

	assert.ErrorIs(t, s.DeleteScene("missing", a.ID), ErrNotFound)
}

func TestStore_AddThenDeleteChoiceRestoresScene(t *testing.T) {
	s := newTestStore()
	st := s.CreateStory("T", "D")
	sc, _ := s.CreateScene(st.ID, "A")
	_, _ = s.AddChoice(st.ID, sc.ID, "existing")

	before, _ := s.GetStory(st.ID)
	ch, err := s.AddChoice(st.ID, sc.ID, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultChoiceText, ch.Text)
	assert.False(t, ch.Linked())

	require.NoError(t, s.DeleteChoice(st.ID, sc.ID, ch.ID))
	after, _ := s.GetStory(st.ID)
	assert.Equal(t, before.Scenes[0].Choices, after.Scenes[0].Choices)
}

func TestStore_UpdateChoice(t *testing.T) {
	s := newTestStore()
	st := s.CreateStory("T", "D")
	a, _ := s.CreateScene(st.ID, "A")
	b, _ := s.CreateScene(st.ID, "B")
	ch, _ := s.AddChoice(st.ID, a.ID, "go")

	updated, err := s.UpdateChoice(st.ID, a.ID, ch.ID, ChoiceUpdate{TargetSceneID: strPtr(b.ID)})
	require.NoError(t, err)
	assert.Equal(t, "go", updated.Text)
	assert.Equal(t, b.ID, updated.TargetSceneID)

	_, err = s.UpdateChoice(st.ID, a.ID, "missing", ChoiceUpdate{})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, KindChoice, nf.Kind)
}

func TestStore_LinkNewScene(t *testing.T) {
	s := newTestStore()
	st := s.CreateStory("T", "D")
	from, _ := s.CreateScene(st.ID, "Hall")

	sc, link, err := s.LinkNewScene(st.ID, from.ID, SceneDraft{
		Title:       "Cave",
		Body:        "You enter a cave.",
		ChoiceTexts: []string{"Light a torch", "Turn back"},
	}, "Go to Cave")
	require.NoError(t, err)

	got, _ := s.GetStory(st.ID)
	require.Len(t, got.Scenes, 2)
	assert.Equal(t, "Cave", got.Scenes[1].Title)
	require.Len(t, got.Scenes[1].Choices, 2)
	for _, ch := range got.Scenes[1].Choices {
		assert.False(t, ch.Linked())
	}
	require.Len(t, got.Scenes[0].Choices, 1)
	assert.Equal(t, *link, got.Scenes[0].Choices[0])
	assert.Equal(t, sc.ID, link.TargetSceneID)

	_, _, err = s.LinkNewScene(st.ID, "missing", SceneDraft{Title: "x", Body: "y"}, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_IDsAreUniqueAcrossKinds(t *testing.T) {
	s := NewStore()
	st := s.CreateStory("T", "D")
	seen := map[string]bool{st.ID: true}
	for i := 0; i < 20; i++ {
		sc, err := s.CreateScene(st.ID, "")
		require.NoError(t, err)
		ch, err := s.AddChoice(st.ID, sc.ID, "")
		require.NoError(t, err)
		for _, id := range []string{sc.ID, ch.ID} {
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	}
}

func TestStore_ObserversSeeCommittedState(t *testing.T) {
	var (
		mu      sync.Mutex
		changes []Change
	)
	var s *Store
	s = newTestStore(WithObserver(ObserverFunc(func(c Change) {
		// Reading inside the callback must not deadlock.
		_, _ = s.GetStory(c.StoryID)
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})))

	st := s.CreateStory("T", "D")
	sc, _ := s.CreateScene(st.ID, "")
	ch, _ := s.AddChoice(st.ID, sc.ID, "")
	_ = s.DeleteChoice(st.ID, sc.ID, ch.ID)
	_ = s.DeleteChoice(st.ID, sc.ID, ch.ID) // no-op, no notification
	s.DeleteStory(st.ID)

	kinds := make([]ChangeKind, 0, len(changes))
	for _, c := range changes {
		kinds = append(kinds, c.Kind)
	}
	assert.Equal(t, []ChangeKind{
		ChangeStoryCreated,
		ChangeSceneCreated,
		ChangeChoiceCreated,
		ChangeChoiceDeleted,
		ChangeStoryDeleted,
	}, kinds)
}

func TestStore_ReplaceSkipsInvalidAndDuplicates(t *testing.T) {
	s := newTestStore()
	s.CreateStory("old", "")

	s.Replace([]*Story{
		{ID: "a", Title: "A"},
		nil,
		{ID: "", Title: "no id"},
		{ID: "a", Title: "dup"},
		{ID: "b", Title: "B"},
	})

	list := s.ListStories()
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Title)
	assert.NotNil(t, list[0].Scenes)
	assert.Equal(t, "B", list[1].Title)
}

func TestStore_UpdatedAtMoves(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return now }))
	st := s.CreateStory("T", "D")

	now = now.Add(time.Hour)
	_, err := s.CreateScene(st.ID, "")
	require.NoError(t, err)

	got, _ := s.GetStory(st.ID)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestStore_ConcurrentReadersSeeWholeMutations(t *testing.T) {
	s := NewStore()
	st := s.CreateStory("T", "D")
	sc, _ := s.CreateScene(st.ID, "")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			choices := []Choice{{Text: "a"}, {Text: "b"}}
			_, _ = s.UpdateScene(st.ID, sc.ID, SceneUpdate{Choices: &choices})
			empty := []Choice{}
			_, _ = s.UpdateScene(st.ID, sc.ID, SceneUpdate{Choices: &empty})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			got, _ := s.GetStory(st.ID)
			n := len(got.Scenes[0].Choices)
			if n != 0 && n != 2 {
				t.Errorf("observed partial choice sequence of length %d", n)
				return
			}
		}
	}()
	wg.Wait()
}
