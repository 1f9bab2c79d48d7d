package story

import (
	"strings"
	"testing"
)

func cyclicStory() *Story {
	return &Story{
		ID:           "s",
		Title:        "Loop",
		StartSceneID: "a",
		Scenes: []Scene{
			{ID: "a", Title: "A", Choices: []Choice{{ID: "c1", Text: "to B", TargetSceneID: "b"}}},
			{ID: "b", Title: "B", Choices: []Choice{
				{ID: "c2", Text: "to A", TargetSceneID: "a"},
				{ID: "c3", Text: "nowhere"},
				{ID: "c4", Text: "gone", TargetSceneID: "deleted"},
			}},
			{ID: "c", Title: "C"},
		},
	}
}

func TestEdges(t *testing.T) {
	edges := Edges(cyclicStory())
	if len(edges) != 4 {
		t.Fatalf("expected 4 edges, got %d", len(edges))
	}

	tests := []struct {
		choice   string
		unlinked bool
		broken   bool
	}{
		{"c1", false, false},
		{"c2", false, false},
		{"c3", true, false},
		{"c4", false, true},
	}
	for i, tt := range tests {
		e := edges[i]
		if e.ChoiceID != tt.choice {
			t.Errorf("edge %d: expected choice %s, got %s", i, tt.choice, e.ChoiceID)
		}
		if e.Unlinked != tt.unlinked || e.Broken != tt.broken {
			t.Errorf("edge %s: unlinked=%v broken=%v, want %v %v", e.ChoiceID, e.Unlinked, e.Broken, tt.unlinked, tt.broken)
		}
	}
}

func TestDanglingChoices(t *testing.T) {
	dangling := DanglingChoices(cyclicStory())
	if len(dangling) != 1 || dangling[0].ChoiceID != "c4" {
		t.Fatalf("expected only c4 to dangle, got %+v", dangling)
	}
}

func TestReachableTerminatesOnCycles(t *testing.T) {
	st := cyclicStory()
	reach := Reachable(st)
	if len(reach) != 2 || !reach["a"] || !reach["b"] {
		t.Errorf("expected {a, b}, got %v", reach)
	}

	un := Unreachable(st)
	if len(un) != 1 || un[0] != "c" {
		t.Errorf("expected [c] unreachable, got %v", un)
	}
}

func TestReachableWithoutStart(t *testing.T) {
	st := cyclicStory()
	st.StartSceneID = "deleted"
	if n := len(Reachable(st)); n != 0 {
		t.Errorf("dangling start should reach nothing, got %d scenes", n)
	}
	if n := len(Unreachable(st)); n != 3 {
		t.Errorf("expected every scene unreachable, got %d", n)
	}
}

func TestEndings(t *testing.T) {
	endings := Endings(cyclicStory())
	if len(endings) != 1 || endings[0] != "c" {
		t.Errorf("expected [c], got %v", endings)
	}
}

func TestSummary(t *testing.T) {
	if got := Summary(&Story{}); got != "" {
		t.Errorf("empty story should summarize to empty string, got %q", got)
	}

	got := Summary(cyclicStory())
	want := "3 scenes so far:\n- A\n- B\n- C"
	if got != want {
		t.Errorf("unexpected summary:\n%s\nwant:\n%s", got, want)
	}
}

func TestSummaryTruncates(t *testing.T) {
	st := &Story{}
	for i := 0; i < maxSummaryScenes+5; i++ {
		st.Scenes = append(st.Scenes, Scene{ID: strings.Repeat("x", i+1), Title: strings.Repeat("t", 100)})
	}

	got := Summary(st)
	lines := strings.Split(got, "\n")
	if len(lines) != maxSummaryScenes+2 {
		t.Fatalf("expected %d lines, got %d", maxSummaryScenes+2, len(lines))
	}
	if !strings.HasSuffix(lines[len(lines)-1], "and 5 more") {
		t.Errorf("unexpected tail line %q", lines[len(lines)-1])
	}
	if n := len([]rune(lines[1])); n != summaryTitleLength+2 {
		t.Errorf("expected titles truncated to %d runes, line has %d", summaryTitleLength, n)
	}
}
