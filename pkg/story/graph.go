package story

import (
	"fmt"
	"strings"
)

// Edge is one choice seen as a link in the story graph.
type Edge struct {
	From     string `json:"from"`
	ChoiceID string `json:"choice_id"`
	Text     string `json:"text"`
	To       string `json:"to,omitempty"`
	Unlinked bool   `json:"unlinked,omitempty"`
	Broken   bool   `json:"broken,omitempty"` // target scene no longer exists
}

// Edges lists every choice in the story in scene then choice order.
func Edges(s *Story) []Edge {
	edges := make([]Edge, 0)
	for _, sc := range s.Scenes {
		for _, ch := range sc.Choices {
			e := Edge{
				From:     sc.ID,
				ChoiceID: ch.ID,
				Text:     ch.Text,
				To:       ch.TargetSceneID,
			}
			switch {
			case !ch.Linked():
				e.Unlinked = true
			case !s.HasScene(ch.TargetSceneID):
				e.Broken = true
			}
			edges = append(edges, e)
		}
	}
	return edges
}

// DanglingChoices returns the edges whose target scene was deleted.
func DanglingChoices(s *Story) []Edge {
	var out []Edge
	for _, e := range Edges(s) {
		if e.Broken {
			out = append(out, e)
		}
	}
	return out
}

// Reachable returns the set of scene IDs reachable from the start scene.
// A story without a valid start reaches nothing.
func Reachable(s *Story) map[string]bool {
	seen := make(map[string]bool)
	start, ok := s.StartScene()
	if !ok {
		return seen
	}

	queue := []string{start.ID}
	seen[start.ID] = true
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sc, _ := s.Scene(id)
		for _, ch := range sc.Choices {
			if seen[ch.TargetSceneID] || !s.HasScene(ch.TargetSceneID) {
				continue
			}
			seen[ch.TargetSceneID] = true
			queue = append(queue, ch.TargetSceneID)
		}
	}
	return seen
}

// Unreachable returns scene IDs that cannot be reached from the start scene.
func Unreachable(s *Story) []string {
	reach := Reachable(s)
	var out []string
	for _, sc := range s.Scenes {
		if !reach[sc.ID] {
			out = append(out, sc.ID)
		}
	}
	return out
}

// Endings returns the IDs of scenes without choices.
func Endings(s *Story) []string {
	var out []string
	for _, sc := range s.Scenes {
		if sc.IsEnding() {
			out = append(out, sc.ID)
		}
	}
	return out
}

// Summary renders a short plain-text outline of the story for prompts.
func Summary(s *Story) string {
	if len(s.Scenes) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d scenes so far:", len(s.Scenes))
	for i, sc := range s.Scenes {
		if i == maxSummaryScenes {
			fmt.Fprintf(&b, "\n- ... and %d more", len(s.Scenes)-i)
			break
		}
		fmt.Fprintf(&b, "\n- %s", truncate(sc.Title, summaryTitleLength))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
