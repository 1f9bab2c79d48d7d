package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/storyweaver/pkg/snapshot"
	"github.com/jwebster45206/storyweaver/pkg/story"
)

var errInvalid = errors.New("snapshot is invalid")

func newCheckCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Validate one or more snapshot files",
		Long: `Validate snapshot files. Problems that would corrupt playback are
errors. Dangling choices, unreachable scenes and stories without a start
scene or an ending are warnings, which fail only with --strict.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := false
			for _, filename := range args {
				if err := checkFile(cmd.OutOrStdout(), filename, strict); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", filename, err)
					failed = true
				}
			}
			if failed {
				return errInvalid
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")
	return cmd
}

func checkFile(w io.Writer, filename string, strict bool) error {
	fmt.Fprintf(w, "Validating %s...\n", filename)

	stories, err := readSnapshot(filename)
	if err != nil {
		return err
	}

	v := &StoryValidator{}
	v.validate(stories)
	for _, msg := range v.warnings {
		fmt.Fprintf(w, "  warning: %s\n", msg)
	}
	for _, msg := range v.errors {
		fmt.Fprintf(w, "  error: %s\n", msg)
	}

	switch {
	case len(v.errors) > 0:
		return fmt.Errorf("%w: %d errors", errInvalid, len(v.errors))
	case strict && len(v.warnings) > 0:
		return fmt.Errorf("%w: %d warnings in strict mode", errInvalid, len(v.warnings))
	}
	fmt.Fprintf(w, "%s is valid (%d stories)\n", filename, len(stories))
	return nil
}

// isYAML picks the codec from the file extension.
func isYAML(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func readSnapshot(filename string) ([]*story.Story, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if isYAML(filename) {
		return snapshot.DecodeYAML(data)
	}
	return snapshot.Decode(data)
}

// StoryValidator collects problems across a whole collection.
type StoryValidator struct {
	errors   []string
	warnings []string
}

func (v *StoryValidator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *StoryValidator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *StoryValidator) validate(stories []*story.Story) {
	storyIDs := make(map[string]bool)
	for i, st := range stories {
		label := fmt.Sprintf("story %q", st.ID)
		if st.ID == "" {
			label = fmt.Sprintf("story #%d", i+1)
			v.addError("%s has no id", label)
		} else if storyIDs[st.ID] {
			v.addError("%s appears more than once", label)
		}
		storyIDs[st.ID] = true
		v.validateStory(st, label)
	}
}

func (v *StoryValidator) validateStory(st *story.Story, label string) {
	sceneIDs := make(map[string]bool)
	for _, sc := range st.Scenes {
		switch {
		case sc.ID == "":
			v.addError("%s has a scene without an id (%q)", label, sc.Title)
		case sceneIDs[sc.ID]:
			v.addError("%s has duplicate scene id %q", label, sc.ID)
		}
		sceneIDs[sc.ID] = true

		choiceIDs := make(map[string]bool)
		for _, ch := range sc.Choices {
			switch {
			case ch.ID == "":
				v.addError("%s scene %q has a choice without an id", label, sc.ID)
			case choiceIDs[ch.ID]:
				v.addError("%s scene %q has duplicate choice id %q", label, sc.ID, ch.ID)
			}
			choiceIDs[ch.ID] = true
		}
	}

	switch {
	case st.StartSceneID == "":
		v.addWarning("%s has no start scene", label)
	case !st.HasScene(st.StartSceneID):
		v.addWarning("%s start scene %q does not exist", label, st.StartSceneID)
	}

	for _, e := range story.DanglingChoices(st) {
		v.addWarning("%s choice %q in scene %q points at missing scene %q", label, e.Text, e.From, e.To)
	}
	if _, ok := st.StartScene(); ok {
		for _, id := range story.Unreachable(st) {
			v.addWarning("%s scene %q is unreachable from the start", label, id)
		}
	}
	if len(st.Scenes) > 0 && len(story.Endings(st)) == 0 {
		v.addWarning("%s has no ending scene", label)
	}
}
