package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/storyweaver/pkg/snapshot"
)

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Rewrite a snapshot as JSON or YAML",
		Long: `Rewrite a snapshot in the format named by the output extension.
.yaml and .yml produce YAML; anything else produces the JSON the API stores.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := convertFile(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d stories to %s\n", n, args[1])
			return nil
		},
	}
}

func convertFile(in, out string) (int, error) {
	stories, err := readSnapshot(in)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", in, err)
	}

	var data []byte
	if isYAML(out) {
		data, err = snapshot.SaveYAML(stories)
	} else {
		data, err = snapshot.Save(stories)
	}
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", out, err)
	}
	return len(stories), nil
}
