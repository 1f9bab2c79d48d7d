package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "validate",
		Short: "Check and convert StoryWeaver snapshot files",
		Long: `validate reads story snapshots written by the API or by hand.

Examples:
  validate check data/stories.json
  validate check --strict stories/caves.yaml
  validate convert data/stories.json stories.yaml`,
		SilenceUsage: true,
	}
	root.AddCommand(newCheckCmd(), newConvertCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
