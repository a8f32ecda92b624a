package cli

import (
	"fmt"

	"github.com/ariel-frischer/kacl/internal/changelog"
	"github.com/spf13/cobra"
)

var changelogLastFlag int

var changelogCmd = &cobra.Command{
	Use:   "changelog [version]",
	Short: "View kacl's own changelog",
	Long: `View entries of kacl's own changelog.

The changelog is embedded at build time, so it shows changes up to when
this binary was built.`,
	Example: `  kacl changelog              # 10 most recent changes
  kacl changelog v0.3.0       # All changes of 0.3.0
  kacl changelog unreleased
  kacl changelog --last 30`,
	Args: validArgs(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := changelog.LoadEmbedded()
		if err != nil {
			return fmt.Errorf("loading embedded changelog: %w", err)
		}
		return showChangelog(cmd, c, args, changelogLastFlag, false)
	},
}

func init() {
	rootCmd.AddCommand(changelogCmd)

	changelogCmd.Flags().IntVar(&changelogLastFlag, "last", 10, "Number of changes to show")
}
