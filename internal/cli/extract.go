package cli

import (
	"errors"
	"fmt"

	"github.com/ariel-frischer/kacl/internal/changelog"
	clierrors "github.com/ariel-frischer/kacl/internal/errors"
	"github.com/spf13/cobra"
)

var extractHeadingFlag bool

var extractCmd = &cobra.Command{
	Use:   "extract <version> [file]",
	Short: "Print the release notes of one version as Markdown",
	Long: `Print the category sections of one version as Markdown, ready to paste
into a release description. The version heading is omitted unless
--heading is given. A leading "v" in the version is optional.`,
	Example: `  kacl extract 1.2.0
  kacl extract v1.2.0 docs/CHANGELOG.md
  kacl extract unreleased --heading
  kacl extract "$TAG" > notes.md && gh release create "$TAG" -F notes.md`,
	Args: validArgs(cobra.RangeArgs(1, 2)),
	RunE: runExtract,
}

func init() {
	extractCmd.GroupID = GroupRelease
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().BoolVar(&extractHeadingFlag, "heading", false, "Include the version heading")
}

func runExtract(cmd *cobra.Command, args []string) error {
	c, err := loadChangelog(cmd.Context(), targetAt(args, 1))
	if err != nil {
		return err
	}

	entry, err := c.GetVersion(args[0])
	if err != nil {
		var notFound *changelog.VersionNotFoundError
		if errors.As(err, &notFound) {
			return clierrors.VersionNotFound(notFound)
		}
		return err
	}

	if entry.IsEmpty() {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s has no changes\n", entry.Version)
	}

	out := cmd.OutOrStdout()
	if extractHeadingFlag {
		fmt.Fprintf(out, "%s\n\n", changelog.FormatHeading(entry))
	}
	return changelog.RenderEntryMarkdown(entry, out)
}
