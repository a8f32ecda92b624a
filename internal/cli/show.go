package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ariel-frischer/kacl/internal/changelog"
	clierrors "github.com/ariel-frischer/kacl/internal/errors"
	"github.com/ariel-frischer/kacl/internal/progress"
	"github.com/spf13/cobra"
)

var (
	showLastFlag   int
	showRenderFlag bool
)

var showCmd = &cobra.Command{
	Use:   "show [version]",
	Short: "Display changelog entries in the terminal",
	Long: `Display changelog entries with colored category headers.

By default the most recent changes are listed, newest first. Pass a version
to show one entry in full; "unreleased" selects the Unreleased entry and a
leading "v" is optional.

With --render the Markdown is rendered through a terminal Markdown renderer
instead.`,
	Example: `  kacl show                  # 10 most recent changes
  kacl show --last 25
  kacl show 1.2.0            # One version
  kacl show v1.2.0 --render  # Rendered Markdown
  kacl show -f docs/CHANGES.md unreleased`,
	Args: validArgs(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadChangelog(cmd.Context(), appConfig.File)
		if err != nil {
			return err
		}
		return showChangelog(cmd, c, args, showLastFlag, showRenderFlag)
	},
}

func init() {
	showCmd.GroupID = GroupDocuments
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().IntVar(&showLastFlag, "last", 10, "Number of changes to show")
	showCmd.Flags().BoolVar(&showRenderFlag, "render", false, "Render Markdown in the terminal")
}

// showChangelog prints one version when args names it, otherwise the last n
// changes.
func showChangelog(cmd *cobra.Command, c *changelog.Changelog, args []string, last int, render bool) error {
	if len(args) == 1 {
		entry, err := c.GetVersion(args[0])
		if err != nil {
			var notFound *changelog.VersionNotFoundError
			if errors.As(err, &notFound) {
				return clierrors.VersionNotFound(notFound)
			}
			return err
		}
		if render {
			return renderMarkdown(cmd.OutOrStdout(), changelog.FormatHeading(entry)+"\n\n"+changelog.RenderEntryMarkdownString(entry))
		}
		return changelog.FormatEntry(entry, cmd.OutOrStdout(), formatOptions())
	}

	if render {
		md, err := renderChangelog(c)
		if err != nil {
			return err
		}
		return renderMarkdown(cmd.OutOrStdout(), md)
	}

	items := c.LastN(last)
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No changelog entries found.")
		return nil
	}

	if err := changelog.FormatTerminal(items, cmd.OutOrStdout(), formatOptions()); err != nil {
		return fmt.Errorf("formatting entries: %w", err)
	}

	if total := c.ItemCount(); total > len(items) {
		fmt.Fprintf(cmd.OutOrStdout(), "\n(%d of %d changes shown. Use --last %d to see all)\n",
			len(items), total, total)
	}
	return nil
}

func renderMarkdown(w io.Writer, md string) error {
	width := progress.DetectTerminalCapabilities(os.Stdout).Width
	out, err := changelog.RenderTerminalMarkdown(md, width, appConfig.Plain)
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
