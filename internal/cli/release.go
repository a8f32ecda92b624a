package cli

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/ariel-frischer/kacl/internal/changelog"
	clierrors "github.com/ariel-frischer/kacl/internal/errors"
	"github.com/spf13/cobra"
)

var (
	releaseDateFlag      string
	releaseLinksFlag     bool
	releaseDryRunFlag    bool
	releaseRemoteFlag    string
	releaseRepoURLFlag   string
	releaseTagPrefixFlag string
)

var releaseCmd = &cobra.Command{
	Use:   "release <version> [file]",
	Short: "Turn the Unreleased changes into a release",
	Long: `Rename the Unreleased entry to the given version, dated today (or --date),
and start a new empty Unreleased entry above it.

The version must be a semantic version greater than every existing release,
and the Unreleased entry must have at least one change.

With --links the compare links are regenerated as in 'kacl links'.`,
	Example: `  kacl release 1.3.0
  kacl release v2.0.0-rc.1 --date 2026-10-01
  kacl release 1.3.0 --links --dry-run`,
	Args: validArgs(cobra.RangeArgs(1, 2)),
	RunE: runRelease,
}

func init() {
	releaseCmd.GroupID = GroupRelease
	rootCmd.AddCommand(releaseCmd)

	releaseCmd.Flags().StringVar(&releaseDateFlag, "date", "", "Release date as YYYY-MM-DD (default: today)")
	releaseCmd.Flags().BoolVar(&releaseLinksFlag, "links", false, "Regenerate compare links")
	releaseCmd.Flags().BoolVar(&releaseDryRunFlag, "dry-run", false, "Print the result instead of writing the file")
	addLinkFlags(releaseCmd, &releaseRemoteFlag, &releaseRepoURLFlag, &releaseTagPrefixFlag)
}

func runRelease(cmd *cobra.Command, args []string) error {
	date := civil.DateOf(time.Now())
	if releaseDateFlag != "" {
		d, err := civil.ParseDate(releaseDateFlag)
		if err != nil {
			return clierrors.NewArgumentError(
				fmt.Sprintf("invalid --date %q", releaseDateFlag),
				"Use the YYYY-MM-DD format, e.g. --date 2026-10-01",
			)
		}
		date = d
	}

	path := targetAt(args, 1)
	c, err := loadLocalChangelog(cmd.Context(), path)
	if err != nil {
		return err
	}

	released, err := changelog.Release(c, args[0], date)
	if err != nil {
		return clierrors.ReleaseFailed(err)
	}

	if releaseLinksFlag {
		if _, err := applyLinks(cmd, c, path, releaseRemoteFlag, releaseRepoURLFlag, releaseTagPrefixFlag); err != nil {
			return err
		}
	}

	if releaseDryRunFlag {
		out, err := renderChangelog(c)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	}

	if err := writeChangelog(path, c); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "released %s (%d changes) in %s\n", released.Version, released.Count(), path)
	return nil
}
