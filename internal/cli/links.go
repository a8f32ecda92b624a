package cli

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/ariel-frischer/kacl/internal/changelog"
	clierrors "github.com/ariel-frischer/kacl/internal/errors"
	"github.com/ariel-frischer/kacl/internal/git"
	"github.com/spf13/cobra"
)

var (
	linksWriteFlag     bool
	linksRemoteFlag    string
	linksRepoURLFlag   string
	linksTagPrefixFlag string
)

var linksCmd = &cobra.Command{
	Use:   "links [file]",
	Short: "Generate compare links for every version",
	Long: `Generate the link definitions at the end of a changelog:

  [Unreleased]: <repo>/compare/v1.1.0...HEAD
  [1.1.0]: <repo>/compare/v1.0.0...v1.1.0
  [1.0.0]: <repo>/releases/tag/v1.0.0

The repository URL comes from --repo-url, the "repo_url" config key, or the
URL of a git remote ("origin" unless --remote or "remote" say otherwise).
SSH remotes are converted to their https form.

Without --write the links are printed; with --write the changelog is
rewritten in canonical form with the new links.`,
	Example: `  kacl links
  kacl links --write
  kacl links --remote upstream --tag-prefix release-
  kacl links --repo-url https://gitlab.com/acme/app --write`,
	Args: validArgs(cobra.MaximumNArgs(1)),
	RunE: runLinks,
}

func init() {
	linksCmd.GroupID = GroupRelease
	rootCmd.AddCommand(linksCmd)

	linksCmd.Flags().BoolVarP(&linksWriteFlag, "write", "w", false, "Write the links into the changelog")
	addLinkFlags(linksCmd, &linksRemoteFlag, &linksRepoURLFlag, &linksTagPrefixFlag)
}

// addLinkFlags registers the flags that control compare link generation.
func addLinkFlags(cmd *cobra.Command, remote, repoURL, tagPrefix *string) {
	cmd.Flags().StringVar(remote, "remote", "", "Git remote to read the repository URL from (overrides remote)")
	cmd.Flags().StringVar(repoURL, "repo-url", "", "Repository URL (overrides repo_url and the git remote)")
	cmd.Flags().StringVar(tagPrefix, "tag-prefix", "", "Release tag prefix (overrides tag_prefix)")
}

func runLinks(cmd *cobra.Command, args []string) error {
	path := targetAt(args, 0)
	c, err := loadLocalChangelog(cmd.Context(), path)
	if err != nil {
		return err
	}

	changed, err := applyLinks(cmd, c, path, linksRemoteFlag, linksRepoURLFlag, linksTagPrefixFlag)
	if err != nil {
		return err
	}

	if !linksWriteFlag {
		for _, e := range c.Entries {
			if e.CompareURL != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s]: %s\n", e.Version, e.CompareURL)
			}
		}
		return nil
	}

	if err := writeChangelog(path, c); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "updated %d link(s) in %s\n", changed, path)
	return nil
}

// applyLinks regenerates the compare URLs of c. Flag values win over the
// configuration.
func applyLinks(cmd *cobra.Command, c *changelog.Changelog, path, remote, repoURL, tagPrefix string) (int, error) {
	if !cmd.Flags().Changed("tag-prefix") {
		tagPrefix = appConfig.TagPrefix
	}

	url, err := resolveRepoURL(path, remote, repoURL)
	if err != nil {
		return 0, err
	}

	changed, err := changelog.GenerateCompareURLs(c, changelog.LinkOptions{RepoURL: url, TagPrefix: tagPrefix})
	if err != nil {
		return 0, clierrors.WrapWithMessage(err, clierrors.Configuration,
			fmt.Sprintf("invalid repository URL %q", url),
			"Use an https, ssh or git@host:owner/repo URL",
		)
	}
	log.Printf("[links] debug: %d compare URL(s) changed using %s", changed, url)
	return changed, nil
}

// resolveRepoURL returns the repository URL from the flag, the config, or
// the git remote of the repository holding the changelog.
func resolveRepoURL(changelogPath, remote, repoURL string) (string, error) {
	if repoURL != "" {
		return repoURL, nil
	}
	if appConfig.RepoURL != "" {
		return appConfig.RepoURL, nil
	}
	if remote == "" {
		remote = appConfig.Remote
	}

	dir, err := filepath.Abs(filepath.Dir(changelogPath))
	if err != nil {
		return "", clierrors.Wrap(err, clierrors.Runtime)
	}

	url, err := git.RemoteURL(dir, remote)
	switch {
	case errors.Is(err, git.ErrNotRepository):
		return "", clierrors.GitNotRepository()
	case errors.Is(err, git.ErrRemoteNotFound):
		return "", clierrors.GitRemoteNotFound(remote)
	case err != nil:
		return "", clierrors.WrapWithMessage(err, clierrors.Runtime, "reading git remote")
	}
	return url, nil
}
