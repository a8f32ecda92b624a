package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/ariel-frischer/kacl/internal/changelog"
	clierrors "github.com/ariel-frischer/kacl/internal/errors"
	"github.com/ariel-frischer/kacl/internal/progress"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file|url...]",
	Short: "Check that changelogs follow Keep a Changelog",
	Long: `Parse one or more changelogs and report the first malformed line of each,
with its line and column.

Files and http(s) URLs may be mixed. They are checked concurrently, up to
"jobs" at a time (see 'kacl config keys'). Without arguments the configured
changelog file is checked.

Exit code 0 means every changelog is valid and 1 means at least one is not.
When every failure is a missing file the exit code is 4.`,
	Example: `  kacl validate
  kacl validate CHANGELOG.md packages/*/CHANGELOG.md
  kacl validate https://raw.githubusercontent.com/owner/repo/main/CHANGELOG.md`,
	Args: validArgs(cobra.ArbitraryArgs),
	RunE: runValidate,
}

func init() {
	validateCmd.GroupID = GroupDocuments
	rootCmd.AddCommand(validateCmd)
}

// validationResult is the outcome of checking one changelog.
type validationResult struct {
	target    string
	changelog *changelog.Changelog
	err       error
}

func runValidate(cmd *cobra.Command, args []string) error {
	targets := args
	if len(targets) == 0 {
		targets = []string{appConfig.File}
	}

	var spin *progress.Spinner
	if slices.ContainsFunc(targets, changelog.IsRemote) && !appConfig.Plain {
		spin = progress.NewSpinner(cmd.ErrOrStderr(), progress.DetectTerminalCapabilities(os.Stderr))
		spin.Start(fmt.Sprintf("Validating %d changelog(s)", len(targets)))
	}

	results := validateAll(cmd, targets)

	if spin != nil {
		spin.Stop()
	}
	return reportValidation(cmd, results)
}

// validateAll parses every target, at most appConfig.Jobs at a time, and
// returns the results in target order.
func validateAll(cmd *cobra.Command, targets []string) []validationResult {
	results := make([]validationResult, len(targets))

	var g errgroup.Group
	g.SetLimit(appConfig.Jobs)
	for i, target := range targets {
		g.Go(func() error {
			c, err := loadChangelog(cmd.Context(), target)
			results[i] = validationResult{target: target, changelog: c, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func reportValidation(cmd *cobra.Command, results []validationResult) error {
	symbols := progress.SelectSymbols(progress.TerminalCapabilities{SupportsUnicode: !appConfig.Plain})

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			if cliErr := clierrors.AsCLIError(r.err); cliErr != nil {
				clierrors.FprintError(cmd.ErrOrStderr(), cliErr, appConfig.Plain)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %v\n", symbols.Failure, r.target, r.err)
			}
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d versions, %d changes)\n",
			symbols.Checkmark, r.target, r.changelog.EntryCount(), r.changelog.ItemCount())
	}

	if len(results) > 1 {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d changelogs valid\n", len(results)-failed, len(results))
	}
	if failed > 0 {
		return NewExitError(failureExitCode(results))
	}
	return nil
}

// failureExitCode returns the exit code shared by every failed result, or
// ExitValidationFailed when the failures disagree.
func failureExitCode(results []validationResult) int {
	code := ExitSuccess
	for _, r := range results {
		if r.err == nil {
			continue
		}
		c := ExitCode(r.err)
		if code != ExitSuccess && c != code {
			return ExitValidationFailed
		}
		code = c
	}
	return code
}
