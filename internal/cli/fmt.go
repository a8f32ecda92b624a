package cli

import (
	"bytes"
	"fmt"
	"os"

	clierrors "github.com/ariel-frischer/kacl/internal/errors"
	"github.com/spf13/cobra"
)

var (
	fmtCheckFlag      bool
	fmtStdoutFlag     bool
	fmtHeaderFileFlag string
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [file]",
	Short: "Rewrite a changelog in canonical form",
	Long: `Parse a changelog and write it back in canonical form: the standard
header, one blank line between blocks, categories in the order Added,
Changed, Deprecated, Removed, Fixed, Security, and continuation lines
indented by two spaces.

With --check nothing is written; the command exits with code 1 when the file
differs from its canonical form, which makes it suitable for CI.

The default header can be replaced with --header-file or the "header_file"
config key.`,
	Example: `  kacl fmt
  kacl fmt docs/CHANGELOG.md
  kacl fmt --check
  kacl fmt --stdout | diff CHANGELOG.md -`,
	Args: validArgs(cobra.MaximumNArgs(1)),
	RunE: runFmt,
}

func init() {
	fmtCmd.GroupID = GroupDocuments
	rootCmd.AddCommand(fmtCmd)

	fmtCmd.Flags().BoolVar(&fmtCheckFlag, "check", false, "Report whether the file is canonical without writing it")
	fmtCmd.Flags().BoolVar(&fmtStdoutFlag, "stdout", false, "Write the canonical form to stdout instead of the file")
	fmtCmd.Flags().StringVar(&fmtHeaderFileFlag, "header-file", "", "File with a custom header (overrides header_file)")
}

func runFmt(cmd *cobra.Command, args []string) error {
	if fmtCheckFlag && fmtStdoutFlag {
		return clierrors.InvalidFlagCombination("--check with --stdout",
			"Use --check to test the file, or --stdout to print its canonical form",
		).WithUsage(cmd.UseLine())
	}

	path := targetAt(args, 0)
	if cmd.Flags().Changed("header-file") {
		appConfig.HeaderFile = fmtHeaderFileFlag
	}

	c, err := loadLocalChangelog(cmd.Context(), path)
	if err != nil {
		return err
	}

	canonical, err := renderChangelog(c)
	if err != nil {
		return err
	}

	if fmtStdoutFlag {
		fmt.Fprint(cmd.OutOrStdout(), canonical)
		return nil
	}

	current, err := os.ReadFile(path)
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Runtime, fmt.Sprintf("reading %s", path))
	}
	encoded, err := encodeChangelog(path, canonical)
	if err != nil {
		return err
	}
	if bytes.Equal(current, encoded) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is already canonical\n", path)
		return nil
	}

	if fmtCheckFlag {
		return clierrors.ChangelogNotCanonical(path)
	}

	if err := writeFileAtomic(path, encoded); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "formatted %s\n", path)
	return nil
}
