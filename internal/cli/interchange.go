package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ariel-frischer/kacl/internal/changelog"
	clierrors "github.com/ariel-frischer/kacl/internal/errors"
	"github.com/spf13/cobra"
)

var (
	exportFormatFlag  string
	exportProjectFlag string
	exportOutputFlag  string

	importFormatFlag string
	importOutputFlag string
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Convert a changelog to YAML, JSON or TOML",
	Long: `Convert a Markdown changelog into structured data. Each version becomes a
record with its version, date, yanked flag, compare URL and changes grouped
by category. Empty categories are omitted.

The format defaults to the extension of --output, then to YAML.`,
	Example: `  kacl export
  kacl export --format json > changelog.json
  kacl export docs/CHANGELOG.md -o changelog.toml --project acme`,
	Args: validArgs(cobra.MaximumNArgs(1)),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Build a Markdown changelog from YAML, JSON or TOML",
	Long: `Read structured changelog data, as written by 'kacl export', validate it
and write the canonical Markdown changelog. The format defaults to the
file extension. Use "-" to read from stdin together with --format.`,
	Example: `  kacl import changelog.yaml
  kacl import changelog.json -o CHANGELOG.md
  cat data.toml | kacl import - --format toml`,
	Args: validArgs(cobra.ExactArgs(1)),
	RunE: runImport,
}

func init() {
	exportCmd.GroupID = GroupDocuments
	importCmd.GroupID = GroupDocuments
	rootCmd.AddCommand(exportCmd, importCmd)

	exportCmd.Flags().StringVar(&exportFormatFlag, "format", "", "Output format: yaml, json or toml")
	exportCmd.Flags().StringVar(&exportProjectFlag, "project", "", "Project name recorded in the output")
	exportCmd.Flags().StringVarP(&exportOutputFlag, "output", "o", "", "Write to a file instead of stdout")

	importCmd.Flags().StringVar(&importFormatFlag, "format", "", "Input format: yaml, json or toml")
	importCmd.Flags().StringVarP(&importOutputFlag, "output", "o", "", "Write to a file instead of stdout")
}

// resolveFormat picks the explicit format, else the one implied by path's
// extension, else fallback.
func resolveFormat(explicit, path string, fallback changelog.Format) (changelog.Format, error) {
	if explicit != "" {
		f, err := changelog.ParseFormat(explicit)
		if err != nil {
			return "", clierrors.NewArgumentError(err.Error(), "Valid formats: yaml, json, toml")
		}
		return f, nil
	}
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		if f, err := changelog.ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	if fallback == "" {
		return "", clierrors.NewArgumentError(
			fmt.Sprintf("cannot infer the format of %q", path),
			"Pass --format yaml, json or toml",
		)
	}
	return fallback, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := resolveFormat(exportFormatFlag, exportOutputFlag, changelog.FormatYAML)
	if err != nil {
		return err
	}

	c, err := loadChangelog(cmd.Context(), targetAt(args, 0))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := changelog.Export(c, format, &buf, exportProjectFlag); err != nil {
		return clierrors.Wrap(err, clierrors.Runtime)
	}

	if exportOutputFlag == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := writeFileAtomic(exportOutputFlag, buf.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "exported %d versions to %s\n", c.EntryCount(), exportOutputFlag)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	source := args[0]
	format, err := resolveFormat(importFormatFlag, source, "")
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	if source != "-" {
		f, err := os.Open(source)
		if err != nil {
			if os.IsNotExist(err) {
				return clierrors.NewPrerequisiteError(fmt.Sprintf("file not found: %s", source))
			}
			return clierrors.WrapWithMessage(err, clierrors.Runtime, fmt.Sprintf("reading %s", source))
		}
		defer f.Close()
		in = f
	}

	c, err := changelog.Import(in, format)
	if err != nil {
		return clierrors.ImportInvalid(source, err)
	}

	out, err := renderChangelog(c)
	if err != nil {
		return err
	}

	if importOutputFlag == "" {
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	}
	if err := writeChangelogText(importOutputFlag, out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d versions to %s\n", c.EntryCount(), importOutputFlag)
	return nil
}
