package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// sampleChangelog is in canonical form with the default header.
const sampleChangelog = `# Changelog

All notable changes to this project will be documented in this file.

The format is based on [Keep a Changelog](https://keepachangelog.com/en/1.0.0/),
and this project adheres to [Semantic Versioning](https://semver.org/spec/v2.0.0.html).

## [Unreleased]

### Added

- Dutch translation
- Russian translation

## [1.1.0] - 2019-02-15

### Added

- Danish translation
  contributed by a volunteer

### Fixed

- Broken links in the README

## [1.0.0] - 2017-06-20 [YANKED]

### Removed

- Section about "changelog" vs "CHANGELOG".

[Unreleased]: https://github.com/acme/app/compare/v1.1.0...HEAD
[1.1.0]: https://github.com/acme/app/compare/v1.0.0...v1.1.0
[1.0.0]: https://github.com/acme/app/releases/tag/v1.0.0
`

// messyChangelog parses but is not canonical.
const messyChangelog = `# Changelog
## [Unreleased]
### Fixed
* Crash on empty input
### Added
- JSON export
## [0.1.0] - 2024-01-01
### Added
- First release
`

// brokenChangelog fails on line 4: the date is not separated by " - ".
const brokenChangelog = `# Changelog

## [Unreleased]
## [1.0.0] 2024-01-01
`

// cliResult is the outcome of one in-process kacl invocation.
type cliResult struct {
	Stdout string
	Stderr string
	Err    error
}

// ExitCode maps the command error like main does.
func (r cliResult) ExitCode() int {
	return ExitCode(r.Err)
}

// newWorkspace moves the test into an empty directory with its own HOME
// and user config directory. Tests using it cannot run in parallel.
func newWorkspace(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", filepath.Join(dir, "home"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "home", ".config"))
	t.Chdir(dir)

	return dir
}

// writeFile creates path (relative to the working directory) with content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if dir := filepath.Dir(path); dir != "." {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// runCLI executes kacl with args against the global command tree and
// reports errors the way Execute does.
func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	return runCLIWithInput(t, "", args...)
}

func runCLIWithInput(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	return runCLIContext(t, context.Background(), stdin, args...)
}

func runCLIContext(t *testing.T, ctx context.Context, stdin string, args ...string) cliResult {
	t.Helper()

	resetCommandState(t)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(ctx)
	reportError(&stderr, err)

	return cliResult{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

// resetCommandState restores every flag of the command tree to its default
// so values from a previous invocation do not leak into the next one.
func resetCommandState(t *testing.T) {
	t.Helper()

	appConfig = nil
	origNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = origNoColor })

	var reset func(cmd *cobra.Command)
	reset = func(cmd *cobra.Command) {
		for _, fs := range []*pflag.FlagSet{cmd.PersistentFlags(), cmd.LocalFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				require.NoError(t, f.Value.Set(f.DefValue))
				f.Changed = false
			})
		}
		for _, sub := range cmd.Commands() {
			reset(sub)
		}
	}
	reset(rootCmd)
}
