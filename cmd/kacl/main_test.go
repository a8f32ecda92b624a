//go:build e2e

package main

import (
	"testing"

	"github.com/ariel-frischer/kacl/internal/cli"
	"github.com/ariel-frischer/kacl/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const releasedChangelog = `# Changelog

## [Unreleased]
### Added
- Webhooks

## [0.1.0] - 2024-01-01
### Added
- First release
`

// TestE2E_ExitCodes verifies the process exit code of each failure class.
func TestE2E_ExitCodes(t *testing.T) {
	tests := map[string]struct {
		description   string
		files         map[string]string
		args          []string
		wantExitCode  int
		wantOutSubstr string
		wantErrSubstr string
	}{
		"valid changelog": {
			description:   "validate succeeds on a well-formed file",
			files:         map[string]string{"CHANGELOG.md": releasedChangelog},
			args:          []string{"validate"},
			wantExitCode:  cli.ExitSuccess,
			wantOutSubstr: "CHANGELOG.md (2 versions, 2 changes)",
		},
		"malformed changelog": {
			description:   "validate reports line and column",
			files:         map[string]string{"CHANGELOG.md": "# Changelog\n\n## [1.0.0] 2024-01-01\n"},
			args:          []string{"validate"},
			wantExitCode:  cli.ExitValidationFailed,
			wantErrSubstr: "CHANGELOG.md:3:11",
		},
		"not canonical": {
			description:   "fmt --check fails on drift",
			files:         map[string]string{"CHANGELOG.md": releasedChangelog},
			args:          []string{"fmt", "--check"},
			wantExitCode:  cli.ExitValidationFailed,
			wantErrSubstr: "not in canonical form",
		},
		"missing changelog": {
			description:   "a missing file is a missing prerequisite",
			args:          []string{"validate", "nope.md"},
			wantExitCode:  cli.ExitMissingDependencies,
			wantErrSubstr: "changelog not found: nope.md",
		},
		"missing import source": {
			description:   "import of a missing file",
			args:          []string{"import", "nope.yaml"},
			wantExitCode:  cli.ExitMissingDependencies,
			wantErrSubstr: "file not found",
		},
		"bad arguments": {
			description:   "unknown flags are argument errors",
			args:          []string{"show", "--bogus"},
			wantExitCode:  cli.ExitInvalidArguments,
			wantErrSubstr: "unknown flag",
		},
		"bad config": {
			description:   "invalid config values stop every command",
			files:         map[string]string{".kacl.yml": "jobs: 100\n", "CHANGELOG.md": releasedChangelog},
			args:          []string{"validate"},
			wantExitCode:  cli.ExitInvalidArguments,
			wantErrSubstr: "must be at most 64",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			env := testutil.NewE2EEnv(t)
			for path, content := range tt.files {
				env.WriteFile(path, content)
			}

			result := env.Run(tt.args...)

			assert.Equal(t, tt.wantExitCode, result.ExitCode, "%s\nstderr: %s", tt.description, result.Stderr)
			assert.Contains(t, result.Stdout, tt.wantOutSubstr)
			assert.Contains(t, result.Stderr, tt.wantErrSubstr)
		})
	}
}

// TestE2E_ReleaseWorkflow formats, releases and links a changelog the way a
// release pipeline would.
func TestE2E_ReleaseWorkflow(t *testing.T) {
	env := testutil.NewE2EEnv(t)
	env.WriteFile("CHANGELOG.md", releasedChangelog)
	env.InitGitRepo("git@github.com:acme/app.git")

	result := env.Run("fmt")
	require.Equal(t, cli.ExitSuccess, result.ExitCode, result.Stderr)

	result = env.Run("release", "0.2.0", "--date", "2024-02-01", "--links")
	require.Equal(t, cli.ExitSuccess, result.ExitCode, result.Stderr)
	assert.Contains(t, result.Stdout, "released 0.2.0 (1 changes)")

	content := env.ReadFile("CHANGELOG.md")
	assert.Contains(t, content, "## [0.2.0] - 2024-02-01\n\n### Added\n\n- Webhooks\n")
	assert.Contains(t, content, "[0.2.0]: https://github.com/acme/app/compare/v0.1.0...v0.2.0\n")

	result = env.Run("extract", "v0.2.0")
	require.Equal(t, cli.ExitSuccess, result.ExitCode, result.Stderr)
	assert.Equal(t, "### Added\n\n- Webhooks\n", result.Stdout)

	result = env.Run("fmt", "--check")
	assert.Equal(t, cli.ExitSuccess, result.ExitCode, result.Stderr)
}

// TestE2E_EnvironmentConfig verifies KACL_* variables reach the binary.
func TestE2E_EnvironmentConfig(t *testing.T) {
	env := testutil.NewE2EEnv(t)
	env.WriteFile("docs/CHANGES.md", releasedChangelog)
	env.Setenv("KACL_FILE", "docs/CHANGES.md")

	result := env.Run("config", "show")
	require.Equal(t, cli.ExitSuccess, result.ExitCode, result.Stderr)
	assert.Regexp(t, `(?m)^file\s+docs/CHANGES\.md\s+\(env\)$`, result.Stdout)

	result = env.Run("show", "unreleased")
	require.Equal(t, cli.ExitSuccess, result.ExitCode, result.Stderr)
	assert.Contains(t, result.Stdout, "Webhooks")
}

// TestE2E_ExportImport round-trips a changelog through stdin.
func TestE2E_ExportImport(t *testing.T) {
	env := testutil.NewE2EEnv(t)
	env.WriteFile("CHANGELOG.md", releasedChangelog)

	exported := env.Run("export", "--format", "json")
	require.Equal(t, cli.ExitSuccess, exported.ExitCode, exported.Stderr)

	imported := env.RunWithInput(exported.Stdout, "import", "-", "--format", "json")
	require.Equal(t, cli.ExitSuccess, imported.ExitCode, imported.Stderr)

	formatted := env.Run("fmt", "--stdout")
	require.Equal(t, cli.ExitSuccess, formatted.ExitCode, formatted.Stderr)
	assert.Equal(t, formatted.Stdout, imported.Stdout)
}
