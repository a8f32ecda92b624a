package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ariel-frischer/kacl/internal/changelog"
)

// Common error messages for the kacl CLI.
// These templates ensure consistent, actionable error messages.

// parseHints maps the leading text of a parsing error to remediation steps.
var parseHints = []struct {
	prefix string
	steps  []string
}{
	{"Extra space(s)", []string{"Remove the extra whitespace at the reported column"}},
	{"Version and date must be separated", []string{`Write release headings as "## [1.2.3] - 2024-01-31"`}},
	{"Unable to parse changelog entry date", []string{"Dates must be ISO 8601 calendar dates (YYYY-MM-DD)", `Append " [YANKED]" after the date for withdrawn releases`}},
	{"Version must be enclosed", []string{`Wrap the version in square brackets: "## [1.2.3]"`}},
	{"Failed parsing semver version", []string{"Use a full semantic version such as 1.2.3 or 2.0.0-rc.1", `Use "Unreleased" for changes not yet released`}},
	{"Invalid change type", []string{"Valid sections: ### Added, Changed, Deprecated, Removed, Fixed, Security", "Section names are case-sensitive"}},
	{"Multiple ", []string{"Merge the duplicate sections into one"}},
	{"Change not under a category section", []string{"Add a \"### Added\" (or other category) heading above the bullet"}},
	{"No corresponding record for compare url", []string{"Remove the link or add a matching \"## [version]\" entry", "Regenerate links with: kacl links --write"}},
	{"After compare URL definitions have started", []string{"Move compare links to the very end of the file"}},
	{"Unable to decode line", []string{"Pass the file's encoding with --encoding (e.g. --encoding latin1)", "Or convert the file to UTF-8"}},
	{"Unrecognized line pattern", []string{"Indent continuation lines of a bullet by two spaces", "Start bullets with \"- \" or \"* \""}},
}

// FromParsingError converts a changelog parse failure for source (a file path
// or URL) into a Format error pointing at the offending line and column.
// Errors that are not parse failures are wrapped as Runtime errors.
func FromParsingError(source string, err error) *CLIError {
	var pe *changelog.ParsingError
	if !errors.As(err, &pe) {
		return WrapWithMessage(err, Runtime, fmt.Sprintf("reading %s", source))
	}

	location := source
	if line, col := pe.Position(); line > 0 {
		location = fmt.Sprintf("%s:%d", source, line)
		if col > 0 {
			location = fmt.Sprintf("%s:%d", location, col)
		}
	}

	cliErr := New(Format, pe.Message).At(location)
	cliErr.Err = err
	for _, hint := range parseHints {
		if strings.HasPrefix(pe.Message, hint.prefix) {
			cliErr.Remediation = append(cliErr.Remediation, hint.steps...)
			break
		}
	}
	cliErr.Remediation = append(cliErr.Remediation, "See https://keepachangelog.com/en/1.1.0/ for the expected format")
	return cliErr
}

// ChangelogNotFound creates an error for a missing changelog file.
func ChangelogNotFound(path string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("changelog not found: %s", path),
		"Pass the path explicitly: kacl validate path/to/CHANGELOG.md",
		"Or set \"file\" in .kacl.yml or KACL_FILE",
	)
}

// ChangelogNotCanonical creates an error when fmt --check finds drift.
func ChangelogNotCanonical(path string) *CLIError {
	return New(Format, fmt.Sprintf("%s is not in canonical form", path),
		"Rewrite it with: kacl fmt "+path,
	)
}

// VersionNotFound creates an error for an unknown changelog version.
func VersionNotFound(err *changelog.VersionNotFoundError) *CLIError {
	return Wrap(err, Argument,
		"List versions with: kacl show",
		"Versions may be given with or without a leading \"v\"",
	)
}

// ReleaseFailed creates an error when the Unreleased entry cannot be promoted.
func ReleaseFailed(err error) *CLIError {
	return Wrap(err, Argument,
		"Add changes under \"## [Unreleased]\" before releasing",
		"Pick a version greater than the latest release",
	)
}

// ImportInvalid creates an error for a structured changelog that fails validation.
func ImportInvalid(path string, err error) *CLIError {
	return WrapWithMessage(err, Format,
		fmt.Sprintf("invalid changelog data in %s", path),
		"Each version needs a \"version\" field (semantic version or \"unreleased\")",
		"Dates must use YYYY-MM-DD",
	)
}

// RemoteFetchFailed creates an error when a remote changelog cannot be downloaded.
func RemoteFetchFailed(url string, err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		fmt.Sprintf("fetching %s", url),
		"Check your network connection and the URL",
		"Raise the timeout with KACL_REMOTE_TIMEOUT=30s",
	)
}

// ConfigFileNotFound creates an error for missing config file.
func ConfigFileNotFound(path string) *CLIError {
	return NewConfigError(
		fmt.Sprintf("config file not found: %s", path),
		"Create the file or drop the --config flag",
	)
}

// ConfigParseError creates an error for invalid config file format.
func ConfigParseError(path string, err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		fmt.Sprintf("failed to parse config file: %s", path),
		"Check the file for YAML syntax errors",
		"Show the effective configuration with: kacl config show",
	)
}

// ChangelogNotEncodable creates an error when rendered text cannot be written
// in the configured encoding.
func ChangelogNotEncodable(path, encoding string, err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		fmt.Sprintf("cannot write %s as %s", path, encoding),
		"Pick an encoding that can represent every character, e.g. --encoding utf-8",
		"Or remove the characters the encoding lacks from the changelog",
	)
}

// InvalidFlagCombination creates an error for incompatible flag combinations.
func InvalidFlagCombination(flags string, reason string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid flag combination: %s", flags),
		reason,
		"Use 'kacl <command> --help' to see valid options",
	)
}

// FileNotWritable creates an error when a file cannot be written.
func FileNotWritable(path string, err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		fmt.Sprintf("cannot write to file: %s", path),
		"Check file permissions: ls -la "+path,
		"Ensure parent directory exists and is writable",
	)
}

// GitNotRepository creates an error when not in a git repository.
func GitNotRepository() *CLIError {
	return NewPrerequisiteError(
		"not a git repository",
		"Pass the repository URL explicitly: kacl links --repo-url https://github.com/owner/repo",
		"Or set \"repo_url\" in .kacl.yml",
	)
}

// GitRemoteNotFound creates an error when the configured remote is missing.
func GitRemoteNotFound(name string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("git remote %q not found", name),
		"List remotes with: git remote -v",
		"Choose another remote with --remote, or pass --repo-url",
	)
}
