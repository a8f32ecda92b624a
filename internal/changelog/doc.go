// Package changelog parses and writes changelogs in the Keep a Changelog
// format.
//
// Parsing is strict: the first line that does not fit the format stops the
// parse with a *ParsingError that names the line and, when it can be
// pinpointed, the column. Serialize writes the canonical form, so parsing
// its output reproduces the same Changelog.
//
// Beyond the Markdown round-trip the package offers querying, terminal and
// release-notes rendering, YAML/JSON/TOML interchange, compare link
// generation, release promotion and fetching over HTTP.
package changelog
