package changelog

import (
	_ "embed"
	"fmt"
)

//go:embed CHANGELOG.md
var embeddedChangelog string

// Embedded returns the raw embedded CHANGELOG.md content as of this build.
func Embedded() string {
	return embeddedChangelog
}

// LoadEmbedded parses the embedded CHANGELOG.md so the CLI can show its own
// history without network or file system access.
func LoadEmbedded() (*Changelog, error) {
	if len(embeddedChangelog) == 0 {
		return nil, fmt.Errorf("embedded changelog is empty (binary may have been built without embedded content)")
	}

	return ParseString(embeddedChangelog)
}
