package changelog

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// UnreleasedLabel is the normalized heading label of the Unreleased entry.
const UnreleasedLabel = "Unreleased"

type versionKind int

const (
	versionInvalid versionKind = iota
	versionUnreleased
	versionReleased
)

// Version identifies a changelog entry. It is either the Unreleased sentinel or a
// released semantic version. The zero Version is invalid and stands for a missing
// version.
type Version struct {
	kind   versionKind
	semver *semver.Version
}

// Unreleased returns the Unreleased sentinel version.
func Unreleased() Version {
	return Version{kind: versionUnreleased}
}

// Released wraps a parsed semantic version. A nil sv yields the invalid Version.
func Released(sv *semver.Version) Version {
	if sv == nil {
		return Version{}
	}
	return Version{kind: versionReleased, semver: sv}
}

// ParseVersion parses a heading or link label. "unreleased" in any letter case
// yields the sentinel; everything else must be a strict SemVer 2.0 string.
func ParseVersion(s string) (Version, error) {
	if strings.EqualFold(s, UnreleasedLabel) {
		return Unreleased(), nil
	}
	sv, err := semver.StrictNewVersion(s)
	if err != nil {
		return Version{}, err
	}
	return Released(sv), nil
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(fmt.Sprintf("changelog: invalid version %q: %v", s, err))
	}
	return v
}

// IsUnreleased reports whether v is the Unreleased sentinel.
func (v Version) IsUnreleased() bool { return v.kind == versionUnreleased }

// IsReleased reports whether v carries a semantic version.
func (v Version) IsReleased() bool { return v.kind == versionReleased }

// IsValid reports whether v is set.
func (v Version) IsValid() bool { return v.kind != versionInvalid }

// Semver returns the semantic version, or nil for the sentinel and the zero Version.
func (v Version) Semver() *semver.Version { return v.semver }

// Equal compares versions per variant. Released versions compare by SemVer
// precedence, so build metadata is ignored.
func (v Version) Equal(o Version) bool {
	switch {
	case v.kind != o.kind:
		return false
	case v.kind == versionUnreleased:
		return true
	case v.kind == versionReleased:
		return v.semver.Equal(o.semver)
	default:
		return false
	}
}

// String returns the label used in headings and compare links.
func (v Version) String() string {
	switch v.kind {
	case versionUnreleased:
		return UnreleasedLabel
	case versionReleased:
		return v.semver.String()
	default:
		return ""
	}
}
