package changelog

import (
	"errors"
	"fmt"
	"slices"

	"cloud.google.com/go/civil"
)

// ReleaseError is returned when the Unreleased entry cannot be promoted.
type ReleaseError struct {
	Version string
	Reason  string
}

func (e *ReleaseError) Error() string {
	if e.Version == "" {
		return "cannot release: " + e.Reason
	}
	return fmt.Sprintf("cannot release %s: %s", e.Version, e.Reason)
}

// IsReleaseError returns true if the error is a ReleaseError.
func IsReleaseError(err error) bool {
	var re *ReleaseError
	return errors.As(err, &re)
}

// Release turns the Unreleased entry into version, dated date, and puts a
// fresh empty Unreleased entry in its place. The new version must be greater
// than every existing release. The released entry is returned.
func Release(c *Changelog, version string, date civil.Date) (*Entry, error) {
	if !date.IsValid() {
		return nil, &ReleaseError{Version: version, Reason: fmt.Sprintf("invalid date %q", date)}
	}

	v, err := ParseVersion(NormalizeVersion(version))
	if err != nil {
		return nil, &ReleaseError{Version: version, Reason: fmt.Sprintf("invalid semver version: %v", err)}
	}
	if !v.IsReleased() {
		return nil, &ReleaseError{Version: version, Reason: "target must be a semantic version"}
	}

	idx := slices.IndexFunc(c.Entries, func(e *Entry) bool { return e.Version.IsUnreleased() })
	if idx < 0 {
		return nil, &ReleaseError{Version: v.String(), Reason: "changelog has no Unreleased entry"}
	}
	unreleased := c.Entries[idx]
	if unreleased.IsEmpty() {
		return nil, &ReleaseError{Version: v.String(), Reason: "Unreleased entry has no changes"}
	}

	for _, e := range c.Entries {
		if !e.Version.IsReleased() {
			continue
		}
		if e.Version.Equal(v) {
			return nil, &ReleaseError{Version: v.String(), Reason: "version already exists"}
		}
		if !v.Semver().GreaterThan(e.Version.Semver()) {
			return nil, &ReleaseError{
				Version: v.String(),
				Reason:  fmt.Sprintf("version must be greater than existing release %s", e.Version),
			}
		}
	}

	unreleased.Version = v
	unreleased.Date = &date
	unreleased.Yanked = false
	unreleased.CompareURL = ""

	c.Entries = slices.Insert(c.Entries, idx, NewEntry(Unreleased()))
	return unreleased, nil
}
