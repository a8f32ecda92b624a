package changelog

import (
	"fmt"
	"strings"
)

// VersionNotFoundError is returned when a requested version doesn't exist.
type VersionNotFoundError struct {
	Version           string
	AvailableVersions []string
}

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("version %q not found (available: %s)",
		e.Version, strings.Join(e.AvailableVersions, ", "))
}

// NormalizeVersion strips a leading "v" so "v1.2.0" and "1.2.0" address the
// same entry.
func NormalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	if strings.HasPrefix(version, "v") || strings.HasPrefix(version, "V") {
		return version[1:]
	}
	return version
}

// GetVersion returns the first entry matching version. Accepts "v1.2.0",
// "1.2.0" and "unreleased" in any letter case.
func (c *Changelog) GetVersion(version string) (*Entry, error) {
	v, err := ParseVersion(NormalizeVersion(version))
	if err == nil {
		for _, e := range c.Entries {
			if e.Version.Equal(v) {
				return e, nil
			}
		}
	}

	return nil, &VersionNotFoundError{
		Version:           version,
		AvailableVersions: c.ListVersions(),
	}
}

// Unreleased returns the Unreleased entry, or nil if there is none.
func (c *Changelog) Unreleased() *Entry {
	for _, e := range c.Entries {
		if e.Version.IsUnreleased() {
			return e
		}
	}
	return nil
}

// HasUnreleased returns true if the changelog has an Unreleased entry.
func (c *Changelog) HasUnreleased() bool {
	return c.Unreleased() != nil
}

// LatestRelease returns the first released entry in document order, skipping
// Unreleased. Returns nil if nothing was released yet.
func (c *Changelog) LatestRelease() *Entry {
	for _, e := range c.Entries {
		if e.Version.IsReleased() {
			return e
		}
	}
	return nil
}

// ListVersions returns the version labels in document order.
func (c *Changelog) ListVersions() []string {
	versions := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		versions[i] = e.Version.String()
	}
	return versions
}

// AllItems returns every change in document order; within an entry items
// follow canonical category order.
func (c *Changelog) AllItems() []Item {
	var items []Item
	for _, e := range c.Entries {
		items = append(items, e.Items()...)
	}
	return items
}

// LastN returns the n most recent items. If n exceeds the total, all items
// are returned.
func (c *Changelog) LastN(n int) []Item {
	if n <= 0 {
		return []Item{}
	}

	items := c.AllItems()
	if len(items) <= n {
		return items
	}
	return items[:n]
}

// EntryCount returns the number of entries.
func (c *Changelog) EntryCount() int {
	return len(c.Entries)
}

// ItemCount returns the total number of items across all entries.
func (c *Changelog) ItemCount() int {
	count := 0
	for _, e := range c.Entries {
		count += e.Count()
	}
	return count
}
