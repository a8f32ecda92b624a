package changelog

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultTagPrefix is prepended to versions to form git tag names.
const DefaultTagPrefix = "v"

// LinkOptions controls compare URL generation.
type LinkOptions struct {
	RepoURL   string // Web URL of the repository, e.g. https://github.com/o/r
	TagPrefix string // Prefix of release tags; "v" when empty
}

// GenerateCompareURLs sets CompareURL on every entry of c following the Keep a
// Changelog conventions. Unreleased compares the latest release with HEAD,
// each release compares with the release below it, and the oldest release
// links to its tag. An Unreleased entry with no release below it is left
// without a link. It returns the number of entries whose URL changed.
func GenerateCompareURLs(c *Changelog, opts LinkOptions) (int, error) {
	repoURL, err := NormalizeRepoURL(opts.RepoURL)
	if err != nil {
		return 0, err
	}
	prefix := opts.TagPrefix
	if prefix == "" {
		prefix = DefaultTagPrefix
	}

	changed := 0
	for i, e := range c.Entries {
		link := formatCompareURL(c.Entries, i, repoURL, prefix)
		if link == "" {
			continue
		}
		if e.CompareURL != link {
			e.CompareURL = link
			changed++
		}
	}
	return changed, nil
}

func formatCompareURL(entries []*Entry, index int, repoURL, prefix string) string {
	e := entries[index]
	prev := previousRelease(entries, index)

	if e.Version.IsUnreleased() {
		if prev == nil {
			return ""
		}
		return fmt.Sprintf("%s/compare/%s%s...HEAD", repoURL, prefix, prev.Version)
	}

	if prev != nil {
		return fmt.Sprintf("%s/compare/%s%s...%s%s", repoURL, prefix, prev.Version, prefix, e.Version)
	}
	return fmt.Sprintf("%s/releases/tag/%s%s", repoURL, prefix, e.Version)
}

// previousRelease returns the nearest released entry below index.
func previousRelease(entries []*Entry, index int) *Entry {
	for _, e := range entries[index+1:] {
		if e.Version.IsReleased() {
			return e
		}
	}
	return nil
}

// NormalizeRepoURL converts a git remote URL into a browsable https URL.
// It accepts scp-style ("git@github.com:o/r.git"), ssh:// and http(s)://
// forms and drops a trailing ".git" or slash.
func NormalizeRepoURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("repository URL is empty")
	}

	if !strings.Contains(raw, "://") {
		// scp-like syntax: [user@]host:path
		host, path, ok := strings.Cut(raw, ":")
		if !ok || path == "" {
			return "", fmt.Errorf("unrecognized repository URL %q", raw)
		}
		if _, h, found := strings.Cut(host, "@"); found {
			host = h
		}
		raw = "https://" + host + "/" + strings.TrimPrefix(path, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing repository URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("repository URL %q has no host", raw)
	}

	switch u.Scheme {
	case "http", "https":
	case "ssh", "git", "git+ssh":
		u.Scheme = "https"
		u.Host = u.Hostname()
	default:
		return "", fmt.Errorf("unsupported repository URL scheme %q", u.Scheme)
	}

	u.User = nil
	u.Path = strings.TrimSuffix(strings.TrimSuffix(u.Path, "/"), ".git")
	u.RawQuery = ""
	u.Fragment = ""

	return u.String(), nil
}
