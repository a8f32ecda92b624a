package changelog

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// DefaultHeader is written above the entries unless WithHeader overrides it.
const DefaultHeader = `# Changelog

All notable changes to this project will be documented in this file.

The format is based on [Keep a Changelog](https://keepachangelog.com/en/1.0.0/),
and this project adheres to [Semantic Versioning](https://semver.org/spec/v2.0.0.html).`

// SerializeOption configures Serialize.
type SerializeOption func(*serializeOptions)

type serializeOptions struct {
	header string
}

// WithHeader replaces DefaultHeader. The header is written verbatim followed
// by a newline.
func WithHeader(header string) SerializeOption {
	return func(o *serializeOptions) {
		o.header = header
	}
}

// SerializeString is a convenience function that serializes to a string.
func SerializeString(c *Changelog, opts ...SerializeOption) (string, error) {
	var b strings.Builder
	if err := Serialize(c, &b, opts...); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Serialize writes c as a Keep a Changelog Markdown document. Category sections
// are written in canonical order regardless of how they were added. The input
// is validated before anything is written; an invalid changelog yields an
// *InputError. c is never modified.
func Serialize(c *Changelog, w io.Writer, opts ...SerializeOption) error {
	o := serializeOptions{header: DefaultHeader}
	for _, opt := range opts {
		opt(&o)
	}

	if err := validateForSerialize(c); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(o.header + "\n")

	hasLinks := false
	for _, e := range c.Entries {
		writeEntry(bw, e)
		if e.CompareURL != "" {
			hasLinks = true
		}
	}

	if hasLinks {
		bw.WriteString("\n")
		for _, e := range c.Entries {
			if e.CompareURL != "" {
				fmt.Fprintf(bw, "[%s]: %s\n", e.Version, e.CompareURL)
			}
		}
	}

	return bw.Flush()
}

func validateForSerialize(c *Changelog) error {
	if c == nil {
		return &InputError{Message: `"changelog" parameter must be a list of entries`}
	}
	for i, e := range c.Entries {
		if e == nil {
			return &InputError{Index: i + 1, Message: `"changelog" parameter must be a list of entries`}
		}
	}
	for i, e := range c.Entries {
		if !e.Version.IsValid() {
			return &InputError{
				Index:   i + 1,
				Message: fmt.Sprintf(`Changelog entry #%d was missing a "version" value`, i+1),
			}
		}
	}
	return nil
}

func writeEntry(w *bufio.Writer, e *Entry) {
	w.WriteString("\n" + FormatHeading(e) + "\n")

	for _, c := range Categories() {
		items, ok := e.Changes[c]
		if !ok {
			continue
		}
		w.WriteString("\n### " + c.String() + "\n")
		w.WriteString("\n")
		for _, item := range items {
			w.WriteString(formatItem(item) + "\n")
		}
	}
}

// FormatHeading returns the "## [version] - date [YANKED]" line for e.
func FormatHeading(e *Entry) string {
	heading := "## [" + e.Version.String() + "]"
	if e.Date != nil {
		heading += dateSeparator + e.Date.String()
	}
	if e.Yanked {
		heading += yankedSuffix
	}
	return heading
}

// formatItem renders a bullet. Lines after the first are indented by two
// spaces; empty lines stay empty so paragraph breaks carry no trailing spaces.
func formatItem(item string) string {
	lines := strings.Split(item, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = continuation + lines[i]
		}
	}
	return "- " + strings.Join(lines, "\n")
}
