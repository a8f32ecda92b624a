package changelog

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
)

// RenderEntryMarkdown writes the category sections of e without the release
// heading. The output is suitable for release notes.
func RenderEntryMarkdown(e *Entry, w io.Writer) error {
	first := true
	for _, c := range Categories() {
		items := e.Changes[c]
		if len(items) == 0 {
			continue
		}

		if !first {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		first = false

		if _, err := fmt.Fprintf(w, "### %s\n\n", c); err != nil {
			return err
		}
		for _, item := range items {
			if _, err := fmt.Fprintln(w, formatItem(item)); err != nil {
				return err
			}
		}
	}
	return nil
}

// RenderEntryMarkdownString renders release notes for e to a string.
func RenderEntryMarkdownString(e *Entry) string {
	var b strings.Builder
	_ = RenderEntryMarkdown(e, &b)
	return b.String()
}

// RenderTerminalMarkdown styles Markdown for a terminal using glamour. With
// plain set, the notty style is used so no escape sequences are emitted.
func RenderTerminalMarkdown(md string, width int, plain bool) (string, error) {
	style := glamour.WithAutoStyle()
	if plain {
		style = glamour.WithStandardStyle("notty")
	}
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}
