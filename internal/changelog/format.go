package changelog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// CategoryStyle defines the color and icon for a changelog category.
type CategoryStyle struct {
	Color *color.Color
	Icon  string
}

// categoryStyles maps categories to their terminal styling.
var categoryStyles = map[Category]CategoryStyle{
	Added:      {Color: color.New(color.FgGreen), Icon: "✓"},
	Changed:    {Color: color.New(color.FgBlue), Icon: "~"},
	Deprecated: {Color: color.New(color.FgRed), Icon: "⚠"},
	Removed:    {Color: color.New(color.FgRed), Icon: "✗"},
	Fixed:      {Color: color.New(color.FgYellow), Icon: "⚡"},
	Security:   {Color: color.New(color.FgMagenta), Icon: "🔒"},
}

// FormatOptions controls the terminal output formatting.
type FormatOptions struct {
	Plain    bool // Disable colors and icons
	MaxWidth int  // Maximum line width (0 = auto-detect)
}

// FormatTerminal writes items to w with terminal styling, grouped by version
// with color-coded category headers.
func FormatTerminal(items []Item, w io.Writer, opts FormatOptions) error {
	if len(items) == 0 {
		return nil
	}

	width := resolveWidth(opts.MaxWidth)

	for i, group := range groupItemsByVersion(items) {
		if err := formatVersionGroup(group, w, opts, width, i > 0); err != nil {
			return fmt.Errorf("formatting version %s: %w", group.version, err)
		}
	}

	return nil
}

// FormatEntry writes a single entry with its heading and all sections.
func FormatEntry(e *Entry, w io.Writer, opts FormatOptions) error {
	width := resolveWidth(opts.MaxWidth)

	if err := writeVersionHeader(e, w, opts); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	grouped := make(map[Category][]Item)
	for _, item := range e.Items() {
		grouped[item.Category] = append(grouped[item.Category], item)
	}
	for _, c := range Categories() {
		if items, ok := grouped[c]; ok {
			if err := writeCategorySection(c, items, w, opts, width); err != nil {
				return err
			}
		}
	}
	return nil
}

type versionGroup struct {
	version Version
	items   []Item
}

// groupItemsByVersion groups consecutive items by version, preserving order.
func groupItemsByVersion(items []Item) []versionGroup {
	var groups []versionGroup
	var current *versionGroup

	for _, it := range items {
		if current == nil || !current.version.Equal(it.Version) {
			if current != nil {
				groups = append(groups, *current)
			}
			current = &versionGroup{version: it.Version}
		}
		current.items = append(current.items, it)
	}

	if current != nil {
		groups = append(groups, *current)
	}

	return groups
}

func formatVersionGroup(group versionGroup, w io.Writer, opts FormatOptions, width int, addSeparator bool) error {
	if addSeparator {
		fmt.Fprintln(w)
	}

	if err := writeVersionHeader(&Entry{Version: group.version}, w, opts); err != nil {
		return err
	}

	grouped := make(map[Category][]Item)
	for _, it := range group.items {
		grouped[it.Category] = append(grouped[it.Category], it)
	}
	for _, c := range Categories() {
		if items, ok := grouped[c]; ok {
			if err := writeCategorySection(c, items, w, opts, width); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeVersionHeader(e *Entry, w io.Writer, opts FormatOptions) error {
	header := UnreleasedLabel
	if e.Version.IsReleased() {
		header = "v" + e.Version.String()
		if e.Date != nil {
			header = fmt.Sprintf("%s (%s)", header, e.Date)
		}
	}
	if e.Yanked {
		header += " [YANKED]"
	}

	if opts.Plain {
		_, err := fmt.Fprintf(w, "## %s\n", header)
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	_, err := fmt.Fprintf(w, "## %s\n", bold(header))
	return err
}

func writeCategorySection(c Category, items []Item, w io.Writer, opts FormatOptions, width int) error {
	style := categoryStyles[c]

	if opts.Plain {
		if _, err := fmt.Fprintf(w, "\n### %s\n", c); err != nil {
			return err
		}
	} else {
		colored := style.Color.SprintFunc()
		if _, err := fmt.Fprintf(w, "\n%s %s\n", colored(style.Icon), colored(c.String())); err != nil {
			return err
		}
	}

	for _, it := range items {
		if err := writeItem(it, style, w, opts, width); err != nil {
			return err
		}
	}
	return nil
}

func writeItem(it Item, style CategoryStyle, w io.Writer, opts FormatOptions, width int) error {
	prefix := "  - "
	text := strings.ReplaceAll(it.Text, "\n", "\n    ")

	if opts.Plain {
		_, err := fmt.Fprintf(w, "%s%s\n", prefix, text)
		return err
	}

	wrapped := wrapText(it.Text, width-len(prefix), "    ")
	colored := style.Color.SprintFunc()
	_, err := fmt.Fprintf(w, "%s%s\n", prefix, colored(wrapped))
	return err
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText wraps each paragraph of text to maxWidth display cells, using
// indent for continuation lines.
func wrapText(text string, maxWidth int, indent string) string {
	paragraphs := strings.Split(text, "\n")
	for i, para := range paragraphs {
		paragraphs[i] = wrapLine(para, maxWidth, indent)
	}
	return strings.Join(paragraphs, "\n"+indent)
}

func wrapLine(line string, maxWidth int, indent string) string {
	if maxWidth <= 0 || runewidth.StringWidth(line) <= maxWidth {
		return line
	}

	var lines []string
	var current strings.Builder
	currentWidth := 0

	for _, word := range strings.Fields(line) {
		ww := runewidth.StringWidth(word)
		if currentWidth > 0 && currentWidth+1+ww > maxWidth {
			lines = append(lines, current.String())
			current.Reset()
			currentWidth = 0
		}
		if currentWidth > 0 {
			current.WriteByte(' ')
			currentWidth++
		}
		current.WriteString(word)
		currentWidth += ww
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}

	return strings.Join(lines, "\n"+indent)
}

// FormatItemSummary returns a brief one-line summary of an item.
func FormatItemSummary(it Item, opts FormatOptions) string {
	style := categoryStyles[it.Category]
	text := runewidth.Truncate(strings.SplitN(it.Text, "\n", 2)[0], 60, "...")

	if opts.Plain {
		return fmt.Sprintf("[%s] %s", it.Category.Key(), text)
	}

	colored := style.Color.SprintFunc()
	return fmt.Sprintf("%s %s", colored(style.Icon), text)
}
