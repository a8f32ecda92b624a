package changelog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"cloud.google.com/go/civil"
)

const (
	headingPrefix    = "## "
	subheadingPrefix = "### "
	yankedSuffix     = " [YANKED]"
	dateSeparator    = " - "
	continuation     = "  "
)

var compareURLPattern = regexp.MustCompile(`^\[([^\]]+)\]: (https?://.*)$`)

// ParseOption configures Parse.
type ParseOption func(*parseOptions) error

type parseOptions struct {
	encoding string
}

// WithEncoding sets the encoding used to decode raw lines. The name is looked
// up in the IANA registry, e.g. "utf-8", "iso-8859-1", "windows-1252".
func WithEncoding(name string) ParseOption {
	return func(o *parseOptions) error {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("changelog: encoding name must not be empty")
		}
		o.encoding = name
		return nil
	}
}

// Load parses the changelog file at path.
func Load(path string, opts ...ParseOption) (*Changelog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening changelog file: %w", err)
	}
	defer f.Close()

	return LoadFromReader(f, opts...)
}

// LoadFromReader parses a changelog from r.
func LoadFromReader(r io.Reader, opts ...ParseOption) (*Changelog, error) {
	return Parse(NewReaderSource(r), opts...)
}

// ParseString parses a changelog held in memory.
func ParseString(s string) (*Changelog, error) {
	return Parse(NewStringSource(s))
}

// Parse reads every line from src and builds the changelog. Parsing stops at
// the first malformed line; the error is a *ParsingError carrying the line and,
// where it can be pinpointed, the column. No partial changelog is returned.
func Parse(src LineSource, opts ...ParseOption) (*Changelog, error) {
	o := parseOptions{encoding: DefaultEncoding}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	p := &parser{
		doc:     &Changelog{},
		decoder: newLineDecoder(o.encoding),
	}

	for {
		line, err := src.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", p.lineNo+1, err)
		}
		p.lineNo++

		text, err := p.text(line)
		if err != nil {
			return nil, err
		}
		if err := p.parseLine(text); err != nil {
			return nil, err
		}
	}

	p.closeSection()
	return p.doc, nil
}

// parser holds the state carried from one line to the next.
type parser struct {
	doc     *Changelog
	decoder *lineDecoder

	current            *Entry
	section            *Category
	compareURLsStarted bool
	lineNo             int
}

func (p *parser) text(line Line) (string, error) {
	switch line.kind {
	case lineText:
		return strings.TrimSuffix(line.text, "\n"), nil
	case lineRaw:
		s, err := p.decoder.decode(line.raw)
		if err != nil {
			return "", wrapParsingError(err,
				fmt.Sprintf(`Unable to decode line using encoding, "%s"`, p.decoder.name), p.lineNo, 0)
		}
		return strings.TrimSuffix(s, "\n"), nil
	default:
		return "", newParsingError(
			fmt.Sprintf(`Line source returned unreadable line type, "%s"`, line.kind), 0, 0)
	}
}

func (p *parser) parseLine(line string) error {
	switch {
	case strings.HasPrefix(line, headingPrefix) && !p.compareURLsStarted:
		return p.parseHeading(line)

	case p.current == nil:
		// Title and preamble text before the first release heading.
		return nil

	case strings.HasPrefix(line, subheadingPrefix) && !p.compareURLsStarted:
		return p.parseSubheading(line)

	case (strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ")) && !p.compareURLsStarted:
		if p.section == nil {
			return newParsingError("Change not under a category section", p.lineNo, 0)
		}
		p.current.Changes[*p.section] = append(p.current.Changes[*p.section], line[2:])
		return nil

	case p.isContinuation(line):
		items := p.current.Changes[*p.section]
		items[len(items)-1] += "\n" + strings.TrimPrefix(line, continuation)
		return nil
	}

	if m := compareURLPattern.FindStringSubmatch(line); m != nil {
		return p.parseCompareURL(m[1], m[2])
	}

	switch {
	case line == "":
		return nil
	case p.compareURLsStarted:
		return newParsingError(
			"After compare URL definitions have started, no other line types are allowed", p.lineNo, 0)
	default:
		return newParsingError(fmt.Sprintf(`Unrecognized line pattern, "%s"`, line), p.lineNo, 0)
	}
}

// isContinuation reports whether line extends the last item of the open
// section: an indented line or a blank line inside a bullet.
func (p *parser) isContinuation(line string) bool {
	if p.compareURLsStarted || p.section == nil {
		return false
	}
	if line != "" && !strings.HasPrefix(line, continuation) {
		return false
	}
	return len(p.current.Changes[*p.section]) > 0
}

func (p *parser) parseHeading(line string) error {
	p.closeSection()

	entry := NewEntry(Version{})
	p.doc.Entries = append(p.doc.Entries, entry)
	p.current = entry

	if trimmed := rstrip(line); trimmed != line {
		return newParsingError("Extra space(s) at end of line", p.lineNo, runeLen(trimmed)+1)
	}

	if strings.HasSuffix(line, yankedSuffix) {
		entry.Yanked = true
		line = strings.TrimSuffix(line, yankedSuffix)
	}
	if trimmed := rstrip(line); trimmed != line {
		return newParsingError("Extra space(s) after date", p.lineNo, runeLen(trimmed)+1)
	}

	heading, date, hasDate := strings.Cut(line, dateSeparator)
	dateColumn := runeLen(heading) + runeLen(dateSeparator) + 1
	if lstrip(date) != date {
		return newParsingError("Extra space(s) before date", p.lineNo, dateColumn)
	}
	if i := strings.Index(heading, "]"); i >= 0 && !strings.HasSuffix(rstrip(heading), "]") {
		return newParsingError(`Version and date must be separated by " - "`, p.lineNo, runeLen(heading[:i])+2)
	}
	if hasDate {
		d, err := civil.ParseDate(date)
		if err != nil {
			return wrapParsingError(err,
				fmt.Sprintf(`Unable to parse changelog entry date, "%s"`, date), p.lineNo, dateColumn)
		}
		entry.Date = &d
	}

	if trimmed := rstrip(heading); trimmed != heading {
		return newParsingError("Extra space(s) after version", p.lineNo, runeLen(trimmed)+1)
	}

	label := strings.TrimPrefix(heading, headingPrefix)
	if lstrip(label) != label {
		return newParsingError("Extra space(s) before version", p.lineNo, 4)
	}
	if !strings.HasPrefix(label, "[") {
		return newParsingError("Version must be enclosed with square brackets", p.lineNo, 4)
	}
	if !strings.HasSuffix(label, "]") {
		return newParsingError("Version must be enclosed with square brackets", p.lineNo, 4+runeLen(label))
	}
	label = strings.TrimSuffix(strings.TrimPrefix(label, "["), "]")

	v, err := ParseVersion(label)
	if err != nil {
		return wrapParsingError(err, fmt.Sprintf(`Failed parsing semver version, "%s"`, label), p.lineNo, 5)
	}
	entry.Version = v
	return nil
}

func (p *parser) parseSubheading(line string) error {
	p.closeSection()

	name := strings.TrimPrefix(line, subheadingPrefix)
	c, ok := ParseCategory(name)
	if !ok {
		return newParsingError(fmt.Sprintf(`Invalid change type, "%s"`, name), p.lineNo, 5)
	}
	if p.current.Has(c) {
		return newParsingError(fmt.Sprintf(`Multiple "%s" sections found`, name), p.lineNo, 5)
	}

	p.current.Changes[c] = []string{}
	p.section = &c
	return nil
}

func (p *parser) parseCompareURL(label, url string) error {
	v, err := ParseVersion(label)
	if err != nil {
		return wrapParsingError(err, fmt.Sprintf(`Failed parsing semver version, "%s"`, label), p.lineNo, 2)
	}

	var target *Entry
	for _, e := range p.doc.Entries {
		if e.Version.Equal(v) {
			target = e
			break
		}
	}
	if target == nil {
		return newParsingError(
			fmt.Sprintf(`No corresponding record for compare url with version, "%s"`, label), p.lineNo, 2)
	}

	target.CompareURL = url
	p.compareURLsStarted = true
	return nil
}

// closeSection right-trims the last item of the open section and closes it.
func (p *parser) closeSection() {
	if p.section == nil {
		return
	}
	items := p.current.Changes[*p.section]
	if n := len(items); n > 0 {
		items[n-1] = rstrip(items[n-1])
	}
	p.section = nil
}

func rstrip(s string) string { return strings.TrimRightFunc(s, unicode.IsSpace) }

func lstrip(s string) string { return strings.TrimLeftFunc(s, unicode.IsSpace) }

func runeLen(s string) int { return utf8.RuneCountInString(s) }
