package changelog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format names a structured interchange encoding.
type Format string

// Supported interchange formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// ParseFormat accepts "yaml", "yml", "json" or "toml" in any letter case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (expected: yaml, json, toml)", s)
	}
}

// Document is the structured form of a changelog used for YAML, JSON and
// TOML interchange. Versions keep document order.
type Document struct {
	Project  string   `yaml:"project,omitempty" json:"project,omitempty" toml:"project,omitempty"`
	Versions []Record `yaml:"versions" json:"versions" toml:"versions"`
}

// Record is one entry in structured form. Version is a bare semantic version
// or "unreleased"; Date uses YYYY-MM-DD.
type Record struct {
	Version    string  `yaml:"version" json:"version" toml:"version"`
	Date       string  `yaml:"date,omitempty" json:"date,omitempty" toml:"date,omitempty"`
	Yanked     bool    `yaml:"yanked,omitempty" json:"yanked,omitempty" toml:"yanked,omitempty"`
	CompareURL string  `yaml:"compare_url,omitempty" json:"compare_url,omitempty" toml:"compare_url,omitempty"`
	Changes    Changes `yaml:"changes" json:"changes" toml:"changes"`
}

// Changes groups items by Keep a Changelog category. Empty categories are
// omitted.
type Changes struct {
	Added      []string `yaml:"added,omitempty" json:"added,omitempty" toml:"added,omitempty"`
	Changed    []string `yaml:"changed,omitempty" json:"changed,omitempty" toml:"changed,omitempty"`
	Deprecated []string `yaml:"deprecated,omitempty" json:"deprecated,omitempty" toml:"deprecated,omitempty"`
	Removed    []string `yaml:"removed,omitempty" json:"removed,omitempty" toml:"removed,omitempty"`
	Fixed      []string `yaml:"fixed,omitempty" json:"fixed,omitempty" toml:"fixed,omitempty"`
	Security   []string `yaml:"security,omitempty" json:"security,omitempty" toml:"security,omitempty"`
}

func (c *Changes) slot(cat Category) *[]string {
	switch cat {
	case Added:
		return &c.Added
	case Changed:
		return &c.Changed
	case Deprecated:
		return &c.Deprecated
	case Removed:
		return &c.Removed
	case Fixed:
		return &c.Fixed
	default:
		return &c.Security
	}
}

// ValidationError represents a structured changelog validation error with context.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ToDocument converts c into its structured form.
func ToDocument(c *Changelog, project string) Document {
	doc := Document{Project: project, Versions: make([]Record, 0, len(c.Entries))}
	for _, e := range c.Entries {
		rec := Record{
			Version:    strings.ToLower(e.Version.String()),
			Yanked:     e.Yanked,
			CompareURL: e.CompareURL,
		}
		if e.Version.IsReleased() {
			rec.Version = e.Version.String()
		}
		if e.Date != nil {
			rec.Date = e.Date.String()
		}
		for _, cat := range Categories() {
			if items := e.Changes[cat]; len(items) > 0 {
				*rec.Changes.slot(cat) = append([]string(nil), items...)
			}
		}
		doc.Versions = append(doc.Versions, rec)
	}
	return doc
}

// FromDocument validates doc and converts it into a Changelog.
func FromDocument(doc Document) (*Changelog, error) {
	c := &Changelog{Entries: make([]*Entry, 0, len(doc.Versions))}
	for i, rec := range doc.Versions {
		e, err := recordToEntry(rec, i)
		if err != nil {
			return nil, err
		}
		c.Entries = append(c.Entries, e)
	}
	return c, nil
}

func recordToEntry(rec Record, index int) (*Entry, error) {
	field := func(name string) string { return fmt.Sprintf("versions[%d].%s", index, name) }

	if strings.TrimSpace(rec.Version) == "" {
		return nil, &ValidationError{Field: field("version"), Message: "required field is empty"}
	}
	v, err := ParseVersion(NormalizeVersion(rec.Version))
	if err != nil {
		return nil, &ValidationError{
			Field:   field("version"),
			Message: fmt.Sprintf("invalid semver format %q (expected: X.Y.Z)", rec.Version),
		}
	}

	e := NewEntry(v)
	e.Yanked = rec.Yanked
	e.CompareURL = rec.CompareURL

	if rec.Date != "" {
		d, err := civil.ParseDate(rec.Date)
		if err != nil {
			return nil, &ValidationError{
				Field:   field("date"),
				Message: fmt.Sprintf("invalid date format %q (expected: YYYY-MM-DD)", rec.Date),
			}
		}
		e.Date = &d
	}

	for _, cat := range Categories() {
		items := *rec.Changes.slot(cat)
		for j, item := range items {
			if strings.TrimSpace(item) == "" {
				return nil, &ValidationError{
					Field:   field(fmt.Sprintf("changes.%s[%d]", cat.Key(), j)),
					Message: "change entry cannot be empty",
				}
			}
		}
		if len(items) > 0 {
			e.Add(cat, items...)
		}
	}

	return e, nil
}

// Export writes c to w in the given format.
func Export(c *Changelog, format Format, w io.Writer, project string) error {
	doc := ToDocument(c, project)

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return nil
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("encoding TOML: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// Import reads a structured changelog from r and validates it.
func Import(r io.Reader, format Format) (*Changelog, error) {
	var doc Document

	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing changelog YAML: %w", err)
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("parsing changelog JSON: %w", err)
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("parsing changelog TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	return FromDocument(doc)
}
