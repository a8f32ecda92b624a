package changelog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// DefaultEncoding is the text encoding used to decode raw lines.
const DefaultEncoding = "utf-8"

// LineSource supplies the parser with one line at a time, without the
// trailing newline. ReadLine returns io.EOF once the source is exhausted.
type LineSource interface {
	ReadLine() (Line, error)
}

type lineKind int

const (
	lineInvalid lineKind = iota
	lineText
	lineRaw
)

func (k lineKind) String() string {
	switch k {
	case lineText:
		return "text"
	case lineRaw:
		return "raw"
	default:
		return "invalid"
	}
}

// Line is either already-decoded text or raw bytes that the parser decodes
// with its configured encoding. The zero Line is neither.
type Line struct {
	kind lineKind
	text string
	raw  []byte
}

// TextLine returns a decoded line.
func TextLine(s string) Line { return Line{kind: lineText, text: s} }

// RawLine returns an undecoded line.
func RawLine(b []byte) Line { return Line{kind: lineRaw, raw: b} }

// readerSource yields raw lines from an io.Reader.
type readerSource struct {
	r *bufio.Reader
}

// NewReaderSource returns a LineSource reading raw lines from r. Lines are
// split on '\n' only; a final line without newline is still yielded.
func NewReaderSource(r io.Reader) LineSource {
	return &readerSource{r: bufio.NewReader(r)}
}

func (s *readerSource) ReadLine() (Line, error) {
	data, err := s.r.ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return Line{}, err
	}
	if len(data) == 0 {
		return Line{}, io.EOF
	}
	return RawLine(bytes.TrimSuffix(data, []byte("\n"))), nil
}

// stringSource yields text lines from an in-memory string.
type stringSource struct {
	rest string
}

// NewStringSource returns a LineSource over s.
func NewStringSource(s string) LineSource {
	return &stringSource{rest: s}
}

func (s *stringSource) ReadLine() (Line, error) {
	if s.rest == "" {
		return Line{}, io.EOF
	}
	line, rest, _ := strings.Cut(s.rest, "\n")
	s.rest = rest
	return TextLine(line), nil
}

// sliceSource yields pre-split text lines.
type sliceSource struct {
	lines []string
}

// Lines returns a LineSource over already split lines.
func Lines(lines ...string) LineSource {
	return &sliceSource{lines: lines}
}

func (s *sliceSource) ReadLine() (Line, error) {
	if len(s.lines) == 0 {
		return Line{}, io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return TextLine(line), nil
}

// lineDecoder turns raw lines into text. The encoding is resolved lazily so
// an unknown name only fails once a raw line actually needs decoding.
type lineDecoder struct {
	name     string
	resolved bool
	utf8     bool
	enc      encoding.Encoding
	err      error
}

func newLineDecoder(name string) *lineDecoder {
	return &lineDecoder{name: name}
}

func (d *lineDecoder) resolve() error {
	if d.resolved {
		return d.err
	}
	d.resolved = true

	enc, err := ianaindex.IANA.Encoding(d.name)
	if err != nil {
		d.err = err
		return err
	}
	if enc == nil {
		d.err = fmt.Errorf("encoding %q is not supported", d.name)
		return d.err
	}
	if canonical, err := ianaindex.IANA.Name(enc); err == nil && canonical == "UTF-8" {
		d.utf8 = true
	}
	d.enc = enc
	return nil
}

func (d *lineDecoder) decode(raw []byte) (string, error) {
	if err := d.resolve(); err != nil {
		return "", err
	}
	if d.utf8 {
		out, _, err := transform.Bytes(encoding.UTF8Validator, raw)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	out, err := d.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (d *lineDecoder) encode(text string) ([]byte, error) {
	if err := d.resolve(); err != nil {
		return nil, err
	}
	if d.utf8 {
		return []byte(text), nil
	}
	return d.enc.NewEncoder().Bytes([]byte(text))
}

// Encode converts text to the named encoding, the inverse of the decoding
// done by WithEncoding. Runes the encoding cannot represent are an error.
func Encode(text, name string) ([]byte, error) {
	out, err := newLineDecoder(name).encode(text)
	if err != nil {
		return nil, fmt.Errorf("encoding text as %q: %w", name, err)
	}
	return out, nil
}
