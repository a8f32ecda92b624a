package changelog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const interchangeFixture = `## [Unreleased]
### Added
- Pending feature

## [1.2.0] - 2026-01-10 [YANKED]
### Changed
- Two paragraphs

  in one item
### Security
- Hardened TLS defaults

[Unreleased]: https://example.com/compare/v1.2.0...HEAD
[1.2.0]: https://example.com/releases/tag/v1.2.0
`

func TestExportImport_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatYAML, FormatJSON, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()

			original := mustParse(t, interchangeFixture)

			var buf bytes.Buffer
			require.NoError(t, Export(original, format, &buf, "demo"))

			imported, err := Import(&buf, format)
			require.NoError(t, err)
			assertChangelogEqual(t, original, imported)
		})
	}
}

func TestExport_YAMLShape(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Export(mustParse(t, interchangeFixture), FormatYAML, &buf, "demo"))

	out := buf.String()
	for _, fragment := range []string{
		"project: demo\n",
		"- version: unreleased\n",
		"- version: 1.2.0\n",
		`date: "2026-01-10"`,
		"yanked: true\n",
		"compare_url: https://example.com/releases/tag/v1.2.0\n",
		"- Hardened TLS defaults\n",
		"- |-\n",
	} {
		assert.Contains(t, out, fragment)
	}
	assert.NotContains(t, out, "deprecated:", "empty categories are omitted")
}

func TestImport_Validation(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		format    Format
		input     string
		wantField string
		wantMsg   string
	}{
		"missing version": {
			format:    FormatYAML,
			input:     "versions:\n  - date: \"2026-01-01\"\n",
			wantField: "versions[0].version",
			wantMsg:   "required field is empty",
		},
		"invalid version": {
			format:    FormatJSON,
			input:     `{"versions": [{"version": "1.0"}]}`,
			wantField: "versions[0].version",
			wantMsg:   "invalid semver format",
		},
		"invalid date": {
			format:    FormatTOML,
			input:     "[[versions]]\nversion = \"1.0.0\"\ndate = \"2026-13-01\"\n",
			wantField: "versions[0].date",
			wantMsg:   "invalid date format",
		},
		"empty change entry": {
			format:    FormatYAML,
			input:     "versions:\n  - version: unreleased\n  - version: 0.1.0\n    changes:\n      fixed: [\"ok\", \"  \"]\n",
			wantField: "versions[1].changes.fixed[1]",
			wantMsg:   "change entry cannot be empty",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Import(strings.NewReader(tt.input), tt.format)
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
			assert.Contains(t, ve.Message, tt.wantMsg)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestImport_SyntaxErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		format  Format
		input   string
		wantErr string
	}{
		"yaml":       {format: FormatYAML, input: "versions: [unclosed", wantErr: "parsing changelog YAML"},
		"json":       {format: FormatJSON, input: "{", wantErr: "parsing changelog JSON"},
		"toml":       {format: FormatTOML, input: "versions = [", wantErr: "parsing changelog TOML"},
		"bad format": {format: Format("xml"), input: "", wantErr: "unsupported format"},
		"empty yaml": {format: FormatYAML, input: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c, err := Import(strings.NewReader(tt.input), tt.format)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Empty(t, c.Entries)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.False(t, IsValidationError(err))
		})
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		want    Format
		wantErr bool
	}{
		"yaml": {want: FormatYAML},
		"YML":  {want: FormatYAML},
		"json": {want: FormatJSON},
		"Toml": {want: FormatTOML},
		"xml":  {wantErr: true},
	}

	for in, tt := range tests {
		t.Run(in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFormat(in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
