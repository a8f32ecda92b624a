package changelog

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialize(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		changelog *Changelog
		opts      []SerializeOption
		want      string
	}{
		"no entries": {
			changelog: &Changelog{},
			want:      DefaultHeader + "\n",
		},
		"yanked unreleased without sections": {
			changelog: &Changelog{Entries: []*Entry{{Version: Unreleased(), Yanked: true}}},
			want:      DefaultHeader + "\n\n## [Unreleased] [YANKED]\n",
		},
		"categories in canonical order": {
			changelog: &Changelog{Entries: []*Entry{{
				Version: MustParseVersion("1.0.0"),
				Date:    date("2024-01-15"),
				Changes: map[Category][]string{
					Security: {"Patched CVE"},
					Added:    {"Feature"},
					Fixed:    {"Bug"},
				},
			}}},
			want: DefaultHeader + "\n" +
				"\n## [1.0.0] - 2024-01-15\n" +
				"\n### Added\n\n- Feature\n" +
				"\n### Fixed\n\n- Bug\n" +
				"\n### Security\n\n- Patched CVE\n",
		},
		"empty section keeps its heading": {
			changelog: &Changelog{Entries: []*Entry{{
				Version: Unreleased(),
				Changes: map[Category][]string{Removed: {}},
			}}},
			want: DefaultHeader + "\n\n## [Unreleased]\n\n### Removed\n\n",
		},
		"multi-line item is indented": {
			changelog: &Changelog{Entries: []*Entry{{
				Version: MustParseVersion("0.1.0"),
				Changes: map[Category][]string{Changed: {"first\nsecond\n\nthird\n  "}},
			}}},
			want: DefaultHeader + "\n\n## [0.1.0]\n\n### Changed\n\n- first\n  second\n\n  third\n    \n",
		},
		"empty item keeps the bullet space": {
			changelog: &Changelog{Entries: []*Entry{{
				Version: Unreleased(),
				Changes: map[Category][]string{Added: {""}},
			}}},
			want: DefaultHeader + "\n\n## [Unreleased]\n\n### Added\n\n- \n",
		},
		"compare urls in document order": {
			changelog: &Changelog{Entries: []*Entry{
				{Version: Unreleased(), CompareURL: "https://example.com/compare/v1.0.0...HEAD"},
				{Version: MustParseVersion("1.0.0")},
				{Version: MustParseVersion("0.9.0"), CompareURL: "https://example.com/releases/tag/v0.9.0"},
			}},
			want: DefaultHeader + "\n" +
				"\n## [Unreleased]\n" +
				"\n## [1.0.0]\n" +
				"\n## [0.9.0]\n" +
				"\n[Unreleased]: https://example.com/compare/v1.0.0...HEAD\n" +
				"[0.9.0]: https://example.com/releases/tag/v0.9.0\n",
		},
		"custom header": {
			changelog: &Changelog{Entries: []*Entry{{Version: MustParseVersion("2.0.0")}}},
			opts:      []SerializeOption{WithHeader("# History")},
			want:      "# History\n\n## [2.0.0]\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := SerializeString(tt.changelog, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSerialize_InputErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		changelog *Changelog
		wantMsg   string
		wantIndex int
	}{
		"nil changelog": {
			changelog: nil,
			wantMsg:   `"changelog" parameter must be a list of entries`,
		},
		"nil entry": {
			changelog: &Changelog{Entries: []*Entry{{Version: Unreleased()}, nil}},
			wantMsg:   `"changelog" parameter must be a list of entries`,
			wantIndex: 2,
		},
		"entry without version": {
			changelog: &Changelog{Entries: []*Entry{{Version: Unreleased()}, {Yanked: true}}},
			wantMsg:   `Changelog entry #2 was missing a "version" value`,
			wantIndex: 2,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			err := Serialize(tt.changelog, &buf)
			require.Error(t, err)

			var ie *InputError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, tt.wantIndex, ie.Index)
			assert.True(t, IsInputError(err))
			assert.False(t, IsParsingError(err))
			assert.Zero(t, buf.Len(), "nothing may be written for invalid input")
		})
	}
}

func TestSerialize_DoesNotMutate(t *testing.T) {
	t.Parallel()

	c := &Changelog{Entries: []*Entry{{
		Version: MustParseVersion("1.0.0"),
		Changes: map[Category][]string{Added: {"a\nb"}},
	}}}

	_, err := SerializeString(c)
	require.NoError(t, err)
	assert.Equal(t, []string{"a\nb"}, c.Entries[0].Changes[Added])
	assert.Len(t, c.Entries[0].Changes, 1)
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	tests := map[string]*Changelog{
		"full document": {Entries: []*Entry{
			{
				Version:    Unreleased(),
				Changes:    map[Category][]string{Added: {"New"}, Deprecated: {}},
				CompareURL: "https://example.com/compare/v1.2.3...HEAD",
			},
			{
				Version: MustParseVersion("1.2.3"),
				Date:    date("2024-06-01"),
				Yanked:  true,
				Changes: map[Category][]string{
					Removed:  {"Old flag"},
					Changed:  {"Paragraph one\n\nParagraph two", "Single"},
					Security: {"Hardened"},
				},
				CompareURL: "https://example.com/releases/tag/v1.2.3",
			},
		}},
		"release without date": {Entries: []*Entry{
			{Version: MustParseVersion("0.0.1-alpha"), Changes: map[Category][]string{Fixed: {"x"}}},
		}},
		"whitespace-only continuation line": {Entries: []*Entry{
			{Version: MustParseVersion("1.0.0"), Changes: map[Category][]string{Added: {"a\n   ", "b"}}},
		}},
		"empty item": {Entries: []*Entry{
			{Version: MustParseVersion("1.0.0"), Changes: map[Category][]string{Added: {"", "b"}}},
		}},
	}

	for name, c := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			first, err := SerializeString(c)
			require.NoError(t, err)

			parsed, err := ParseString(first)
			require.NoError(t, err)
			assertChangelogEqual(t, c, parsed)

			second, err := SerializeString(parsed)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestEmbeddedChangelogIsCanonical(t *testing.T) {
	t.Parallel()

	c, err := LoadEmbedded()
	require.NoError(t, err)

	out, err := SerializeString(c)
	require.NoError(t, err)
	assert.Equal(t, Embedded(), out, "CHANGELOG.md is not in canonical form; run kacl fmt")
}
