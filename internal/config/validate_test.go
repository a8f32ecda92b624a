package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateYAMLSyntaxFromBytes(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		data       string
		wantErr    bool
		wantLine   int
		wantSubstr string
	}{
		"valid mapping": {data: "file: CHANGELOG.md\njobs: 2\n"},
		"empty":         {data: ""},
		"only comments": {data: "# nothing here\n"},
		"whitespace":    {data: "  \n\t\n"},
		"unterminated flow sequence": {
			data:    "jobs: 2\nfile: [a, b\n",
			wantErr: true,
		},
		"top level list": {
			data:       "- file\n- jobs\n",
			wantErr:    true,
			wantLine:   1,
			wantSubstr: "top level must be a mapping",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := ValidateYAMLSyntaxFromBytes([]byte(tt.data), "test.yml")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "test.yml", ve.FilePath)
			if tt.wantLine > 0 {
				assert.Equal(t, tt.wantLine, ve.Line)
			}
			if tt.wantSubstr != "" {
				assert.Contains(t, ve.Message, tt.wantSubstr)
			}
		})
	}
}

func TestValidateYAMLSyntax_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	assert.NoError(t, ValidateYAMLSyntax(filepath.Join(dir, "missing.yml")))

	tests := map[string]struct {
		data string
		want string
	}{
		"error on the first line": {
			data: "a: b: c\n",
			want: ":1: mapping values are not allowed in this context",
		},
		"error on a later line": {
			data: "file: CHANGELOG.md\n\tjobs: 2\n",
			want: ":2: found character that cannot start any token",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(dir, name+".yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o644))

			err := ValidateYAMLSyntax(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), path+tt.want)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  ValidationError
		want string
	}{
		"with line": {
			err:  ValidationError{FilePath: "c.yml", Line: 3, Column: 7, Message: "bad"},
			want: "c.yml:3:7: bad",
		},
		"line without column": {
			err:  ValidationError{FilePath: "c.yml", Line: 1, Message: "bad"},
			want: "c.yml:1: bad",
		},
		"with field": {
			err:  ValidationError{FilePath: "c.yml", Field: "jobs", Message: "must be at least 1"},
			want: "c.yml: field 'jobs': must be at least 1",
		},
		"message only": {
			err:  ValidationError{FilePath: "c.yml", Message: "permission denied"},
			want: "c.yml: permission denied",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestExtractLineColumn(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		msg       string
		line, col int
	}{
		"line and column": {msg: "yaml: line 4: column 2: bad", line: 4, col: 2},
		"line only":       {msg: "yaml: line 9: did not find expected key", line: 9},
		"first line":      {msg: "yaml: mapping values are not allowed in this context", line: 1},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			line, col := extractLineColumn(tt.msg)
			assert.Equal(t, tt.line, line)
			assert.Equal(t, tt.col, col)
		})
	}
}

func TestCleanYAMLError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "did not find expected key", cleanYAMLError("yaml: line 9: did not find expected key"))
	assert.Equal(t, "plain: message", cleanYAMLError("plain: message"))
}

func TestValidateValue(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		key, value string
		want       any
		wantErr    string
	}{
		"bool":         {key: "plain", value: "TRUE", want: true},
		"bad bool":     {key: "plain", value: "yes", wantErr: "invalid boolean"},
		"int":          {key: "jobs", value: "12", want: 12},
		"bad int":      {key: "jobs", value: "many", wantErr: "invalid integer"},
		"duration":     {key: "remote_timeout", value: "90s", want: "1m30s"},
		"bad duration": {key: "remote_timeout", value: "10", wantErr: "invalid duration"},
		"string":       {key: "tag_prefix", value: "rel-", want: "rel-"},
		"unknown key":  {key: "colour", value: "x", wantErr: "unknown configuration key: colour"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := ValidateValue(tt.key, tt.value)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Parsed)
			assert.Equal(t, tt.value, got.Raw)
		})
	}
}

func TestSortedKeys(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{
		"encoding", "file", "header_file", "jobs", "plain",
		"remote", "remote_timeout", "repo_url", "tag_prefix",
	}, SortedKeys())
	assert.Equal(t, "duration", KnownKeys["remote_timeout"].Type.String())
}
