package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetValue(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		initial string
		key     string
		value   string
		want    string
	}{
		"creates file": {
			key:   "jobs",
			value: "8",
			want:  "jobs: 8\n",
		},
		"appends key": {
			initial: "file: HISTORY.md\n",
			key:     "plain",
			value:   "true",
			want:    "file: HISTORY.md\nplain: true\n",
		},
		"replaces value and keeps comment": {
			initial: "# project settings\ntag_prefix: v # release tags\n",
			key:     "tag_prefix",
			value:   "rel-",
			want:    "# project settings\ntag_prefix: rel- # release tags\n",
		},
		"normalizes duration": {
			initial: "remote_timeout: 10s\n",
			key:     "remote_timeout",
			value:   "120s",
			want:    "remote_timeout: 2m0s\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "nested", ".kacl.yml")
			if tt.initial != "" {
				require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
				require.NoError(t, os.WriteFile(path, []byte(tt.initial), 0o644))
			}

			_, err := SetValue(path, tt.key, tt.value)
			require.NoError(t, err)

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestSetValue_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := SetValue(filepath.Join(dir, "a.yml"), "colour", "red")
	assert.Equal(t, ErrUnknownKey{Key: "colour"}, err)

	_, err = SetValue(filepath.Join(dir, "b.yml"), "jobs", "lots")
	assert.ErrorContains(t, err, "invalid integer")

	broken := filepath.Join(dir, "c.yml")
	require.NoError(t, os.WriteFile(broken, []byte("jobs: [1\n"), 0o644))
	_, err = SetValue(broken, "jobs", "2")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	for _, name := range []string{"a.yml", "b.yml"} {
		_, statErr := os.Stat(filepath.Join(dir, name))
		assert.True(t, os.IsNotExist(statErr), "%s must not be created", name)
	}
}
