package changelog

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var update = flag.Bool("update", false, "update golden files")

func TestGolden(t *testing.T) {
	files, err := filepath.Glob("testdata/*.md")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			c, err := Load(file)

			var actual string
			if err != nil {
				// Malformed inputs record the error text instead.
				actual = err.Error()
			} else {
				actual, err = SerializeString(c)
				require.NoError(t, err)
			}

			goldenFile := strings.TrimSuffix(file, ".md") + ".golden"
			if *update {
				require.NoError(t, os.WriteFile(goldenFile, []byte(actual), 0o644))
			}

			expected, err := os.ReadFile(goldenFile)
			require.NoError(t, err, "Golden file not found. Run with -update to create it.")
			require.Equal(t, string(expected), actual)

			if strings.HasPrefix(filepath.Base(file), "error-") {
				return
			}

			// Canonical output must be a fixed point.
			again, err := ParseString(actual)
			require.NoError(t, err)
			out, err := SerializeString(again)
			require.NoError(t, err)
			require.Equal(t, actual, out)
		})
	}
}
