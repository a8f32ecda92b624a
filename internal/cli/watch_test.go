package cli

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for one writer and concurrent readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchCmd(t *testing.T) {
	newWorkspace(t)
	writeFile(t, "CHANGELOG.md", sampleChangelog)
	resetCommandState(t)

	var stdout, stderr syncBuffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"watch", "--plain"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rootCmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(stderr.String(), "watching CHANGELOG.md")
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, stdout.String(), "CHANGELOG.md is valid (3 versions, 5 changes)")

	require.NoError(t, os.WriteFile("CHANGELOG.md", []byte(brokenChangelog), 0o644))
	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "CHANGELOG.md is invalid")
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, stdout.String(), "CHANGELOG.md:4:11")

	// Unrelated files in the same directory are ignored.
	before := strings.Count(stdout.String(), "CHANGELOG.md is")
	require.NoError(t, os.WriteFile("NOTES.md", []byte("x"), 0o644))
	time.Sleep(3 * watchDebounce)
	assert.Equal(t, before, strings.Count(stdout.String(), "CHANGELOG.md is"))

	require.NoError(t, os.WriteFile("CHANGELOG.md", []byte(messyChangelog), 0o644))
	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "CHANGELOG.md is valid (2 versions, 3 changes)")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}

func TestWatchCmd_MissingDirectory(t *testing.T) {
	newWorkspace(t)

	r := runCLI(t, "watch", "no/such/dir/CHANGELOG.md")

	assert.Equal(t, ExitMissingDependencies, r.ExitCode())
	assert.Contains(t, r.Stderr, "watching")
}
