// Package testutil provides test utilities and helpers for kacl tests.
package testutil

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
)

var (
	// kaclBinaryPath caches the built kacl binary path.
	kaclBinaryPath string
	kaclBuildOnce  sync.Once
	kaclBuildErr   error
)

// E2EEnv provides an isolated environment for E2E testing. Each environment
// has its own working directory, HOME and user config directory, and
// inherits no KACL_* variables from the caller.
type E2EEnv struct {
	t       *testing.T
	workDir string
	homeDir string
	extra   []string
}

// CommandResult captures the result of running a kacl command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// NewE2EEnv creates a new E2E test environment and builds the kacl binary
// once per test binary.
func NewE2EEnv(t *testing.T) *E2EEnv {
	t.Helper()

	root := t.TempDir()
	env := &E2EEnv{
		t:       t,
		workDir: filepath.Join(root, "work"),
		homeDir: filepath.Join(root, "home"),
	}
	for _, dir := range []string{env.workDir, env.homeDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("creating %s: %v", dir, err)
		}
	}

	kaclBuildOnce.Do(func() {
		kaclBinaryPath, kaclBuildErr = buildKacl()
	})
	if kaclBuildErr != nil {
		t.Fatalf("building kacl: %v", kaclBuildErr)
	}

	return env
}

func buildKacl() (string, error) {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("determining current file location")
	}
	repoRoot := filepath.Join(filepath.Dir(currentFile), "..", "..")

	tmpDir, err := os.MkdirTemp("", "kacl-build-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir for build: %w", err)
	}

	binaryPath := filepath.Join(tmpDir, "kacl")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/kacl")
	cmd.Dir = repoRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("building kacl: %w\nOutput: %s", err, output)
	}

	return binaryPath, nil
}

// Run executes kacl with args in the working directory.
func (e *E2EEnv) Run(args ...string) CommandResult {
	e.t.Helper()
	return e.RunWithInput("", args...)
}

// RunWithInput executes kacl with stdin connected to input.
func (e *E2EEnv) RunWithInput(input string, args ...string) CommandResult {
	e.t.Helper()

	start := time.Now()

	cmd := exec.Command(kaclBinaryPath, args...)
	cmd.Dir = e.workDir
	cmd.Env = e.buildIsolatedEnv()
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			e.t.Fatalf("running kacl: %v", err)
		}
	}

	return result
}

// Setenv adds a variable to the environment of every later Run.
func (e *E2EEnv) Setenv(key, value string) {
	e.extra = append(e.extra, key+"="+value)
}

func (e *E2EEnv) buildIsolatedEnv() []string {
	env := []string{
		"HOME=" + e.homeDir,
		"XDG_CONFIG_HOME=" + filepath.Join(e.homeDir, ".config"),
		"NO_COLOR=1",
	}

	safeVars := []string{
		"PATH",
		"TERM",
		"LANG",
		"LC_ALL",
		"TMPDIR",
	}
	for _, key := range safeVars {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}

	return append(env, e.extra...)
}

// WorkDir returns the directory commands run in.
func (e *E2EEnv) WorkDir() string {
	return e.workDir
}

// UserConfigPath returns the user config file kacl reads in this environment.
func (e *E2EEnv) UserConfigPath() string {
	return filepath.Join(e.homeDir, ".config", "kacl", "config.yml")
}

// WriteFile creates a file relative to the working directory.
func (e *E2EEnv) WriteFile(name, content string) string {
	e.t.Helper()

	path := filepath.Join(e.workDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		e.t.Fatalf("creating directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// ReadFile returns the content of a file relative to the working directory.
func (e *E2EEnv) ReadFile(name string) string {
	e.t.Helper()

	data, err := os.ReadFile(filepath.Join(e.workDir, name))
	if err != nil {
		e.t.Fatalf("reading %s: %v", name, err)
	}
	return string(data)
}

// InitGitRepo initializes a git repository in the working directory with
// an "origin" remote pointing at remoteURL.
func (e *E2EEnv) InitGitRepo(remoteURL string) {
	e.t.Helper()

	repo, err := gogit.PlainInit(e.workDir, false)
	if err != nil {
		e.t.Fatalf("git init failed: %v", err)
	}
	if remoteURL == "" {
		return
	}
	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{Name: gogit.DefaultRemoteName, URLs: []string{remoteURL}})
	if err != nil {
		e.t.Fatalf("creating remote: %v", err)
	}
}
