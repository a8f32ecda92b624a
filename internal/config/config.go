// Package config provides layered configuration for kacl using koanf.
// Configuration is loaded with priority: environment variables (KACL_*) >
// project config (.kacl.yml, or the deprecated .kacl.json) > user config
// (~/.config/kacl/config.yml) > defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read as configuration.
const EnvPrefix = "KACL_"

// ConfigSource tracks where a configuration value came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceUser    ConfigSource = "user"
	SourceProject ConfigSource = "project"
	SourceEnv     ConfigSource = "env"
)

// ErrConfigNotFound is returned when an explicitly requested config file
// does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// Configuration represents the kacl CLI configuration
type Configuration struct {
	// File is the changelog used when a command receives no path.
	File     string `koanf:"file" validate:"required"`
	Encoding string `koanf:"encoding" validate:"required"`
	// HeaderFile replaces the default header written by 'kacl fmt'.
	HeaderFile string `koanf:"header_file"`
	Plain      bool   `koanf:"plain"`
	Jobs       int    `koanf:"jobs" validate:"min=1,max=64"`

	Remote        string        `koanf:"remote" validate:"required"`
	RepoURL       string        `koanf:"repo_url"`
	TagPrefix     string        `koanf:"tag_prefix"`
	RemoteTimeout time.Duration `koanf:"remote_timeout"`

	// Sources records which layer supplied each key.
	Sources map[string]ConfigSource `koanf:"-"`
	// Files lists the config files that were loaded, by layer.
	Files map[ConfigSource]string `koanf:"-"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .kacl.yml)
	ProjectConfigPath string
	// ConfigFile is an explicit config file that replaces the project layer.
	// Unlike the project path it must exist.
	ConfigFile string
	// WarningWriter receives deprecation warnings (default: os.Stderr)
	WarningWriter io.Writer
	// SkipWarnings suppresses deprecation warnings
	SkipWarnings bool
}

// Load loads configuration from user, project, and environment sources.
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// loader carries the state shared by the configuration layers.
type loader struct {
	k       *koanf.Koanf
	opts    LoadOptions
	warn    io.Writer
	sources map[string]ConfigSource
	files   map[ConfigSource]string
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	l := &loader{
		k:       koanf.New("."),
		opts:    opts,
		warn:    getWarningWriter(opts.WarningWriter),
		sources: make(map[string]ConfigSource),
		files:   make(map[ConfigSource]string),
	}

	l.loadDefaults()

	if err := l.loadUserConfig(); err != nil {
		return nil, err
	}

	if err := l.loadProjectConfig(); err != nil {
		return nil, err
	}

	if err := l.loadEnvironmentConfig(); err != nil {
		return nil, err
	}

	return l.finalize()
}

// getWarningWriter returns the warning writer or defaults to stderr
func getWarningWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

func (l *loader) loadDefaults() {
	for key, value := range GetDefaults() {
		l.k.Set(key, value)
		l.sources[key] = SourceDefault
	}
}

// merge folds one layer into the result and records the keys it supplied.
func (l *loader) merge(layer *koanf.Koanf, src ConfigSource, origin string) error {
	if err := l.k.Merge(layer); err != nil {
		return fmt.Errorf("merging %s config: %w", src, err)
	}
	for _, key := range layer.Keys() {
		if _, known := KnownKeys[key]; known {
			l.sources[key] = src
			continue
		}
		if !l.opts.SkipWarnings && src != SourceEnv {
			fmt.Fprintf(l.warn, "Warning: unknown config key %q in %s (ignored)\n", key, origin)
		}
	}
	return nil
}

// loadUserConfig loads ~/.config/kacl/config.yml when present.
func (l *loader) loadUserConfig() error {
	userPath, err := UserConfigPath()
	if err != nil || !fileExists(userPath) {
		return nil
	}
	if err := l.loadYAMLConfig(userPath, SourceUser); err != nil {
		return fmt.Errorf("loading user YAML config: %w", err)
	}
	return nil
}

// loadProjectConfig loads the project layer. An explicit ConfigFile wins over
// the project path; otherwise YAML is preferred and the legacy JSON file is
// read with a warning.
func (l *loader) loadProjectConfig() error {
	if l.opts.ConfigFile != "" {
		if !fileExists(l.opts.ConfigFile) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, l.opts.ConfigFile)
		}
		if strings.EqualFold(filepath.Ext(l.opts.ConfigFile), ".json") {
			return l.loadJSONConfig(l.opts.ConfigFile)
		}
		return l.loadYAMLConfig(l.opts.ConfigFile, SourceProject)
	}

	projectPath := ProjectConfigPath()
	if l.opts.ProjectConfigPath != "" {
		projectPath = l.opts.ProjectConfigPath
	}
	legacyPath := LegacyProjectConfigPath()
	legacyExists := fileExists(legacyPath)

	if fileExists(projectPath) {
		if err := l.loadYAMLConfig(projectPath, SourceProject); err != nil {
			return fmt.Errorf("loading project YAML config: %w", err)
		}
		if legacyExists && !l.opts.SkipWarnings {
			fmt.Fprintf(l.warn, "Warning: Legacy JSON config found at %s (ignored, using %s)\n", legacyPath, projectPath)
			fmt.Fprintf(l.warn, "  Remove the legacy file to silence this warning.\n\n")
		}
		return nil
	}

	if legacyExists {
		if err := l.loadJSONConfig(legacyPath); err != nil {
			return fmt.Errorf("loading legacy project JSON config: %w", err)
		}
		if !l.opts.SkipWarnings {
			fmt.Fprintf(l.warn, "Warning: Using deprecated JSON config at %s\n", legacyPath)
			fmt.Fprintf(l.warn, "  Move its settings to %s.\n\n", ProjectConfigPath())
		}
	}
	return nil
}

// loadYAMLConfig validates and loads a YAML config file
func (l *loader) loadYAMLConfig(path string, src ConfigSource) error {
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", src, err)
	}
	layer := koanf.New(".")
	if err := layer.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", src, path, err)
	}
	l.files[src] = path
	return l.merge(layer, src, path)
}

func (l *loader) loadJSONConfig(path string) error {
	layer := koanf.New(".")
	if err := layer.Load(file.Provider(path), json.Parser()); err != nil {
		return fmt.Errorf("failed to load project config %s: %w", path, err)
	}
	l.files[SourceProject] = path
	return l.merge(layer, SourceProject, path)
}

// loadEnvironmentConfig loads environment variable overrides
func (l *loader) loadEnvironmentConfig() error {
	layer := koanf.New(".")
	if err := layer.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return l.merge(layer, SourceEnv, "environment")
}

// finalize unmarshals, validates, and applies final transformations
func (l *loader) finalize() (*Configuration, error) {
	var cfg Configuration
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	origin := "config"
	if path, ok := l.files[SourceProject]; ok {
		origin = path
	} else if path, ok := l.files[SourceUser]; ok {
		origin = path
	}
	if err := ValidateConfigValues(&cfg, origin); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.File = expandHomePath(cfg.File)
	cfg.HeaderFile = expandHomePath(cfg.HeaderFile)
	cfg.Sources = l.sources
	cfg.Files = l.files

	return &cfg, nil
}

// Source reports which layer supplied key, defaulting to SourceDefault.
func (c *Configuration) Source(key string) ConfigSource {
	if src, ok := c.Sources[key]; ok {
		return src
	}
	return SourceDefault
}

// Value returns the effective value of a known key formatted for display.
func (c *Configuration) Value(key string) (string, error) {
	switch key {
	case "file":
		return c.File, nil
	case "encoding":
		return c.Encoding, nil
	case "header_file":
		return c.HeaderFile, nil
	case "plain":
		return fmt.Sprint(c.Plain), nil
	case "jobs":
		return fmt.Sprint(c.Jobs), nil
	case "remote":
		return c.Remote, nil
	case "repo_url":
		return c.RepoURL, nil
	case "tag_prefix":
		return c.TagPrefix, nil
	case "remote_timeout":
		return c.RemoteTimeout.String(), nil
	}
	return "", ErrUnknownKey{Key: key}
}

// IsNotFound reports whether err means an explicit config file is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrConfigNotFound) || errors.Is(err, fs.ErrNotExist)
}

// fileExists returns true if the file exists
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys
// Example: KACL_TAG_PREFIX -> tag_prefix
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
