// Package cli implements the kacl command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/ariel-frischer/kacl/internal/config"
	clierrors "github.com/ariel-frischer/kacl/internal/errors"
	"github.com/ariel-frischer/kacl/internal/git"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Command groups shown in help output.
const (
	GroupDocuments     = "documents"
	GroupRelease       = "release"
	GroupConfiguration = "configuration"
)

var (
	cfgFile      string
	fileFlag     string
	debugFlag    bool
	plainFlag    bool
	encodingFlag string

	// appConfig is the effective configuration of the running command.
	appConfig *config.Configuration
)

var rootCmd = &cobra.Command{
	Use:   "kacl",
	Short: "Parse, validate and format Keep a Changelog files",
	Long: `kacl reads CHANGELOG.md files written in the Keep a Changelog format
(https://keepachangelog.com), reports malformed lines with their line and
column, and writes changelogs back in canonical form.

Configuration is read from ~/.config/kacl/config.yml, .kacl.yml and
KACL_* environment variables. See 'kacl config keys'.

Source: https://github.com/ariel-frischer/kacl`,
	Example: `  # Validate the changelog of the current project
  kacl validate

  # Validate several files and a remote changelog
  kacl validate CHANGELOG.md docs/CHANGES.md https://example.com/CHANGELOG.md

  # Rewrite a changelog in canonical form, or only check it in CI
  kacl fmt
  kacl fmt --check

  # Show the latest changes and extract release notes
  kacl show --last 10
  kacl extract 1.2.0

  # Promote Unreleased to a release and refresh compare links
  kacl release 1.3.0 --links`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupCommand,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupDocuments, Title: "Changelog Documents:"},
		&cobra.Group{ID: GroupRelease, Title: "Releases:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration:"},
	)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (replaces .kacl.yml)")
	rootCmd.PersistentFlags().StringVarP(&fileFlag, "file", "f", "", "Changelog file (default from config: CHANGELOG.md)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Print debug logging to stderr")
	rootCmd.PersistentFlags().BoolVar(&plainFlag, "plain", false, "Plain output (no colors/icons)")
	rootCmd.PersistentFlags().StringVar(&encodingFlag, "encoding", "", "Encoding of changelog files (default from config: utf-8)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return clierrors.NewArgumentError(err.Error()).WithUsage(cmd.UseLine())
	})
}

// setupCommand configures logging and loads the configuration, applying
// flag overrides on top of it.
func setupCommand(cmd *cobra.Command, _ []string) error {
	configureLogging(cmd.ErrOrStderr(), debugFlag)

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		ConfigFile:    cfgFile,
		WarningWriter: cmd.ErrOrStderr(),
	})
	if err != nil {
		if config.IsNotFound(err) {
			return clierrors.ConfigFileNotFound(cfgFile)
		}
		return clierrors.ConfigParseError(configOrigin(), err)
	}

	flags := cmd.Flags()
	if flags.Changed("file") {
		cfg.File = fileFlag
	}
	if flags.Changed("encoding") {
		cfg.Encoding = encodingFlag
	}
	if flags.Changed("plain") {
		cfg.Plain = plainFlag
	}
	if cfg.Plain {
		color.NoColor = true
	}

	log.Printf("[config] debug: file=%s encoding=%s jobs=%d", cfg.File, cfg.Encoding, cfg.Jobs)
	appConfig = cfg
	return nil
}

func configOrigin() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.ProjectConfigPath()
}

// configureLogging routes debug logging to w when enabled and discards it
// otherwise.
func configureLogging(w io.Writer, debug bool) {
	log.SetFlags(0)
	if !debug {
		log.SetOutput(io.Discard)
		git.SetDebugLogger(nil)
		return
	}
	log.SetOutput(w)
	git.SetDebugLogger(log.Printf)
}

// Execute runs the root command and reports any error on stderr. The
// returned error maps to a process exit code through ExitCode.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	reportError(rootCmd.ErrOrStderr(), err)
	return err
}

// reportError prints err in the structured CLI format. Exit errors carry
// no message of their own because the command already reported the failure.
func reportError(w io.Writer, err error) {
	if err == nil {
		return
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	plain := color.NoColor || (appConfig != nil && appConfig.Plain)
	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		clierrors.FprintError(w, cliErr, plain)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

// validArgs wraps a cobra argument validator so violations surface as
// argument errors with the command's usage line.
func validArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return clierrors.NewArgumentError(err.Error()).WithUsage(cmd.UseLine())
		}
		return nil
	}
}
