package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ariel-frischer/kacl/internal/config"
	clierrors "github.com/ariel-frischer/kacl/internal/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	configUserFlag  bool
	configForceFlag bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage kacl configuration",
	Long: `Manage kacl configuration settings.

Configuration is loaded with the following priority (highest to lowest):
  1. Command line flags (--file, --encoding, --plain)
  2. Environment variables (KACL_*)
  3. Project config (.kacl.yml, or --config)
  4. User config (~/.config/kacl/config.yml)
  5. Built-in defaults`,
	Example: `  # Show the effective configuration and where each value came from
  kacl config show

  # List all keys
  kacl config keys

  # Set a value in the project config
  kacl config set tag_prefix release-

  # Create a commented user config
  kacl config init --user`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration with sources",
	Args:  validArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, _ []string) error {
		showConfig(cmd, appConfig)
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List all configuration keys",
	Args:  validArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		for _, key := range config.SortedKeys() {
			schema := config.KnownKeys[key]
			fmt.Fprintf(out, "%-16s %-9s %s (default: %v)\n", key, schema.Type, schema.Description, schema.Default)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in the project (or user) config file",
	Args:  validArgs(cobra.ExactArgs(2)),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configTargetPath()
		if err != nil {
			return err
		}

		parsed, err := config.SetValue(path, args[0], args[1])
		if err != nil {
			return clierrors.WrapWithMessage(err, clierrors.Configuration,
				fmt.Sprintf("cannot set %s", args[0]),
				"List valid keys and their types with: kacl config keys",
			)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "set %s = %v in %s\n", args[0], parsed.Parsed, path)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented config file with all defaults",
	Args:  validArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := configTargetPath()
		if err != nil {
			return err
		}

		if _, err := os.Stat(path); err == nil && !configForceFlag {
			return clierrors.NewArgumentError(
				fmt.Sprintf("%s already exists", path),
				"Pass --force to overwrite it",
			)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return clierrors.FileNotWritable(path, err)
		}
		if err := writeFileAtomic(path, []byte(config.GetDefaultConfigTemplate())); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	configCmd.GroupID = GroupConfiguration
	configCmd.AddCommand(configShowCmd, configKeysCmd, configSetCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)

	for _, c := range []*cobra.Command{configSetCmd, configInitCmd} {
		c.Flags().BoolVar(&configUserFlag, "user", false, "Use the user config instead of the project config")
	}
	configInitCmd.Flags().BoolVar(&configForceFlag, "force", false, "Overwrite an existing file")
}

// configTargetPath is the file written by 'config set' and 'config init'.
func configTargetPath() (string, error) {
	if configUserFlag {
		path, err := config.UserConfigPath()
		if err != nil {
			return "", clierrors.WrapWithMessage(err, clierrors.Configuration, "locating the user config directory")
		}
		return path, nil
	}
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.ProjectConfigPath(), nil
}

func showConfig(cmd *cobra.Command, cfg *config.Configuration) {
	out := cmd.OutOrStdout()
	dim := color.New(color.Faint).SprintFunc()

	for _, key := range config.SortedKeys() {
		value, _ := cfg.Value(key)
		if value == "" {
			value = `""`
		}
		fmt.Fprintf(out, "%-16s %-24s %s\n", key, value, dim("("+string(cfg.Source(key))+")"))
	}

	for _, src := range []config.ConfigSource{config.SourceUser, config.SourceProject} {
		if path, ok := cfg.Files[src]; ok {
			fmt.Fprintf(out, "\n%s config: %s", src, path)
		}
	}
	if len(cfg.Files) > 0 {
		fmt.Fprintln(out)
	}
}
