package cli

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	clierrors "github.com/ariel-frischer/kacl/internal/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchDebounce collapses the burst of events editors emit for one save.
const watchDebounce = 150 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Re-validate a changelog every time it changes",
	Long: `Validate a changelog, then keep watching it and validate again after
every save until interrupted with Ctrl+C.

The containing directory is watched, so editors that save by replacing the
file are handled.`,
	Example: `  kacl watch
  kacl watch docs/CHANGELOG.md`,
	Args: validArgs(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchChangelog(cmd, targetAt(args, 0))
	},
}

func init() {
	watchCmd.GroupID = GroupDocuments
	rootCmd.AddCommand(watchCmd)
}

func watchChangelog(cmd *cobra.Command, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return clierrors.Wrap(err, clierrors.Runtime)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Runtime, "creating fsnotify watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Prerequisite,
			fmt.Sprintf("watching %s", filepath.Dir(abs)),
			"Make sure the directory exists and is readable",
		)
	}

	ctx := cmd.Context()
	validateOnce(ctx, cmd, path)
	fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (Ctrl+C to stop)\n", path)

	debounce := time.NewTimer(watchDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				log.Printf("[watch] debug: %s", event)
				debounce.Reset(watchDebounce)
			}
		case <-debounce.C:
			validateOnce(ctx, cmd, path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return clierrors.WrapWithMessage(err, clierrors.Runtime, "watcher error")
		}
	}
}

// validateOnce checks path and prints the outcome with a timestamp.
func validateOnce(ctx context.Context, cmd *cobra.Command, path string) {
	stamp := time.Now().Format("15:04:05")
	c, err := loadChangelog(ctx, path)
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s is invalid\n", stamp, path)
		if cliErr := clierrors.AsCLIError(err); cliErr != nil {
			clierrors.FprintError(cmd.OutOrStdout(), cliErr, appConfig.Plain)
		}
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s is valid (%d versions, %d changes)\n",
		stamp, path, c.EntryCount(), c.ItemCount())
}
