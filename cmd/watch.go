package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"keepgen.dev/pkg/keepgen/internal/domain"
)

const watchLongDescription = `Run job files, then regenerate them whenever a job file or one of the
templates changes.

Changes are collected for --debounce before a regeneration starts. Only the
jobs whose job file or template changed are rerun. Stop with Ctrl+C.`

var (
	watchParallelFlag  int
	watchNoProtectFlag bool
	watchDryRunFlag    bool
	watchDiffFlag      bool
	watchDebounceFlag  time.Duration
)

// watchCmd represents the watch command.
var watchCmd = newWatchCmd()

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <job...>",
		Short: "Regenerate job files when their templates change",
		Long:  watchLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}

			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()

			debounce := flagOrConfigDuration(cmd, debounceFlagName, watchDebounceKey)
			if debounce <= 0 {
				debounce = defaultWatchDebounce
			}

			return workflow.Watch(ctx, domain.WatchArgs{
				RunArgs:  runArgs(cmd, args, watchNoProtectFlag),
				Debounce: debounce,
			})
		},
	}

	configureRunFlags(cmd, &watchParallelFlag, &watchNoProtectFlag, &watchDryRunFlag, &watchDiffFlag)
	cmd.Flags().DurationVar(&watchDebounceFlag, debounceFlagName, defaultWatchDebounce, "quiet period before regenerating")

	return cmd
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
