package cmd

import (
	"github.com/spf13/cobra"

	"keepgen.dev/pkg/keepgen/internal/domain"
)

const runLongDescription = `Run one or more job files.

A job file (JSON, YAML or TOML) names a template and the context it is
rendered with:

  generate: service.go.tmpl
  destpath: ../internal/service
  filename: service.go
  protsect: true
  context:
    name: billing

Jobs are given as paths or as names found in the template search paths.
Each job runs independently: a failing job is reported and the others still
complete. The command exits non-zero when any job failed.`

var (
	runParallelFlag  int
	runNoProtectFlag bool
	runDryRunFlag    bool
	runDiffFlag      bool
)

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <job...>",
		Short: "Run job files",
		Long:  runLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Run(cmd.Context(), runArgs(cmd, args, runNoProtectFlag))
		},
	}

	configureRunFlags(cmd, &runParallelFlag, &runNoProtectFlag, &runDryRunFlag, &runDiffFlag)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command, parallel *int, noProtect, dryRun, diff *bool) {
	cmd.Flags().IntVarP(parallel, runParallelFlagName, "p", defaultRunParallel, "number of jobs generated in parallel")
	configureOutputFlags(cmd, noProtect, dryRun, diff)
}

func runArgs(cmd *cobra.Command, args []string, noProtect bool) domain.RunArgs {
	parallel := flagOrConfigInt(cmd, runParallelFlagName, runParallelConfigKey)
	if parallel < 1 {
		parallel = 1
	}

	return domain.RunArgs{
		Jobs:      parsePaths(args),
		Parallel:  parallel,
		Protected: protectedSections(cmd, noProtect),
		DryRun:    flagOrConfigBool(cmd, dryRunFlagName, dryRunConfigKey),
		Diff:      flagOrConfigBool(cmd, diffFlagName, diffConfigKey),
	}
}
