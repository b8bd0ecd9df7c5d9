// Package cmd provides the root command and CLI setup for keepgen.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"keepgen.dev/pkg/keepgen/internal/adapter"
	"keepgen.dev/pkg/keepgen/internal/controller"
	"keepgen.dev/pkg/keepgen/internal/domain"
	m "keepgen.dev/pkg/keepgen/internal/model"
	"keepgen.dev/pkg/keepgen/internal/render"
)

var fsAdapter adapter.SourceFSAdapter
var jobStore adapter.JobStore
var watcher adapter.Watcher

// workflow is built on first use from the resolved configuration. Tests
// replace it with a mock before executing a command.
var workflow domain.Workflow

var templatesFlag []string
var verboseFlag bool
var logFileFlag string
var openMarkerFlag string
var closeMarkerFlag string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	jobStore = adapter.NewLocalJobStore()
	watcher = adapter.NewFSNotifyWatcher()
}

const rootLongDescription = `Keepgen renders text templates into source files while keeping the
hand-written code between protected-section tags intact.

A protected section is a region of the generated file framed by two comment
lines, for example in Python:

  # >>> imports <<<
  import requests
  # >>> <<<

Templates request sections with {{ .ProtectedSections | getsect "imports" "#" }}.
On every regeneration the existing file is scanned first and each section's
content is carried over into the new output.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "keepgen",
		Short:        "Template code generator that preserves protected sections",
		Long:         rootLongDescription,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
			setupWorkflow(cmd)

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringSliceVarP(&templatesFlag, templatesFlagName, "t", viper.GetStringSlice(templatesConfigKey), "template search paths, searched in order")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(templatesFlagName), templatesConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)

	cmd.PersistentFlags().StringVar(&openMarkerFlag, openMarkerFlagName, viper.GetString(markersOpenKey), "marker opening a section tag")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(openMarkerFlagName), markersOpenKey)

	cmd.PersistentFlags().StringVar(&closeMarkerFlag, closeMarkerFlagName, viper.GetString(markersCloseKey), "marker closing a section tag")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(closeMarkerFlagName), markersCloseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// setupWorkflow wires the workflow once flags and config are resolved.
func setupWorkflow(cmd *cobra.Command) {
	if workflow != nil {
		return
	}

	renderer := render.NewRenderer(configuredTemplates(), configuredMarkers())
	registry := buildRegistry()
	ui := controller.NewUI(cmd, useTUI())

	workflow = domain.NewWorkflow(
		fsAdapter,
		jobStore,
		watcher,
		ui,
		renderer,
		registry,
		domain.NewGenerator(fsAdapter, renderer, registry),
	)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
