// Package controller provides the output adapters that report generation progress.
package controller

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	m "keepgen.dev/pkg/keepgen/internal/model"
	"keepgen.dev/pkg/keepgen/internal/section"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeGenerate StartMode = iota
	ModeBatch
	ModeWatch
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
	jobs []string
}

// WithGenerateMode sets the UI to single generation mode.
func WithGenerateMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeGenerate
	}
}

// WithBatchMode sets the UI to batch mode over the given job labels.
func WithBatchMode(jobs []string) StartOption {
	return func(c *StartConfig) {
		c.mode = ModeBatch
		c.jobs = append([]string(nil), jobs...)
	}
}

// WithWatchMode sets the UI to watch mode, where batches repeat until interrupted.
func WithWatchMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeWatch
	}
}

func newStartConfig(options []StartOption) StartConfig {
	var cfg StartConfig
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// UI reports what the workflow does. Display methods may be called from
// several batch workers at once.
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayJobStarted(ctx context.Context, label string)
	DisplayResult(ctx context.Context, result m.Result)
	DisplaySummary(ctx context.Context, results []m.Result)
	DisplaySections(ctx context.Context, path m.Path, store *section.Store)
	DisplayTags(ctx context.Context, entries []section.Entry)
}

// NewUI returns the interactive TUI when useTUI is set and the plain UI otherwise.
func NewUI(cmd *cobra.Command, useTUI bool) UI {
	if useTUI {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is an interactive terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
