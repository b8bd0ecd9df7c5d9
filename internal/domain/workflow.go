// Package domain holds keepgen's generation workflow: resolving jobs,
// carrying protected sections over, rendering and writing results.
package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"keepgen.dev/pkg/keepgen/internal/adapter"
	"keepgen.dev/pkg/keepgen/internal/controller"
	m "keepgen.dev/pkg/keepgen/internal/model"
	"keepgen.dev/pkg/keepgen/internal/section"
)

// GenerateArgs describes a single generation requested on the command line.
type GenerateArgs struct {
	Template    string
	DestPath    string
	Filename    string
	ContextFile m.Path         // optional JSON, YAML or TOML file with context values
	Values      map[string]any // applied over the context file
	Protected   bool
	DryRun      bool
	Diff        bool
}

// RunArgs describes a batch of job files.
type RunArgs struct {
	Jobs      []m.Path
	Parallel  int
	Protected bool // used by jobs that do not set protsect
	DryRun    bool
	Diff      bool
}

// WatchArgs describes a watch session over a batch of job files.
type WatchArgs struct {
	RunArgs
	Debounce time.Duration
}

// ScanArgs names the file, or directory tree, whose protected sections are listed.
type ScanArgs struct {
	Path m.Path
}

// TagsArgs filters the listed comment tags to one file type; empty lists all.
type TagsArgs struct {
	FileType string
}

// Workflow is the entry point used by the commands.
type Workflow interface {
	Generate(ctx context.Context, args GenerateArgs) error
	Run(ctx context.Context, args RunArgs) error
	Batch(ctx context.Context, args RunArgs) ([]m.Result, error)
	Watch(ctx context.Context, args WatchArgs) error
	Scan(ctx context.Context, args ScanArgs) error
	Tags(ctx context.Context, args TagsArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.JobStore
	controller.UI

	watcher   adapter.Watcher
	renderer  TemplateRenderer
	registry  *section.Registry
	generator Generator
}

// NewWorkflow creates a Workflow from its collaborators.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	jobStore adapter.JobStore,
	watcher adapter.Watcher,
	ui controller.UI,
	renderer TemplateRenderer,
	registry *section.Registry,
	generator Generator,
) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		JobStore:        jobStore,
		UI:              ui,
		watcher:         watcher,
		renderer:        renderer,
		registry:        registry,
		generator:       generator,
	}
}

func (w *workflow) Generate(ctx context.Context, args GenerateArgs) error {
	if err := w.Start(ctx, controller.WithGenerateMode()); err != nil {
		return fmt.Errorf("start ui: %w", err)
	}
	defer w.Close(ctx)

	values, err := w.contextValues(args.ContextFile, args.Values)
	if err != nil {
		return err
	}

	result, err := w.generator.Generate(ctx, Request{
		Template:  args.Template,
		DestPath:  args.DestPath,
		Filename:  args.Filename,
		Context:   values,
		Protected: args.Protected,
		DryRun:    args.DryRun,
		Diff:      args.Diff,
	})

	w.DisplayResult(ctx, result)

	return err
}

func (w *workflow) Run(ctx context.Context, args RunArgs) error {
	labels := make([]string, 0, len(args.Jobs))
	for _, job := range args.Jobs {
		labels = append(labels, string(job))
	}

	if err := w.Start(ctx, controller.WithBatchMode(labels)); err != nil {
		return fmt.Errorf("start ui: %w", err)
	}

	results, err := w.Batch(ctx, args)

	w.DisplaySummary(ctx, results)
	w.Wait(ctx)
	w.Close(ctx)

	return err
}

// Batch runs every job independently on at most args.Parallel workers. A
// failing job does not stop the others; its error is recorded on its result
// and joined into the returned error. Results keep the order of args.Jobs.
func (w *workflow) Batch(ctx context.Context, args RunArgs) ([]m.Result, error) {
	results := make([]m.Result, len(args.Jobs))
	errs := make([]error, len(args.Jobs))

	var group errgroup.Group
	if args.Parallel > 0 {
		group.SetLimit(args.Parallel)
	}

	for i, job := range args.Jobs {
		group.Go(func() error {
			w.DisplayJobStarted(ctx, string(job))

			result, err := w.runJob(ctx, job, args)
			results[i] = result
			errs[i] = err

			w.DisplayResult(ctx, result)

			return nil
		})
	}

	_ = group.Wait()

	return results, errors.Join(errs...)
}

func (w *workflow) runJob(ctx context.Context, jobPath m.Path, args RunArgs) (m.Result, error) {
	if err := ctx.Err(); err != nil {
		return failedResult(jobPath, err), err
	}

	resolved, err := w.resolveJob(jobPath)
	if err != nil {
		return failedResult(jobPath, err), err
	}

	job, err := w.LoadJob(resolved)
	if err != nil {
		return failedResult(jobPath, err), err
	}

	result, err := w.generator.Generate(ctx, Request{
		Job:       jobPath,
		Template:  job.Template,
		DestPath:  job.DestPath,
		Filename:  job.Filename,
		Context:   job.Context,
		Protected: job.ProtectedOr(args.Protected),
		DryRun:    args.DryRun,
		Diff:      args.Diff,
	})
	if err != nil {
		return result, fmt.Errorf("job %s: %w", jobPath, err)
	}

	return result, nil
}

// resolveJob accepts a path to a job file or a job name found in the
// template search paths.
func (w *workflow) resolveJob(jobPath m.Path) (m.Path, error) {
	if info, err := w.FileInfo(jobPath); err == nil && !info.IsDir() {
		return w.AbsPath(jobPath)
	}

	located, err := w.renderer.Locate(string(jobPath))
	if err != nil {
		return "", fmt.Errorf("job %s: %w", jobPath, err)
	}

	return m.Path(located), nil
}

func (w *workflow) Watch(ctx context.Context, args WatchArgs) error {
	if err := w.Start(ctx, controller.WithWatchMode()); err != nil {
		return fmt.Errorf("start ui: %w", err)
	}
	defer w.Close(ctx)

	results, err := w.Batch(ctx, args.RunArgs)
	w.DisplaySummary(ctx, results)

	if err != nil {
		slog.Warn("initial generation failed", "error", err)
	}

	roots := make([]m.Path, 0, len(args.Jobs)+len(w.renderer.Paths()))

	for _, job := range args.Jobs {
		if resolved, resolveErr := w.resolveJob(job); resolveErr == nil {
			roots = append(roots, resolved)
		}
	}

	for _, path := range w.renderer.Paths() {
		roots = append(roots, m.Path(path))
	}

	return w.watcher.Watch(ctx, roots, args.Debounce, func(ctx context.Context, changed []m.Path) error {
		w.renderer.Forget()

		affected := w.affectedJobs(args.Jobs, changed)
		if len(affected) == 0 {
			slog.Debug("changes do not affect any job", "changed", len(changed))
			return nil
		}

		rerun := args.RunArgs
		rerun.Jobs = affected

		results, err := w.Batch(ctx, rerun)
		w.DisplaySummary(ctx, results)

		return err
	})
}

// affectedJobs returns the jobs whose job file or template is in changed.
// Jobs that can no longer be loaded are included so the error is reported.
func (w *workflow) affectedJobs(jobs []m.Path, changed []m.Path) []m.Path {
	set := make(map[string]bool, len(changed))
	for _, path := range changed {
		set[filepath.Clean(string(path))] = true
	}

	var affected []m.Path

	for _, jobPath := range jobs {
		resolved, err := w.resolveJob(jobPath)
		if err != nil {
			affected = append(affected, jobPath)
			continue
		}

		if set[filepath.Clean(string(resolved))] {
			affected = append(affected, jobPath)
			continue
		}

		job, err := w.LoadJob(resolved)
		if err != nil {
			affected = append(affected, jobPath)
			continue
		}

		templateFile, err := w.renderer.Locate(job.Template)
		if err != nil || set[filepath.Clean(templateFile)] {
			affected = append(affected, jobPath)
		}
	}

	return affected
}

// Scan lists the sections of one file. A directory is walked recursively and
// every file with known comment tags that holds sections or anomalies is
// listed; files that fail to scan are reported together at the end.
func (w *workflow) Scan(ctx context.Context, args ScanArgs) error {
	info, err := w.FileInfo(args.Path)
	if err != nil {
		return fmt.Errorf("scan %s: %w", args.Path, err)
	}

	if !info.IsDir() {
		store, err := w.generator.ScanFile(ctx, args.Path)
		if err != nil {
			return err
		}

		w.DisplaySections(ctx, args.Path, store)

		return nil
	}

	var errs []error

	walkErr := w.Walk(args.Path, true, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if info.IsDir() {
			if path != string(args.Path) && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}

			return nil
		}

		if len(w.registry.Lookup(filepath.Ext(path))) == 0 {
			return nil
		}

		store, scanErr := w.generator.ScanFile(ctx, m.Path(path))
		if scanErr != nil {
			errs = append(errs, scanErr)
			return nil
		}

		if store.Len() > 0 || len(store.Anomalies()) > 0 {
			w.DisplaySections(ctx, m.Path(path), store)
		}

		return nil
	})
	if walkErr != nil {
		errs = append(errs, fmt.Errorf("scan %s: %w", args.Path, walkErr))
	}

	return errors.Join(errs...)
}

func (w *workflow) Tags(ctx context.Context, args TagsArgs) error {
	entries := w.registry.Entries()

	if args.FileType != "" {
		want := args.FileType
		if !strings.HasPrefix(want, ".") {
			want = "." + want
		}

		filtered := entries[:0:0]

		for _, entry := range entries {
			if entry.FileType == want {
				filtered = append(filtered, entry)
			}
		}

		entries = filtered
	}

	w.DisplayTags(ctx, entries)

	return nil
}

// contextValues loads the optional context file and overlays values.
func (w *workflow) contextValues(file m.Path, values map[string]any) (map[string]any, error) {
	merged := map[string]any{}

	if file != "" {
		loaded, err := w.LoadContext(file)
		if err != nil {
			return nil, fmt.Errorf("load context: %w", err)
		}

		for k, v := range loaded {
			merged[k] = v
		}
	}

	for k, v := range values {
		merged[k] = v
	}

	return merged, nil
}

func failedResult(jobPath m.Path, err error) m.Result {
	return m.Result{Job: jobPath, Status: m.StatusFailed, Err: err}
}
