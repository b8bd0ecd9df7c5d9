package domain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"

	"keepgen.dev/pkg/keepgen/internal/adapter"
	m "keepgen.dev/pkg/keepgen/internal/model"
	"keepgen.dev/pkg/keepgen/internal/section"
)

const generatedFileMode fs.FileMode = 0o644

// TemplateRenderer locates and executes templates. It is satisfied by
// *render.Renderer.
type TemplateRenderer interface {
	Locate(name string) (string, error)
	Render(name string, data map[string]any, store *section.Store) (string, error)
	Markers() section.Markers
	Paths() []string
	Forget()
}

// Request is a single generation.
type Request struct {
	Job       m.Path // job file the request came from, if any
	Template  string
	DestPath  string
	Filename  string
	Context   map[string]any
	Protected bool // carry protected sections over from the existing destination
	DryRun    bool // render and diff only
	Diff      bool // attach a diff to written results too
}

// Generator renders one template into its destination file, carrying the
// protected sections of the previous output over into the new one.
type Generator interface {
	Generate(ctx context.Context, req Request) (m.Result, error)
	ScanFile(ctx context.Context, path m.Path) (*section.Store, error)
}

type generator struct {
	fsAdapter adapter.SourceFSAdapter
	renderer  TemplateRenderer
	registry  *section.Registry
	scanner   section.Scanner
}

// NewGenerator constructs a Generator. Scanning uses the renderer's markers
// so that captured and synthesized tags agree.
func NewGenerator(fsAdapter adapter.SourceFSAdapter, renderer TemplateRenderer, registry *section.Registry) Generator {
	return &generator{
		fsAdapter: fsAdapter,
		renderer:  renderer,
		registry:  registry,
		scanner:   section.NewScanner(renderer.Markers()),
	}
}

// Generate runs scan, render and write for req. On failure the returned
// result has StatusFailed, carries the error, and the destination is untouched.
func (g *generator) Generate(ctx context.Context, req Request) (m.Result, error) {
	result := m.Result{Job: req.Job, Template: req.Template}

	fail := func(err error) (m.Result, error) {
		result.Status = m.StatusFailed
		result.Err = err

		slog.Error("generation failed", "template", req.Template, "job", string(req.Job), "error", err)

		return result, err
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	templateFile, err := g.renderer.Locate(req.Template)
	if err != nil {
		return fail(err)
	}

	dest, err := ResolveDestPath(m.Path(templateFile), req.DestPath, req.Filename)
	if err != nil {
		return fail(fmt.Errorf("resolve destination: %w", err))
	}

	result.Destination = dest

	previous, existed, err := g.readExisting(dest)
	if err != nil {
		return fail(err)
	}

	store := section.EmptyStore()

	if req.Protected && existed {
		store, err = g.scan(dest, previous)
		if err != nil {
			return fail(err)
		}
	}

	result.Sections = store.Len()
	result.Anomalies = store.Anomalies()

	rendered, err := g.renderer.Render(req.Template, req.Context, store)
	if err != nil {
		return fail(err)
	}

	result.Changed = !existed || rendered != previous

	if req.DryRun || (req.Diff && result.Changed) {
		result.Diff, err = unifiedDiff(dest, previous, rendered)
		if err != nil {
			return fail(fmt.Errorf("diff %s: %w", dest, err))
		}
	}

	switch {
	case req.DryRun:
		result.Status = m.StatusDryRun
	case !result.Changed:
		result.Status = m.StatusUnchanged
	default:
		if err := g.fsAdapter.WriteFileAtomic(dest, []byte(rendered), generatedFileMode); err != nil {
			return fail(fmt.Errorf("write %s: %w", dest, err))
		}

		result.Status = m.StatusWritten
	}

	slog.Info("generated", "template", req.Template, "destination", string(dest),
		"status", result.Status.String(), "sections", result.Sections)

	return result, nil
}

// ScanFile reports the protected sections of an existing file.
func (g *generator) ScanFile(ctx context.Context, path m.Path) (*section.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := g.fsAdapter.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return g.scan(path, string(content))
}

func (g *generator) readExisting(dest m.Path) (string, bool, error) {
	content, err := g.fsAdapter.ReadFile(dest)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", dest, err)
	}

	return string(content), true, nil
}

func (g *generator) scan(path m.Path, content string) (*section.Store, error) {
	leaders := g.registry.Lookup(filepath.Ext(string(path)))
	if len(leaders) == 0 {
		slog.Warn("no comment leaders registered for file type, protected sections are not carried over",
			"path", string(path), "ext", filepath.Ext(string(path)))
	}

	return g.scanner.ScanSource(string(path), content, leaders)
}

func unifiedDiff(dest m.Path, previous, rendered string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(previous),
		B:        difflib.SplitLines(rendered),
		FromFile: string(dest),
		ToFile:   string(dest) + " (generated)",
		Context:  3,
	})
}
