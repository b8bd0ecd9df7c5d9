// Package render executes generation templates with the protected sections of
// the previous output injected.
package render

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"keepgen.dev/pkg/keepgen/internal/section"
)

// SectionsKey is the context key under which templates find the section store.
const SectionsKey = "ProtectedSections"

// ErrTemplateNotFound is returned when no search path holds the requested template.
var ErrTemplateNotFound = errors.New("template not found")

// Renderer loads templates from a list of search paths and renders them.
// Parsed templates are cached; a Renderer is safe for concurrent use.
type Renderer struct {
	paths   []string
	markers section.Markers
	funcs   template.FuncMap

	mu    sync.Mutex
	cache map[string]*template.Template
}

// NewRenderer creates a Renderer searching paths in order. New sections are
// synthesized with markers.
func NewRenderer(paths []string, markers section.Markers) *Renderer {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	r := &Renderer{
		paths:   append([]string(nil), paths...),
		markers: markers.WithDefaults(),
		cache:   make(map[string]*template.Template),
	}
	r.funcs = r.funcMap()

	return r
}

// Paths returns the template search paths.
func (r *Renderer) Paths() []string {
	return append([]string(nil), r.paths...)
}

// Markers returns the markers used for synthesized tags.
func (r *Renderer) Markers() section.Markers {
	return r.markers
}

// Locate returns the absolute path of the first file called name found in the
// search paths. Absolute names are checked as they are.
func (r *Renderer) Locate(name string) (string, error) {
	candidates := make([]string, 0, len(r.paths))
	if filepath.IsAbs(name) {
		candidates = append(candidates, name)
	} else {
		for _, dir := range r.paths {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}

		abs, err := filepath.Abs(candidate)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", candidate, err)
		}

		return abs, nil
	}

	return "", fmt.Errorf("%w: %s (searched %s)", ErrTemplateNotFound, name, strings.Join(r.paths, ", "))
}

// Parse registers an in-memory template under name, replacing any cached one.
func (r *Renderer) Parse(name, text string) error {
	tmpl, err := template.New(name).Funcs(r.funcs).Parse(text)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}

	r.mu.Lock()
	r.cache[name] = tmpl
	r.mu.Unlock()

	return nil
}

// Forget drops cached templates so the next Render reads them from disk again.
func (r *Renderer) Forget() {
	r.mu.Lock()
	r.cache = make(map[string]*template.Template)
	r.mu.Unlock()
}

// Render executes template name with data. The store is exposed to the
// template as .ProtectedSections; a nil store behaves as an empty one.
func (r *Renderer) Render(name string, data map[string]any, store *section.Store) (string, error) {
	tmpl, err := r.load(name)
	if err != nil {
		return "", err
	}

	if store == nil {
		store = section.EmptyStore()
	}

	ctx := make(map[string]any, len(data)+1)
	for k, v := range data {
		ctx[k] = v
	}

	ctx[SectionsKey] = store

	var out strings.Builder
	if err := tmpl.Execute(&out, ctx); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}

	slog.Debug("rendered template", "template", name, "bytes", out.Len(), "sections", store.Len())

	return out.String(), nil
}

func (r *Renderer) load(name string) (*template.Template, error) {
	r.mu.Lock()
	tmpl, ok := r.cache[name]
	r.mu.Unlock()

	if ok {
		return tmpl, nil
	}

	path, err := r.Locate(name)
	if err != nil {
		return nil, err
	}

	// #nosec G304 - template paths come from the configured search paths
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}

	tmpl, err = template.New(name).Funcs(r.funcs).Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// another worker may have parsed it meanwhile; keep the first
	if cached, ok := r.cache[name]; ok {
		return cached, nil
	}

	r.cache[name] = tmpl

	return tmpl, nil
}
