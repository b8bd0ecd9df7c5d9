package adapter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	m "keepgen.dev/pkg/keepgen/internal/model"
)

// DefaultDebounce groups the burst of events editors emit on save.
const DefaultDebounce = 200 * time.Millisecond

// ChangeHandler receives the distinct paths that changed during one debounce
// window, sorted.
type ChangeHandler func(ctx context.Context, changed []m.Path) error

// Watcher reports changes below a set of files and directories.
type Watcher interface {
	// Watch blocks until ctx is done. Errors returned by onChange are logged
	// and do not stop the watch.
	Watch(ctx context.Context, roots []m.Path, debounce time.Duration, onChange ChangeHandler) error
}

// FSNotifyWatcher implements Watcher with fsnotify. Directories are watched
// recursively; for plain files the parent directory is watched and events are
// filtered to the file itself.
type FSNotifyWatcher struct{}

// NewFSNotifyWatcher constructs an FSNotifyWatcher.
func NewFSNotifyWatcher() *FSNotifyWatcher {
	return &FSNotifyWatcher{}
}

type watchSet struct {
	files map[string]bool
	dirs  []string
}

func (s *watchSet) matches(path string) bool {
	if s.files[path] {
		return true
	}

	for _, dir := range s.dirs {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	return false
}

// Watch implements Watcher.
func (w *FSNotifyWatcher) Watch(ctx context.Context, roots []m.Path, debounce time.Duration, onChange ChangeHandler) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	defer func() {
		if closeErr := fsw.Close(); closeErr != nil {
			slog.Error("failed to close watcher", "error", closeErr)
		}
	}()

	set, err := addRoots(fsw, roots)
	if err != nil {
		return err
	}

	pending := map[string]bool{}
	timer := time.NewTimer(debounce)
	timer.Stop()

	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}

			if !relevant(event) {
				continue
			}

			if event.Has(fsnotify.Create) && set.matches(event.Name) {
				watchNewDir(fsw, event.Name)
			}

			if !set.matches(event.Name) {
				continue
			}

			slog.Debug("change detected", "path", event.Name, "op", event.Op.String())

			pending[event.Name] = true

			timer.Reset(debounce)
		case watchErr, ok := <-fsw.Errors:
			if !ok {
				return nil
			}

			slog.Warn("watcher error", "error", watchErr)
		case <-timer.C:
			changed := drain(pending)
			if len(changed) == 0 {
				continue
			}

			if err := onChange(ctx, changed); err != nil {
				slog.Error("change handler failed", "error", err)
			}
		}
	}
}

func addRoots(fsw *fsnotify.Watcher, roots []m.Path) (*watchSet, error) {
	set := &watchSet{files: map[string]bool{}}

	for _, root := range roots {
		abs, err := filepath.Abs(string(root))
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", root, err)
		}

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", root, err)
		}

		if !info.IsDir() {
			set.files[abs] = true

			if err := fsw.Add(filepath.Dir(abs)); err != nil {
				return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
			}

			continue
		}

		set.dirs = append(set.dirs, abs)

		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}

			if !d.IsDir() {
				return nil
			}

			if path != abs && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}

			return fsw.Add(path)
		})
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", root, err)
		}
	}

	slog.Debug("watching", "files", len(set.files), "dirs", len(set.dirs))

	return set, nil
}

// relevant drops chmod-only events and the temp files written by
// WriteFileAtomic.
func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}

	return !strings.Contains(filepath.Base(event.Name), ".keepgen-")
}

func watchNewDir(fsw *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}

	if err := fsw.Add(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to watch new directory", "path", path, "error", err)
	}
}

func drain(pending map[string]bool) []m.Path {
	changed := make([]m.Path, 0, len(pending))
	for path := range pending {
		changed = append(changed, m.Path(path))
		delete(pending, path)
	}

	sort.Slice(changed, func(i, j int) bool { return changed[i] < changed[j] })

	return changed
}
