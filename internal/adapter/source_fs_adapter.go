// Package adapter contains the infrastructure adapters of the keepgen CLI.
package adapter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	m "keepgen.dev/pkg/keepgen/internal/model"
)

// SourceFSAdapter abstracts the filesystem operations the domain layer needs
// to read previous output and replace it with regenerated content.
type SourceFSAdapter interface {
	// Walk traverses the provided root path. When recursive is false the
	// implementation should limit itself to the root directory (no sub-dirs).
	Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// FileInfo returns metadata for a path so the domain can check existence or
	// distinguish between files and directories when necessary.
	FileInfo(path m.Path) (os.FileInfo, error)

	// WriteFileAtomic replaces path with content. Either the complete content
	// is visible at path or the previous file is left untouched.
	WriteFileAtomic(path m.Path, content []byte, perm os.FileMode) error

	// AbsPath returns an absolute, cleaned version of path.
	AbsPath(path m.Path) (m.Path, error)
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk. It is
// defined here to avoid leaking the standard-library type directly into the
// domain layer.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// LocalSourceFSAdapter implements SourceFSAdapter on top of the os package.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Walk iterates over files under root, optionally descending into subdirectories.
func (a *LocalSourceFSAdapter) Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error {
	rootStr := string(root)

	return filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fn(path, info, err)
		}

		if info.IsDir() && !recursive && path != rootStr {
			return filepath.SkipDir
		}

		return fn(path, info, nil)
	})
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	// #nosec G304 - destination paths are resolved by the generator
	return os.ReadFile(string(path))
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// WriteFileAtomic writes content to a temporary file next to path and renames
// it over path. An existing file keeps its permission bits.
func (a *LocalSourceFSAdapter) WriteFileAtomic(path m.Path, content []byte, perm os.FileMode) (err error) {
	target := string(path)
	dir := filepath.Dir(target)

	if info, statErr := os.Stat(target); statErr == nil {
		perm = info.Mode().Perm()
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".keepgen-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpName := tmp.Name()

	defer func() {
		if err == nil {
			return
		}

		_ = tmp.Close()

		if removeErr := os.Remove(tmpName); removeErr != nil && !os.IsNotExist(removeErr) {
			slog.Error("failed to remove temp file", "path", tmpName, "error", removeErr)
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return fmt.Errorf("write %s: %w", tmpName, err)
	}

	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}

	if err = os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}

	if err = os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("rename %s: %w", tmpName, err)
	}

	slog.Debug("wrote file", "path", target, "bytes", len(content))

	return nil
}

// AbsPath returns the absolute form of path.
func (a *LocalSourceFSAdapter) AbsPath(path m.Path) (m.Path, error) {
	abs, err := filepath.Abs(string(path))
	if err != nil {
		return "", err
	}

	return m.Path(abs), nil
}
