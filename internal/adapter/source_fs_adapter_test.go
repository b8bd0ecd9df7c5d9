package adapter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	m "keepgen.dev/pkg/keepgen/internal/model"
)

func TestLocalSourceFSAdapter_Walk(t *testing.T) {
	t.Run("non recursive skips nested files", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "main.py"), "print(1)\n")

		nestedDir := filepath.Join(root, "nested")
		mustMkdir(t, nestedDir)
		writeTestFile(t, filepath.Join(nestedDir, "child.py"), "x = 1\n")

		var visited []string
		err := adapter.Walk(m.Path(root), false, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			visited = append(visited, path)
			return nil
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}

		for _, forbidden := range []string{nestedDir, filepath.Join(nestedDir, "child.py")} {
			if containsPath(visited, forbidden) {
				t.Fatalf("Walk() unexpectedly visited %s when recursive is false", forbidden)
			}
		}

		if !containsPath(visited, filepath.Join(root, "main.py")) {
			t.Fatalf("Walk() did not visit top-level file")
		}
	})

	t.Run("recursive visits nested files", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "main.py"), "print(1)\n")

		nestedDir := filepath.Join(root, "nested")
		mustMkdir(t, nestedDir)
		child := filepath.Join(nestedDir, "child.py")
		writeTestFile(t, child, "x = 1\n")

		var visited []string
		err := adapter.Walk(m.Path(root), true, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			visited = append(visited, path)
			return nil
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}

		if !containsPath(visited, child) {
			t.Fatalf("Walk() did not visit nested file when recursive")
		}
	})
}

func TestLocalSourceFSAdapter_ReadFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "main.py")
	content := "# >>> a <<<\n" + "# >>> <<<\n"
	writeTestFile(t, path, content)

	got, err := adapter.ReadFile(m.Path(path))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(got) != content {
		t.Fatalf("ReadFile() = %q, want %q", string(got), content)
	}

	if _, err := adapter.ReadFile(m.Path(filepath.Join(root, "missing.py"))); !os.IsNotExist(err) {
		t.Fatalf("ReadFile() on missing file error = %v, want not-exist", err)
	}
}

func TestLocalSourceFSAdapter_FileInfo(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "main.py")
	writeTestFile(t, path, "print(1)\n")

	info, err := adapter.FileInfo(m.Path(path))
	if err != nil {
		t.Fatalf("FileInfo() error = %v", err)
	}

	if info.IsDir() {
		t.Fatalf("FileInfo() reported file as directory")
	}

	dirInfo, err := adapter.FileInfo(m.Path(root))
	if err != nil {
		t.Fatalf("FileInfo() error = %v", err)
	}

	if !dirInfo.IsDir() {
		t.Fatalf("FileInfo() reported directory as file")
	}
}

func TestLocalSourceFSAdapter_WriteFileAtomic(t *testing.T) {
	t.Run("creates missing file and directories", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		path := filepath.Join(root, "out", "gen", "user.py")

		if err := adapter.WriteFileAtomic(m.Path(path), []byte("class User: pass\n"), 0o644); err != nil {
			t.Fatalf("WriteFileAtomic() error = %v", err)
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read back: %v", err)
		}

		if string(got) != "class User: pass\n" {
			t.Fatalf("WriteFileAtomic() wrote %q", string(got))
		}
	})

	t.Run("replaces content and keeps permissions", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		path := filepath.Join(root, "run.sh")
		writeTestFile(t, path, "echo old\n")

		if err := os.Chmod(path, 0o755); err != nil {
			t.Fatalf("chmod: %v", err)
		}

		if err := adapter.WriteFileAtomic(m.Path(path), []byte("echo new\n"), 0o644); err != nil {
			t.Fatalf("WriteFileAtomic() error = %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}

		if info.Mode().Perm() != 0o755 {
			t.Fatalf("WriteFileAtomic() mode = %v, want 0755", info.Mode().Perm())
		}

		got, _ := os.ReadFile(path)
		if string(got) != "echo new\n" {
			t.Fatalf("WriteFileAtomic() wrote %q", string(got))
		}
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		path := filepath.Join(root, "a.py")

		for i := 0; i < 3; i++ {
			if err := adapter.WriteFileAtomic(m.Path(path), []byte(strings.Repeat("x", i)), 0o644); err != nil {
				t.Fatalf("WriteFileAtomic() error = %v", err)
			}
		}

		entries, err := os.ReadDir(root)
		if err != nil {
			t.Fatalf("ReadDir: %v", err)
		}

		if len(entries) != 1 || entries[0].Name() != "a.py" {
			t.Fatalf("unexpected directory content: %v", entries)
		}
	})

	t.Run("target that is a directory fails without side effects", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		target := filepath.Join(root, "taken")
		mustMkdir(t, target)
		writeTestFile(t, filepath.Join(target, "keep.txt"), "keep")

		if err := adapter.WriteFileAtomic(m.Path(target), []byte("data"), 0o644); err == nil {
			t.Fatalf("WriteFileAtomic() expected error when target is a non-empty directory")
		}

		entries, _ := os.ReadDir(root)
		if len(entries) != 1 {
			t.Fatalf("temp file left behind: %v", entries)
		}

		got, _ := os.ReadFile(filepath.Join(target, "keep.txt"))
		if string(got) != "keep" {
			t.Fatalf("existing content modified")
		}
	})
}

func TestLocalSourceFSAdapter_PathHelpers(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	abs, err := adapter.AbsPath(m.Path("rel/../x.py"))
	if err != nil {
		t.Fatalf("AbsPath() error = %v", err)
	}

	if !filepath.IsAbs(string(abs)) || filepath.Base(string(abs)) != "x.py" || strings.Contains(string(abs), "..") {
		t.Fatalf("AbsPath() = %s", abs)
	}
}

func writeTestFile(t *testing.T, path, contents string) {
	t.Helper()
	writeTestBytes(t, path, []byte(contents))
}

func writeTestBytes(t *testing.T, path string, contents []byte) {
	t.Helper()
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("failed to create dir %s: %v", path, err)
	}
}

func containsPath(paths []string, target string) bool {
	for _, p := range paths {
		if p == target {
			return true
		}
	}

	return false
}
