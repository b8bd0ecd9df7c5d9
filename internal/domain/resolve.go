package domain

import (
	"path/filepath"
	"strings"

	m "keepgen.dev/pkg/keepgen/internal/model"
)

// ResolveDestPath computes where a template renders to.
//
// An empty destDir means the template's own directory and a relative destDir
// is taken relative to it. An empty filename means the template's base name
// with its last extension removed, so "requirements.md.tmpl" becomes
// "requirements.md". The result is absolute and cleaned.
func ResolveDestPath(templateFile m.Path, destDir, filename string) (m.Path, error) {
	templateDir := filepath.Dir(string(templateFile))

	dir := templateDir

	switch {
	case destDir == "":
	case filepath.IsAbs(destDir):
		dir = destDir
	default:
		dir = filepath.Join(templateDir, destDir)
	}

	if filename == "" {
		base := filepath.Base(string(templateFile))
		filename = strings.TrimSuffix(base, filepath.Ext(base))
	}

	abs, err := filepath.Abs(filepath.Join(dir, filename))
	if err != nil {
		return "", err
	}

	return m.Path(abs), nil
}
