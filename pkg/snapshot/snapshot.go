// Package snapshot exports a session as a static, self-contained HTML page.
package snapshot

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/dylandreimerink/asmviz/pkg/session"
)

// DefaultFileName is the name of the exported file, existing files are overwritten.
const DefaultFileName = "web_export.html"

// fileMode is the mode of a newly exported page, an existing page keeps its mode.
const fileMode os.FileMode = 0644

//go:embed export.html.tmpl
var pageTemplate string

var page = template.Must(template.New("export").Parse(pageTemplate))

// Render writes the HTML page for snap to w.
func Render(w io.Writer, snap session.Snapshot) error {
	return page.Execute(w, snap)
}

// WriteFile renders snap to path. The page is written to a temporary file in the same directory first and then
// moved into place, so path either holds a complete page or is left untouched.
func WriteFile(path string, snap session.Snapshot) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".asmviz-export-*.html")
	if err != nil {
		return fmt.Errorf("create tmp: %w", err)
	}

	mode := fileMode
	if fi, serr := os.Stat(path); serr == nil {
		mode = fi.Mode().Perm()
	}

	err = tmp.Chmod(mode)
	if err == nil {
		err = Render(tmp, snap)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("render: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

// Export writes a snapshot of the session to path, DefaultFileName in the working directory if path is empty. The
// absolute path of the written file is returned.
func Export(c *session.Controller, path string) (string, error) {
	if path == "" {
		path = DefaultFileName
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("abs: %w", err)
	}

	if err := WriteFile(abs, c.Snapshot()); err != nil {
		return "", err
	}

	return abs, nil
}
