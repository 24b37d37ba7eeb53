// Package artifact locates the export files produced by the last successful
// search. Existence is checked on every call; nothing is cached.
package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when the artifact file does not exist.
var ErrNotFound = errors.New("artifact not found")

// Kind describes one export format.
type Kind struct {
	Name        string
	ContentType string
	Attachment  bool
}

// Export formats, each persisted under a fixed file name.
var (
	JSON = Kind{Name: "resultados.json", ContentType: "application/json; charset=utf-8"}
	CSV  = Kind{Name: "resultados.csv", ContentType: "text/csv", Attachment: true}
	XLSX = Kind{
		Name:        "resultados.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Attachment:  true,
	}
	PDF = Kind{Name: "resultados.pdf", ContentType: "application/pdf", Attachment: true}
)

// Kinds returns every export format.
func Kinds() []Kind {
	return []Kind{JSON, CSV, XLSX, PDF}
}

// Disposition returns the Content-Disposition header value forcing a download.
func (k Kind) Disposition() string {
	return fmt.Sprintf("attachment; filename=%q", k.Name)
}

// Gateway opens artifacts from a fixed directory.
type Gateway struct {
	dir string
}

// NewGateway creates a Gateway rooted at dir. An empty dir means the process
// working directory.
func NewGateway(dir string) *Gateway {
	if dir == "" {
		dir = "."
	}
	return &Gateway{dir: dir}
}

// Path returns where the artifact of kind k lives.
func (g *Gateway) Path(k Kind) string {
	return filepath.Join(g.dir, k.Name)
}

// Open returns the artifact file and its metadata. The caller closes the file.
func (g *Gateway) Open(k Kind) (*os.File, fs.FileInfo, error) {
	path := g.Path(k)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, k.Name)
		}
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, k.Name)
	}
	f, err := os.Open(path) // #nosec G304 -- fixed artifact names under the configured directory.
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, k.Name)
		}
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, info, nil
}
