// Package uploads stores memory attachments on local disk and serves them
// back as static assets under /uploads/.
package uploads

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// URLPrefix is the public path uploaded files are served under.
const URLPrefix = "/uploads/"

// Store writes uploaded files to a directory. File names are
// "<epoch-millis>-<original-name>"; two uploads in the same millisecond can
// collide, which is acceptable at this scale.
type Store struct {
	dir string
	now func() time.Time
}

// New creates the upload directory if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// Save writes the file and returns its public relative URL.
func (s *Store) Save(originalName string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), sanitize(originalName))
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	return URLPrefix + name, nil
}

// Handler serves stored files.
func (s *Store) Handler() http.Handler {
	return http.StripPrefix(URLPrefix, http.FileServer(http.Dir(s.dir)))
}

// sanitize strips path components so a crafted filename cannot escape the
// upload directory.
func sanitize(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, string(filepath.Separator), "_")
	if name == "." || name == ".." || name == "" {
		return "file"
	}
	return name
}
