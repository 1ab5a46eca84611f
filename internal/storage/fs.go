package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrOutsideRoot is returned for paths that do not live under the content root.
var ErrOutsideRoot = errors.New("storage: path is not under content root")

// ContentExts are the recognised content file extensions.
var ContentExts = []string{"md", "markdown", "mmd", "mdown"}

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to content directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute content root.
func (f *FS) Root() string { return f.root }

// rel returns path relative to the root and rejects anything that escapes it.
func (f *FS) rel(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	rel, err := filepath.Rel(f.root, abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return rel, nil
}

// Open opens a content file for reading.
func (f *FS) Open(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	return file, nil
}

// Exists reports whether path is present on disk.
func (f *FS) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// Categories returns the directory segments between root and path's parent.
func (f *FS) Categories(path string) ([]string, error) {
	rel, err := f.rel(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(rel)
	if dir == "." {
		return []string{}, nil
	}
	return strings.Split(filepath.ToSlash(dir), "/"), nil
}

// Times returns the creation and modification time of path in local time.
// When the file system does not expose a birth time the modification time
// stands in for it.
func (f *FS) Times(path string) (time.Time, time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	modified := info.ModTime().Local()
	created, ok := birthTime(path)
	if !ok {
		created = modified
	}
	return created.Local(), modified, nil
}

// IsHidden reports whether a file or directory name is a dot-file.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// IsContentFile reports whether name should be indexed: it has a content
// extension and is not a draft ("_") or backup ("~") file.
func IsContentFile(name string) bool {
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, "~") {
		return false
	}
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	for _, e := range ContentExts {
		if ext == e {
			return true
		}
	}
	return false
}

var _ Provider = (*FS)(nil)
