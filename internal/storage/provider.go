// Package storage defines the content-root file-system abstraction.
package storage

import (
	"io"
	"time"
)

// Provider is the interface for content file access. All paths are absolute.
type Provider interface {
	// Root returns the absolute content root.
	Root() string
	// Open opens the file at path for reading.
	Open(path string) (io.ReadCloser, error)
	// Exists reports whether path is present on disk.
	Exists(path string) bool
	// Categories returns the directory segments between the root and the
	// file's parent directory.
	Categories(path string) ([]string, error)
	// Times returns the file's creation and last-modified times in local time.
	Times(path string) (created, modified time.Time, err error)
}
