package filestore

import (
	"errors"
)

// ErrNotExist is returned by stores for paths that are absent.
var ErrNotExist = errors.New("path does not exist")

// Entry is one item of a directory listing.
type Entry struct {
	Name      string
	IsDir     bool
	IsRegular bool
	Size      int64
}

// Store is the minimal file access the corpus builder needs.
type Store interface {
	// IsDir reports whether path exists and is a directory. A missing path
	// is (false, nil).
	IsDir(path string) (bool, error)
	// MkdirAll creates path and any missing parents. Existing directories
	// are left untouched.
	MkdirAll(path string) error
	// List returns the immediate entries of dir in the store's order.
	List(dir string) ([]Entry, error)
	// ReadBytes returns the full content of a file.
	ReadBytes(path string) ([]byte, error)
	// WriteText creates or truncates path and writes text to it.
	WriteText(path, text string) error
}
