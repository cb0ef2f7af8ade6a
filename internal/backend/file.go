package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File stores the document in a local JSON file.
type File struct {
	path string
	mu   sync.Mutex
}

var _ Backend = (*File)(nil)

// NewFile returns a File backend rooted at path.
func NewFile(path string) *File { return &File{path: path} }

// Name implements Backend.
func (f *File) Name() string { return "file:" + f.path }

// Fetch reads the whole file. A missing file yields ErrDocumentNotFound.
func (f *File) Fetch(_ context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", f.path, ErrDocumentNotFound)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Put writes doc via a temp file, then atomically replaces the target.
func (f *File) Put(_ context.Context, doc []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()

	// Best-effort cleanup if anything fails before rename.
	defer func() { _ = os.Remove(name) }()

	if _, err := tmp.Write(doc); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(name, f.path)
}
