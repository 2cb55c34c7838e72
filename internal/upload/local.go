package upload

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// LocalStore saves images as individual files in a managed directory.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the managed upload directory.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes the content under a new generated filename.
func (s *LocalStore) Save(_ context.Context, ext string, r io.Reader) (string, error) {
	name := NewFilename(ext)
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return name, nil
}

// Delete removes a stored file. A missing file is not an error.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// URL returns the path under which the server exposes stored files.
func (s *LocalStore) URL(name string) string {
	return "/uploads/" + name
}
