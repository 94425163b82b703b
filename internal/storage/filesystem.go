package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const maxCreateAttempts = 5

// FileStore writes attachments below a public directory, e.g. ./public/img.
type FileStore struct {
	root string
	now  func() time.Time
}

// NewFileStore creates the image directory under root if needed.
func NewFileStore(root string) (*FileStore, error) {
	dir := filepath.Join(root, ImagePrefix)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &FileStore{root: root, now: time.Now}, nil
}

// Dir returns the directory holding the image files.
func (s *FileStore) Dir() string {
	return filepath.Join(s.root, ImagePrefix)
}

// Path maps a reference to its location on disk.
func (s *FileStore) Path(ref string) string {
	return filepath.Join(s.root, filepath.FromSlash(ref))
}

// Write implements Store.
func (s *FileStore) Write(ctx context.Context, payload string) (string, error) {
	data, err := Decode(payload)
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		ref := newReference(s.now())
		f, err := os.OpenFile(s.Path(ref), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create attachment: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", fmt.Errorf("failed to write attachment: %w", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(f.Name())
			return "", fmt.Errorf("failed to write attachment: %w", err)
		}
		return ref, nil
	}
	return "", fmt.Errorf("failed to allocate attachment name after %d attempts", maxCreateAttempts)
}

// Remove implements Store.
func (s *FileStore) Remove(_ context.Context, ref string) error {
	if err := validReference(ref); err != nil {
		return err
	}
	if err := os.Remove(s.Path(ref)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove attachment %s: %w", ref, err)
	}
	return nil
}
