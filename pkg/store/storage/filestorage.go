package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStorage leverages the file system to write data to disk.
type FileStorage struct {
	baseDir string
}

// NewFileStorage returns a storage rooted at baseDir. An empty baseDir uses paths as given.
func NewFileStorage(baseDir string) *FileStorage {
	return &FileStorage{baseDir: baseDir}
}

func (fs *FileStorage) FullPath(path string) string {
	if fs.baseDir == "" {
		return path
	}
	return filepath.Join(fs.baseDir, path)
}

func (fs *FileStorage) Read(_ context.Context, path string) ([]byte, error) {
	b, err := os.ReadFile(fs.FullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, DoesNotExistError
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return b, nil
}

// Write stages data in a temp file next to the target and renames it into place.
func (fs *FileStorage) Write(_ context.Context, path string, data []byte) error {
	target, err := fs.prepare(path)
	if err != nil {
		return fmt.Errorf("failed to prepare path: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}

// prepare creates the parent directory if needed and returns the full path.
func (fs *FileStorage) prepare(path string) (string, error) {
	f := fs.FullPath(path)
	dir := filepath.Dir(f)
	if _, err := os.Stat(dir); err != nil && os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	return f, nil
}
