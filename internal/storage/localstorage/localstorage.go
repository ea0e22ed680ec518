// Package localstorage writes processed images to the local filesystem
package localstorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const dirPerm = 0o755

type FileStorage struct{}

func New() *FileStorage {
	return &FileStorage{}
}

// MakeDir creates dir with parents; an existing directory is not an error.
func (s *FileStorage) MakeDir(_ context.Context, dir string) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}

// Put writes r to the file at key. The data goes to a temp file in the same
// directory first and is renamed over key, so a failed write never leaves a
// truncated image behind.
func (s *FileStorage) Put(ctx context.Context, key string, _ int64, _ string, r io.Reader) error {
	if r == nil {
		return errors.New("nil reader passed to storage.Put")
	}

	dir := filepath.Dir(key)
	if err := s.MakeDir(ctx, dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(key)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %q: %w", key, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod %q: %w", key, err)
	}
	if err := os.Rename(tmpName, key); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename to %q: %w", key, err)
	}

	return nil
}
