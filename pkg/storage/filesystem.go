package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrTooLarge is returned when a stream exceeds the caller's size limit.
var ErrTooLarge = errors.New("storage: file exceeds size limit")

// ErrInvalidPath is returned for names escaping the base directory.
var ErrInvalidPath = errors.New("storage: invalid path")

// LocalStorage persists files on disk under a base directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./media"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// SaveStream copies at most limit bytes from r into name. A partially
// written file is removed when the limit is exceeded or the copy fails.
func (s *LocalStorage) SaveStream(name string, r io.Reader, limit int64) (int64, error) {
	path, err := s.resolve(name)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("prepare media directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create media file: %w", err)
	}

	reader := r
	if limit > 0 {
		reader = io.LimitReader(r, limit+1)
	}
	written, copyErr := io.Copy(file, reader)
	closeErr := file.Close()
	switch {
	case copyErr != nil:
		_ = os.Remove(path)
		return 0, fmt.Errorf("write media stream: %w", copyErr)
	case limit > 0 && written > limit:
		_ = os.Remove(path)
		return 0, ErrTooLarge
	case closeErr != nil:
		_ = os.Remove(path)
		return 0, fmt.Errorf("close media file: %w", closeErr)
	}
	return written, nil
}

// Open returns a read-only handle for the stored file.
func (s *LocalStorage) Open(name string) (*os.File, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open media file: %w", err)
	}
	return file, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete media file: %w", err)
	}
	return nil
}

func (s *LocalStorage) resolve(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if name == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.baseDir, clean), nil
}
