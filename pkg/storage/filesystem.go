package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalImageStore persists uploaded images on disk under a base directory
// served at publicBaseURL.
type LocalImageStore struct {
	baseDir       string
	publicBaseURL string
}

// NewLocalImageStore ensures the base directory exists and returns a handle.
func NewLocalImageStore(baseDir, publicBaseURL string) (*LocalImageStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalImageStore{baseDir: baseDir, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Upload copies r into publicID under the base directory.
func (s *LocalImageStore) Upload(_ context.Context, publicID string, r io.Reader, _ int64, _ string) (Image, error) {
	path, err := s.resolve(publicID)
	if err != nil {
		return Image{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Image{}, fmt.Errorf("prepare upload directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return Image{}, fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return Image{}, fmt.Errorf("write image file: %w", err)
	}
	if err := file.Close(); err != nil {
		return Image{}, fmt.Errorf("close image file: %w", err)
	}
	return Image{URL: s.publicBaseURL + "/" + filepath.ToSlash(publicID), PublicID: publicID}, nil
}

// Delete removes a stored image. Missing files are not an error.
func (s *LocalImageStore) Delete(_ context.Context, publicID string) error {
	path, err := s.resolve(publicID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete image file: %w", err)
	}
	return nil
}

// Dir exposes the directory served as static content.
func (s *LocalImageStore) Dir() string {
	return s.baseDir
}

func (s *LocalImageStore) resolve(publicID string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(publicID))
	if publicID == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid image id %q", publicID)
	}
	return filepath.Join(s.baseDir, clean), nil
}
