package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is returned when a requested path escapes the uploads root.
var ErrUnsafePath = fmt.Errorf("unsafe file path")

// LocalStorage persists uploaded files on disk under a base directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// SaveStream copies from reader into the target file under the base dir.
func (s *LocalStorage) SaveStream(relPath string, r io.Reader) (int64, error) {
	path, err := s.resolve(relPath)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("prepare upload directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	written, err := io.Copy(file, r)
	if err != nil {
		return 0, fmt.Errorf("write upload stream: %w", err)
	}
	return written, nil
}

// Open returns a read-only handle for the stored file.
func (s *LocalStorage) Open(relPath string) (*os.File, os.FileInfo, error) {
	path, err := s.resolve(relPath)
	if err != nil {
		return nil, nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}
	return file, info, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(relPath string) error {
	path, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

// Path exposes the underlying absolute path (useful for debugging).
func (s *LocalStorage) Path(relPath string) (string, error) {
	return s.resolve(relPath)
}

// SafeRelPath reports whether the relative path is free of traversal sequences.
func SafeRelPath(relPath string) bool {
	if strings.Contains(relPath, "..") || strings.Contains(relPath, `\`) {
		return false
	}
	return !filepath.IsAbs(relPath)
}

func (s *LocalStorage) resolve(relPath string) (string, error) {
	if !SafeRelPath(relPath) {
		return "", ErrUnsafePath
	}
	joined := filepath.Join(s.baseDir, filepath.Clean(relPath))
	base := filepath.Clean(s.baseDir) + string(os.PathSeparator)
	if !strings.HasPrefix(joined, base) {
		return "", ErrUnsafePath
	}
	return joined, nil
}

// ContentTypeByExt maps an image file extension to its MIME type.
func ContentTypeByExt(name string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
