package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes uploads to a directory on disk.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

func (s *LocalStorage) Save(_ context.Context, filename string, content io.Reader, _ string) error {
	path, err := s.resolve(filename)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(path)
		return fmt.Errorf("write upload file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Open(_ context.Context, filename string) (io.ReadCloser, error) {
	path, err := s.resolve(filename)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (s *LocalStorage) Delete(_ context.Context, filename string) error {
	path, err := s.resolve(filename)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

func (s *LocalStorage) resolve(filename string) (string, error) {
	if filename == "" || strings.Contains(filename, "/") || strings.Contains(filename, "..") {
		return "", fmt.Errorf("invalid filename %q", filename)
	}
	return filepath.Join(s.dir, filename), nil
}
