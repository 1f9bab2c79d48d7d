package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// FileSlot stores the story collection in one JSON file.
type FileSlot struct {
	path   string
	logger *slog.Logger
}

// Ensure FileSlot implements Slot interface
var _ Slot = (*FileSlot)(nil)

func NewFileSlot(path string, logger *slog.Logger) *FileSlot {
	if path == "" {
		path = "./data/stories.json"
	}
	return &FileSlot{path: path, logger: logger}
}

func (f *FileSlot) Path() string { return f.path }

// Ping checks that the directory holding the file exists or can be created.
func (f *FileSlot) Ping(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("data directory not writable: %w", err)
	}
	return nil
}

func (f *FileSlot) Close() error { return nil }

func (f *FileSlot) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			f.logger.Debug("Story file not found", "path", f.path)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read story file: %w", err)
	}
	return data, nil
}

// Write replaces the file atomically: a reader never sees a half-written snapshot.
func (f *FileSlot) Write(ctx context.Context, data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".stories-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace story file: %w", err)
	}
	return nil
}
