package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/storyweaver/internal/config"
)

// Slot is the single named location that holds the serialized story
// collection. Read returns nil, nil when nothing has been written yet.
type Slot interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// Open returns the slot selected by STORAGE_BACKEND.
func Open(cfg *config.Config, logger *slog.Logger) (Slot, error) {
	switch cfg.StorageBackend {
	case config.BackendRedis:
		return NewRedisSlot(cfg.RedisURL, logger)
	case config.BackendFile:
		return NewFileSlot(cfg.DataFile, logger), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}
