package storage

import (
	"testing"

	"github.com/jwebster45206/storyweaver/internal/config"
)

func TestOpen(t *testing.T) {
	slot, err := Open(&config.Config{StorageBackend: config.BackendFile, DataFile: "x/stories.json"}, testLogger())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if fs, ok := slot.(*FileSlot); !ok || fs.Path() != "x/stories.json" {
		t.Errorf("Expected file slot at x/stories.json, got %T", slot)
	}

	slot, err = Open(&config.Config{StorageBackend: config.BackendRedis, RedisURL: "localhost:6379"}, testLogger())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := slot.(*RedisSlot); !ok {
		t.Errorf("Expected redis slot, got %T", slot)
	}
	_ = slot.Close()

	if _, err := Open(&config.Config{StorageBackend: config.BackendRedis, RedisURL: "redis://:bad url"}, testLogger()); err == nil {
		t.Error("Expected an invalid redis URL to fail")
	}
	if _, err := Open(&config.Config{StorageBackend: "s3"}, testLogger()); err == nil {
		t.Error("Expected unknown backend to fail")
	}
}
