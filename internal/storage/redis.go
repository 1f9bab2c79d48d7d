package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key that holds the story collection.
const DefaultRedisKey = "storyweaver:stories"

// RedisSlot stores the story collection under one Redis key.
type RedisSlot struct {
	client *redis.Client
	logger *slog.Logger
	key    string
}

// Ensure RedisSlot implements Slot interface
var _ Slot = (*RedisSlot)(nil)

// NewRedisSlot creates a slot. redisURL may be a redis:// URL or a bare host:port.
func NewRedisSlot(redisURL string, logger *slog.Logger) (*RedisSlot, error) {
	opts, err := redisOptions(redisURL)
	if err != nil {
		return nil, err
	}
	return NewRedisSlotWithClient(redis.NewClient(opts), logger), nil
}

// NewRedisSlotWithClient wraps an existing client.
func NewRedisSlotWithClient(client *redis.Client, logger *slog.Logger) *RedisSlot {
	return &RedisSlot{
		client: client,
		logger: logger,
		key:    DefaultRedisKey,
	}
}

// Client exposes the underlying client so pub/sub can share the connection pool.
func (r *RedisSlot) Client() *redis.Client {
	return r.client
}

func redisOptions(redisURL string) (*redis.Options, error) {
	if strings.Contains(redisURL, "://") {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: redisURL}, nil
}

// Health and lifecycle methods

func (r *RedisSlot) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisSlot) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisSlot) WaitForConnection(ctx context.Context, maxRetries int, retryDelay time.Duration) error {
	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func (r *RedisSlot) Read(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Story collection not found in redis", "key", r.key)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read stories: %w", err)
	}
	return data, nil
}

func (r *RedisSlot) Write(ctx context.Context, data []byte) error {
	// no expiration: the slot is the only copy of the stories
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write stories: %w", err)
	}
	return nil
}
