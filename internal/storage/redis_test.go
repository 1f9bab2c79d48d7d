package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func setupRedisSlot(t *testing.T) (*RedisSlot, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	slot, err := NewRedisSlot(mr.Addr(), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = slot.Close() })
	return slot, mr
}

func TestRedisSlot_ReadEmpty(t *testing.T) {
	slot, _ := setupRedisSlot(t)

	data, err := slot.Read(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestRedisSlot_WriteRead(t *testing.T) {
	slot, mr := setupRedisSlot(t)
	ctx := context.Background()

	require.NoError(t, slot.Write(ctx, []byte(`{"version":1,"stories":[]}`)))

	data, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"version":1,"stories":[]}`, string(data))

	stored, err := mr.Get(DefaultRedisKey)
	require.NoError(t, err)
	assert.Equal(t, string(data), stored)
	assert.Zero(t, mr.TTL(DefaultRedisKey), "the collection never expires")
}

func TestRedisSlot_Ping(t *testing.T) {
	slot, mr := setupRedisSlot(t)
	ctx := context.Background()

	assert.NoError(t, slot.Ping(ctx))
	assert.NoError(t, slot.WaitForConnection(ctx, 3, time.Millisecond))

	mr.Close()
	assert.Error(t, slot.Ping(ctx))
	assert.Error(t, slot.WaitForConnection(ctx, 2, time.Millisecond))
}

func TestRedisSlot_ReadError(t *testing.T) {
	slot, mr := setupRedisSlot(t)
	mr.SetError("READONLY")

	_, err := slot.Read(context.Background())
	assert.Error(t, err)
}

func TestNewRedisSlot_URL(t *testing.T) {
	mr := miniredis.RunT(t)
	slot, err := NewRedisSlot("redis://"+mr.Addr()+"/0", testLogger())
	require.NoError(t, err)
	defer slot.Close()
	assert.NoError(t, slot.Ping(context.Background()))

	_, err = NewRedisSlot("redis://bad host:port:x", testLogger())
	assert.Error(t, err)
}
