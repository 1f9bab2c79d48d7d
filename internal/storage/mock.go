package storage

import (
	"context"
	"sync"
)

// MockSlot is an in-memory Slot for tests.
type MockSlot struct {
	mu     sync.RWMutex
	data   []byte
	writes int

	ReadFunc  func(ctx context.Context) ([]byte, error)
	WriteFunc func(ctx context.Context, data []byte) error
	PingFunc  func(ctx context.Context) error
}

// Ensure MockSlot implements Slot interface
var _ Slot = (*MockSlot)(nil)

// NewMockSlot creates a slot holding data, which may be nil.
func NewMockSlot(data []byte) *MockSlot {
	return &MockSlot{data: data}
}

func (m *MockSlot) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func (m *MockSlot) Close() error { return nil }

func (m *MockSlot) Read(ctx context.Context) ([]byte, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data, nil
}

func (m *MockSlot) Write(ctx context.Context, data []byte) error {
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.writes++
	return nil
}

// Data returns the last written blob.
func (m *MockSlot) Data() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data
}

// Writes returns the number of successful writes.
func (m *MockSlot) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
