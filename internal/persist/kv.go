// Package persist stores the task list as one serialized value under a
// fixed key in a key-value slot (a file, a redis key, or process memory).
package persist

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by KV.Get when the key holds no value.
var ErrNotFound = errors.New("key not found")

// KV is a minimal key-value slot.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Memory is a process-local KV.
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte
}

var _ KV = (*Memory)(nil)

// NewMemory returns an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

// Get returns a copy of the stored value.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = append([]byte(nil), value...)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
