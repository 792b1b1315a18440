package storage

import (
	"context"
	"sync"
)

// MemoryMedium keeps values in process memory.
type MemoryMedium struct {
	opts   options
	values map[string][]byte
	mu     sync.RWMutex
}

// NewMemoryMedium creates an empty in-memory medium.
func NewMemoryMedium(opts ...Option) *MemoryMedium {
	return &MemoryMedium{
		opts:   newOptions(opts),
		values: make(map[string][]byte),
	}
}

// Get returns the value stored under key.
func (m *MemoryMedium) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put stores value under key.
func (m *MemoryMedium) Put(_ context.Context, key string, value []byte) error {
	if err := m.opts.checkQuota(key, value); err != nil {
		return err
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	m.values[key] = stored
	m.mu.Unlock()
	return nil
}

// Delete removes key.
func (m *MemoryMedium) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}
