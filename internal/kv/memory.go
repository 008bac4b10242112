package kv

import (
	"context"
	"sync"
)

// Memory is an in-process Provider.
type Memory struct {
	// BeforeGet, when set, runs before every read. A non-nil error fails
	// the read.
	BeforeGet func(ctx context.Context, key string) error
	// BeforeSet, when set, runs before every write. A non-nil error fails
	// the write and leaves the stored value unchanged.
	BeforeSet func(ctx context.Context, key, value string) error

	mu     sync.RWMutex
	values map[string]string
	writes int
}

// NewMemory returns an empty Memory provider.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if m.BeforeGet != nil {
		if err := m.BeforeGet(ctx, key); err != nil {
			return "", false, err
		}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.BeforeSet != nil {
		if err := m.BeforeSet(ctx, key, value); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	m.writes++
	return nil
}

// Writes returns the number of successful writes.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
