// Package store: бэкенды для сохранения истории одним блобом на ключ.
package store

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound: ключа нет в хранилище.
var ErrNotFound = errors.New("store: key not found")

// MemoryBlob keeps blobs in process memory. Used by tests and HISTORY_BACKEND=memory.
type MemoryBlob struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryBlob() *MemoryBlob {
	return &MemoryBlob{data: map[string][]byte{}}
}

func (m *MemoryBlob) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *MemoryBlob) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryBlob) Ping(context.Context) error { return nil }
