package store

import (
	"context"
	"sync"
)

// Compile-time check: *MemoryStore must satisfy TokenStore.
var _ TokenStore = (*MemoryStore)(nil)

// MemoryStore keeps the token for the lifetime of the process only.
type MemoryStore struct {
	mu     sync.Mutex
	token  string
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) LoadToken(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", ErrStoreClosed
	}
	if m.token == "" {
		return "", ErrTokenNotFound
	}
	return m.token, nil
}

func (m *MemoryStore) SaveToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	m.token = token
	return nil
}

func (m *MemoryStore) DeleteToken(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	m.token = ""
	return nil
}

func (m *MemoryStore) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}
