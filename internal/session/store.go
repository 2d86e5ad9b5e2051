package session

import (
	"context"
	"sync"
)

// Well-known keys the session is persisted under.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Store is durable key/value storage for the session. Get reports ok=false
// for missing keys; Delete ignores them.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, keys ...string) error
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

// Tokens exposes the persisted bearer token to the API client.
type Tokens struct {
	store Store
}

func NewTokens(store Store) *Tokens {
	return &Tokens{store: store}
}

func (t *Tokens) Token(ctx context.Context) string {
	v, ok, err := t.store.Get(ctx, KeyToken)
	if err != nil || !ok {
		return ""
	}
	return string(v)
}
