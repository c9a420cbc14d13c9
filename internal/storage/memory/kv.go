package memory

import (
	"context"
	"sync"

	"github.com/rryowa/candidate_session/internal/storage"
)

type KeyValueStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewKeyValueStore() *KeyValueStore {
	return &KeyValueStore{
		values: make(map[string]string),
	}
}

func (m *KeyValueStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (m *KeyValueStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

func (m *KeyValueStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

// Len is used by tests to assert nothing leaked into the store.
func (m *KeyValueStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
