package kv

import (
	"context"
	"sync"
)

// MemoryStore keeps documents in process memory. Used by tests and by
// STORE_DRIVER=memory for throwaway runs.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string][]byte{}}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), doc...), true, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, doc []byte) error {
	m.mu.Lock()
	m.docs[key] = append([]byte(nil), doc...)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.docs, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) ClearAll(_ context.Context) error {
	m.mu.Lock()
	m.docs = map[string][]byte{}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// Keys returns the stored keys; handy in tests.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.docs))
	for k := range m.docs {
		keys = append(keys, k)
	}
	return keys
}
