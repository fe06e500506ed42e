// ABOUTME: In-process KV used by the "memory" backend and by tests.
// ABOUTME: Same key layout as the charm backend, nothing persisted.
package storage

import (
	"errors"
	"sort"
	"sync"
)

var errKeyNotFound = errors.New("key not found")

type memoryKV struct {
	mu       sync.RWMutex
	data     map[string][]byte
	readOnly bool
	syncs    int
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string][]byte)}
}

// OpenMemory returns an empty Store that lives for the life of the process.
func OpenMemory() *CharmStore {
	return newCharmStore(newMemoryKV())
}

func (m *memoryKV) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, errKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *memoryKV) Set(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (m *memoryKV) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
	return nil
}

func (m *memoryKV) Keys() ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = []byte(k)
	}
	return out, nil
}

func (m *memoryKV) Sync() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncs++
	return nil
}

func (m *memoryKV) IsReadOnly() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readOnly
}

func (m *memoryKV) Close() error {
	return nil
}
