package storage

import (
	"context"
	"sync"
)

// MemoryBackend keeps namespaces in process memory.
type MemoryBackend struct {
	mu     sync.RWMutex
	spaces map[string]map[string]string
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{spaces: make(map[string]map[string]string)}
}

func (m *MemoryBackend) Get(_ context.Context, namespace, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.spaces[namespace][key]
	return v, ok, nil
}

func (m *MemoryBackend) Set(_ context.Context, namespace string, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	space, ok := m.spaces[namespace]
	if !ok {
		space = make(map[string]string, len(values))
		m.spaces[namespace] = space
	}
	for k, v := range values {
		space[k] = v
	}
	return nil
}

func (m *MemoryBackend) Remove(_ context.Context, namespace string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	space := m.spaces[namespace]
	for _, k := range keys {
		delete(space, k)
	}
	if len(space) == 0 {
		delete(m.spaces, namespace)
	}
	return nil
}

// Namespaces lists namespaces that currently hold at least one key.
func (m *MemoryBackend) Namespaces() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.spaces))
	for ns := range m.spaces {
		out = append(out, ns)
	}
	return out
}

func (m *MemoryBackend) Close(context.Context) error { return nil }
