package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// MemoryStore keeps objects in process memory. Used for tests and local runs
// without an object store.
type MemoryStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
}

func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "memory://media"
	}
	return &MemoryStore{baseURL: baseURL, objects: make(map[string][]byte)}
}

func (m *MemoryStore) Upload(ctx context.Context, obj Object) (string, error) {
	if obj.Body == nil {
		return "", ErrEmptyObject
	}
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", fmt.Errorf("read object: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyObject
	}
	key := NewKey(obj.Folder, obj.Filename, time.Now())
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return PublicURL(m.baseURL, key), nil
}

func (m *MemoryStore) Delete(ctx context.Context, url string) error {
	key, ok := KeyFromURL(m.baseURL, url)
	if !ok {
		return nil
	}
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Has reports whether an object exists for url.
func (m *MemoryStore) Has(url string) bool {
	key, ok := KeyFromURL(m.baseURL, url)
	if !ok {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.objects[key]
	return exists
}

// Get returns a copy of the stored bytes for url.
func (m *MemoryStore) Get(url string) ([]byte, bool) {
	key, ok := KeyFromURL(m.baseURL, url)
	if !ok {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, exists := m.objects[key]
	return bytes.Clone(data), exists
}

// Len is the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
