package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Entry is the fixed-window state for one identifier.
type Entry struct {
	Count       int
	WindowStart time.Time
}

// Store persists limiter entries.
type Store interface {
	Get(ctx context.Context, id string) (*Entry, error)
	Put(ctx context.Context, id string, entry Entry) error
	Delete(ctx context.Context, id string) error
	Entries(ctx context.Context) (map[string]Entry, error)
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (m *MemoryStore) Put(ctx context.Context, id string, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string]Entry)
	}
	m.entries[id] = entry
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Entries returns a snapshot copy of every entry.
func (m *MemoryStore) Entries(ctx context.Context) (map[string]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Entry, len(m.entries))
	for id, entry := range m.entries {
		out[id] = entry
	}
	return out, nil
}

// Len reports the number of tracked identifiers.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
