package search

import (
	"context"
	"sync"
)

// MemoryIndex keeps entries in process memory. Suitable for dev and tests.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryIndex constructs an empty MemoryIndex.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[string]Entry)}
}

func (m *MemoryIndex) Index(ctx context.Context, documentID string, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry.DocumentID = documentID
	m.mu.Lock()
	m.entries[documentID] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryIndex) Delete(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.entries, documentID)
	m.mu.Unlock()
	return nil
}

// Get returns the entry for documentID if present.
func (m *MemoryIndex) Get(documentID string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[documentID]
	return e, ok
}

// Len reports how many entries are stored.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryIndex) Ping(ctx context.Context) error {
	return ctx.Err()
}

var _ Index = (*MemoryIndex)(nil)
