package tokenstore

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrymomot/tokenvault/pkg/token"
)

// MemoryStore keeps records in process memory.
// Records are lost on restart; intended for development and tests.
type MemoryStore struct {
	items map[Key]token.Encrypted
	mu    sync.RWMutex
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[Key]token.Encrypted)}
}

// Get returns a copy of the record at key.
func (m *MemoryStore) Get(_ context.Context, key Key) (*token.Encrypted, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	rec.Scopes = slices.Clone(rec.Scopes)
	return &rec, nil
}

// Put stores a copy of rec.
func (m *MemoryStore) Put(_ context.Context, key Key, rec *token.Encrypted) error {
	if rec == nil {
		return ErrMalformedRecord
	}

	cp := *rec
	cp.Scopes = slices.Clone(rec.Scopes)

	m.mu.Lock()
	m.items[key] = cp
	m.mu.Unlock()
	return nil
}

// Delete removes the record at key.
func (m *MemoryStore) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

var _ Store = (*MemoryStore)(nil)
