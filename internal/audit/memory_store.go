package audit

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory append-only audit log for demo/development.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewMemoryStore creates a new in-memory audit store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Append(_ context.Context, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *e
	if e.Signals != nil {
		cp.Signals = append([]string(nil), e.Signals...)
	}
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make([]*Entry, len(m.entries))
	for i, e := range m.entries {
		cp := *e
		snapshot[i] = &cp
	}
	return snapshot, nil
}

var _ Store = (*MemoryStore)(nil)
