package cases

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory case store for demo/development.
type MemoryStore struct {
	mu    sync.RWMutex
	cases map[string]*Case // by email
}

// NewMemoryStore creates a new in-memory case store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cases: make(map[string]*Case)}
}

func (m *MemoryStore) Upsert(_ context.Context, c *Case) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *c
	m.cases[c.Email] = &cp
	return nil
}

func (m *MemoryStore) Get(_ context.Context, email string) (*Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.cases[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryStore) List(_ context.Context) (map[string]*Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make(map[string]*Case, len(m.cases))
	for email, c := range m.cases {
		cp := *c
		snapshot[email] = &cp
	}
	return snapshot, nil
}

func (m *MemoryStore) SetReviewStatus(_ context.Context, email, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.cases[email]
	if !ok {
		return ErrNotFound
	}
	c.ReviewStatus = status
	return nil
}

var _ Store = (*MemoryStore)(nil)
