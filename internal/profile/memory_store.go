package profile

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory profile store for demo/development.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*Profile // by email
}

// NewMemoryStore creates a new in-memory profile store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]*Profile)}
}

func (m *MemoryStore) Put(_ context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *p
	if p.Extra != nil {
		cp.Extra = make(map[string]string, len(p.Extra))
		for k, v := range p.Extra {
			cp.Extra[k] = v
		}
	}
	m.profiles[p.Email] = &cp
	return nil
}

func (m *MemoryStore) Get(_ context.Context, email string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

var _ Store = (*MemoryStore)(nil)
