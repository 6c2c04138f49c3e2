package account

import (
	"context"
	"sync"
)

// MemoryStore keeps account snapshots in a map. Used by tests and dev mode.
type MemoryStore struct {
	mu      sync.RWMutex
	storage map[string]Account
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{storage: make(map[string]Account)}
}

// Put seeds an account, replacing any existing snapshot with the same ID.
func (s *MemoryStore) Put(a Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage[a.ID] = a.Clone()
}

// GetByID fetches an account snapshot by identifier.
func (s *MemoryStore) GetByID(_ context.Context, id string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.storage[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return a.Clone(), nil
}

// GetByCardID fetches the account owning the given card.
func (s *MemoryStore) GetByCardID(_ context.Context, cardID string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.storage {
		if a.Card.ID == cardID {
			return a.Clone(), nil
		}
	}
	return Account{}, ErrNotFound
}

// Save writes every snapshot back. All-or-nothing: missing accounts are
// detected before any write.
func (s *MemoryStore) Save(_ context.Context, accounts ...Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range accounts {
		if _, ok := s.storage[a.ID]; !ok {
			return ErrNotFound
		}
	}
	for _, a := range accounts {
		s.storage[a.ID] = a.Clone()
	}
	return nil
}
