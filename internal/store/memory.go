package store

import (
	"context"
	"sync"
)

// MemoryStore keeps accounts in memory. Useful for tests and demos;
// everything is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts Accounts
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: Accounts{}}
}

func (s *MemoryStore) Load(ctx context.Context) (Accounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, accounts Accounts) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = accounts.Clone()
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
