package account

import (
	"context"
	"sync"
	"time"
)

// memoryStore is an in-memory Store for tests and local development.
// Mutations are serialized by the mutex, which satisfies the same contract
// the mongo implementation provides through version checks.
type memoryStore struct {
	mu       sync.Mutex
	accounts map[string]Account
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{accounts: make(map[string]Account)}
}

func (s *memoryStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &acc, nil
}

func (s *memoryStore) Create(ctx context.Context, acc *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[acc.Email]; ok {
		return ErrAlreadyExists
	}
	s.accounts[acc.Email] = *acc
	return nil
}

func (s *memoryStore) Update(ctx context.Context, email string, mutate func(*Account) error) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[email]
	if !ok {
		return nil, ErrNotFound
	}

	// mutate works on a copy so a failed precondition leaves stored state
	// untouched.
	if err := mutate(&acc); err != nil {
		return nil, err
	}
	acc.Version++
	acc.UpdatedAt = time.Now().UTC()
	s.accounts[email] = acc

	result := acc
	return &result, nil
}
