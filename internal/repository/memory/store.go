// Package memory is an in-process repository implementation used for local
// development and tests. A single mutex guards all state, so every method is a
// linearizable operation and conditional updates behave like their SQL
// counterparts.
package memory

import (
	"context"
	"sync"

	"ministry-admin-backend/internal/clock"
	"ministry-admin-backend/internal/domain"
	"ministry-admin-backend/internal/repository"
)

type Store struct {
	mu       sync.Mutex
	clock    clock.Clock
	requests map[string]domain.RegistrationRequest
	accounts map[string]domain.AdminAccount
}

func NewStore(clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.System()
	}
	return &Store{
		clock:    clk,
		requests: make(map[string]domain.RegistrationRequest),
		accounts: make(map[string]domain.AdminAccount),
	}
}

func (s *Store) Requests() repository.RegistrationRequestRepository {
	return &requestRepository{store: s}
}

func (s *Store) Accounts() repository.AccountRepository {
	return &accountRepository{store: s}
}

func (s *Store) Ping(context.Context) error {
	return nil
}

// WithinTx holds the store lock for the duration of fn and restores the prior
// state if fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(requests repository.RegistrationRequestRepository, accounts repository.AccountRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	requests := make(map[string]domain.RegistrationRequest, len(s.requests))
	for k, v := range s.requests {
		requests[k] = v
	}
	accounts := make(map[string]domain.AdminAccount, len(s.accounts))
	for k, v := range s.accounts {
		accounts[k] = v
	}

	err := fn(&requestRepository{store: s, locked: true}, &accountRepository{store: s, locked: true})
	if err != nil {
		s.requests = requests
		s.accounts = accounts
	}
	return err
}

func (s *Store) lock(locked bool) func() {
	if locked {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}
