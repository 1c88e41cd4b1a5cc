package memory

import (
	"context"

	"ministry-admin-backend/internal/domain"
	"ministry-admin-backend/internal/repository"
)

type accountRepository struct {
	store  *Store
	locked bool
}

func (r *accountRepository) Create(_ context.Context, a *domain.AdminAccount) error {
	defer r.store.lock(r.locked)()

	email := domain.NormalizeEmail(a.Email)
	for _, existing := range r.store.accounts {
		if domain.NormalizeEmail(existing.Email) == email {
			return repository.ErrDuplicateEmail
		}
	}
	a.CreatedAt = r.store.clock.Now()
	r.store.accounts[a.ID] = *a
	return nil
}

func (r *accountRepository) GetByID(_ context.Context, id string) (*domain.AdminAccount, error) {
	defer r.store.lock(r.locked)()

	a, ok := r.store.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *accountRepository) GetByEmail(_ context.Context, email string) (*domain.AdminAccount, error) {
	defer r.store.lock(r.locked)()

	email = domain.NormalizeEmail(email)
	for _, a := range r.store.accounts {
		if domain.NormalizeEmail(a.Email) == email {
			a := a
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *accountRepository) Count(context.Context) (int64, error) {
	defer r.store.lock(r.locked)()

	return int64(len(r.store.accounts)), nil
}
