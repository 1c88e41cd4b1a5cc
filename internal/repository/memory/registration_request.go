package memory

import (
	"context"
	"sort"
	"time"

	"ministry-admin-backend/internal/domain"
	"ministry-admin-backend/internal/repository"
)

type requestRepository struct {
	store  *Store
	locked bool
}

func (r *requestRepository) Create(_ context.Context, req *domain.RegistrationRequest) error {
	defer r.store.lock(r.locked)()

	if req.Status == domain.RequestStatusPending {
		for _, existing := range r.store.requests {
			if existing.Email == req.Email && existing.Status == domain.RequestStatusPending {
				return repository.ErrDuplicatePending
			}
		}
	}
	now := r.store.clock.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	r.store.requests[req.ID] = *req
	return nil
}

func (r *requestRepository) GetByID(_ context.Context, id string) (*domain.RegistrationRequest, error) {
	defer r.store.lock(r.locked)()

	req, ok := r.store.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &req, nil
}

func (r *requestRepository) GetByToken(_ context.Context, token string) (*domain.RegistrationRequest, error) {
	defer r.store.lock(r.locked)()

	for _, req := range r.store.requests {
		if req.ApprovalToken != nil && *req.ApprovalToken == token {
			return &req, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *requestRepository) FindByEmailAndStatus(_ context.Context, email string, status domain.RequestStatus) (*domain.RegistrationRequest, error) {
	defer r.store.lock(r.locked)()

	var found *domain.RegistrationRequest
	for _, req := range r.store.requests {
		if req.Email != email || req.Status != status {
			continue
		}
		if found == nil || req.CreatedAt.After(found.CreatedAt) {
			req := req
			found = &req
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *requestRepository) ListByStatus(_ context.Context, status domain.RequestStatus) ([]domain.RegistrationRequest, error) {
	defer r.store.lock(r.locked)()

	reqs := []domain.RegistrationRequest{}
	for _, req := range r.store.requests {
		if status == "" || req.Status == status {
			reqs = append(reqs, req)
		}
	}
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].CreatedAt.Equal(reqs[j].CreatedAt) {
			return reqs[i].ID > reqs[j].ID
		}
		return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
	})
	return reqs, nil
}

func (r *requestRepository) UpdateIfStatus(_ context.Context, req *domain.RegistrationRequest, expected domain.RequestStatus) error {
	defer r.store.lock(r.locked)()

	stored, ok := r.store.requests[req.ID]
	if !ok || stored.Status != expected {
		return repository.ErrConflict
	}
	stored.Status = req.Status
	stored.ApprovedBy = req.ApprovedBy
	stored.ApprovalToken = req.ApprovalToken
	stored.ApprovalExpires = req.ApprovalExpires
	stored.RejectionReason = req.RejectionReason
	stored.UpdatedAt = r.store.clock.Now()
	r.store.requests[req.ID] = stored

	req.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *requestRepository) ConsumeToken(_ context.Context, id, token, accountID string, completedAt time.Time) error {
	defer r.store.lock(r.locked)()

	stored, ok := r.store.requests[id]
	if !ok || stored.Status != domain.RequestStatusApproved || stored.ApprovalToken == nil || *stored.ApprovalToken != token {
		return repository.ErrConflict
	}
	stored.ApprovalToken = nil
	stored.ApprovalExpires = nil
	stored.CompletedAt = &completedAt
	stored.AccountID = &accountID
	stored.UpdatedAt = r.store.clock.Now()
	r.store.requests[id] = stored
	return nil
}

func (r *requestRepository) Delete(_ context.Context, id string) error {
	defer r.store.lock(r.locked)()

	delete(r.store.requests, id)
	return nil
}

func (r *requestRepository) DeleteRejectedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	defer r.store.lock(r.locked)()

	var n int64
	for id, req := range r.store.requests {
		if req.Status == domain.RequestStatusRejected && req.UpdatedAt.Before(cutoff) {
			delete(r.store.requests, id)
			n++
		}
	}
	return n, nil
}
