package repository

import (
	"context"
	"errors"
	"time"

	"ministry-admin-backend/internal/domain"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a conditional update finds the row no longer
	// in the expected state.
	ErrConflict         = errors.New("record state changed")
	ErrDuplicateEmail   = errors.New("email already in use")
	ErrDuplicatePending = errors.New("pending request already exists for email")
)

type RegistrationRequestRepository interface {
	Create(ctx context.Context, req *domain.RegistrationRequest) error
	GetByID(ctx context.Context, id string) (*domain.RegistrationRequest, error)
	GetByToken(ctx context.Context, token string) (*domain.RegistrationRequest, error)
	FindByEmailAndStatus(ctx context.Context, email string, status domain.RequestStatus) (*domain.RegistrationRequest, error)
	// ListByStatus returns requests newest first. An empty status lists everything.
	ListByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.RegistrationRequest, error)

	// UpdateIfStatus writes the request's status and approval/rejection fields
	// only if the stored status still equals expected.
	UpdateIfStatus(ctx context.Context, req *domain.RegistrationRequest, expected domain.RequestStatus) error
	// ConsumeToken clears the approval token and expiry only if the stored token
	// still equals token, and records the completion.
	ConsumeToken(ctx context.Context, id, token, accountID string, completedAt time.Time) error

	Delete(ctx context.Context, id string) error
	DeleteRejectedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type AccountRepository interface {
	Create(ctx context.Context, account *domain.AdminAccount) error
	GetByID(ctx context.Context, id string) (*domain.AdminAccount, error)
	GetByEmail(ctx context.Context, email string) (*domain.AdminAccount, error)
	Count(ctx context.Context) (int64, error)
}

// Transactor runs fn against repositories bound to a single atomic unit of work.
// If fn returns an error nothing it wrote is kept.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(requests RegistrationRequestRepository, accounts AccountRepository) error) error
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
