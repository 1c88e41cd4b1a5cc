package postgres

import (
	"errors"

	"github.com/lib/pq"

	"ministry-admin-backend/internal/repository"
)

const uniqueViolation = pq.ErrorCode("23505")

const (
	constraintPendingEmail = "registration_requests_pending_email_key"
	constraintAccountEmail = "admin_accounts_email_key"
)

// mapError translates driver errors into repository errors.
func mapError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}
	switch pqErr.Constraint {
	case constraintPendingEmail:
		return repository.ErrDuplicatePending
	case constraintAccountEmail:
		return repository.ErrDuplicateEmail
	}
	return err
}
