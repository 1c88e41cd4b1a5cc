package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("registration request not found")
	ErrAlreadyProcessed  = errors.New("registration request already processed")
	ErrInvalidToken      = errors.New("invalid or already used token")
	ErrTokenExpired      = errors.New("token has expired")
	ErrAlreadyRegistered = errors.New("an account with this email already exists")
	ErrDuplicatePending  = errors.New("a pending request for this email already exists")
	ErrWeakPassword      = errors.New("password does not meet the minimum length")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrBootstrapDone     = errors.New("an administrator account already exists")
)

// ValidationError carries field-level detail and matches ErrValidation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
