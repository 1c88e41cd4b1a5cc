package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"ministry-admin-backend/internal/service"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{&service.ValidationError{Msg: "name is required"}, http.StatusBadRequest, "validation_error"},
		{service.ErrDuplicatePending, http.StatusBadRequest, "duplicate_pending"},
		{service.ErrAlreadyRegistered, http.StatusBadRequest, "already_registered"},
		{service.ErrWeakPassword, http.StatusBadRequest, "weak_password"},
		{service.ErrNotFound, http.StatusNotFound, "not_found"},
		{service.ErrInvalidToken, http.StatusNotFound, "invalid_token"},
		{service.ErrTokenExpired, http.StatusNotFound, "token_expired"},
		{service.ErrAlreadyProcessed, http.StatusConflict, "already_processed"},
		{service.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{fmt.Errorf("wrapped: %w", service.ErrAlreadyProcessed), http.StatusConflict, "already_processed"},
		{errors.New("database exploded"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)
			body := decode[errorResponse](t, rec)
			assert.Equal(t, tc.code, body.Code)
			assert.NotContains(t, body.Error, "database exploded")
		})
	}
}
