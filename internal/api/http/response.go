package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"ministry-admin-backend/internal/logger"
	"ministry-admin-backend/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeServiceError maps workflow error kinds to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, service.ErrValidation):
		status, code = http.StatusBadRequest, "validation_error"
	case errors.Is(err, service.ErrDuplicatePending):
		status, code = http.StatusBadRequest, "duplicate_pending"
	case errors.Is(err, service.ErrAlreadyRegistered):
		status, code = http.StatusBadRequest, "already_registered"
	case errors.Is(err, service.ErrWeakPassword):
		status, code = http.StatusBadRequest, "weak_password"
	case errors.Is(err, service.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrInvalidToken):
		status, code = http.StatusNotFound, "invalid_token"
	case errors.Is(err, service.ErrTokenExpired):
		status, code = http.StatusNotFound, "token_expired"
	case errors.Is(err, service.ErrAlreadyProcessed):
		status, code = http.StatusConflict, "already_processed"
	case errors.Is(err, service.ErrBootstrapDone):
		status, code = http.StatusConflict, "bootstrap_done"
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, "unauthorized"
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
		msg = "internal server error"
	}
	writeError(w, status, code, msg)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}
