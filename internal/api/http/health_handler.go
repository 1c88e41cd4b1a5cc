package http

import (
	"context"
	"net/http"
	"time"

	"ministry-admin-backend/internal/logger"
	"ministry-admin-backend/internal/repository"
)

type HealthHandler struct {
	pinger repository.Pinger
}

func NewHealthHandler(pinger repository.Pinger) *HealthHandler {
	return &HealthHandler{pinger: pinger}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		logger.Warn("Health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
