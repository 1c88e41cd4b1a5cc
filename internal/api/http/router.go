package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"ministry-admin-backend/internal/config"
	"ministry-admin-backend/internal/metrics"
	"ministry-admin-backend/internal/repository"
	"ministry-admin-backend/internal/security"
	"ministry-admin-backend/internal/service"
)

type RouterDeps struct {
	Workflow       service.InvitationWorkflow
	Auth           service.AuthService
	Tokens         security.TokenManager
	Health         repository.Pinger
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	// PublicBaseURL overrides the Host header when building completion links.
	PublicBaseURL  string
}

// NewRouter builds the HTTP API. Route names double as security-table keys
// and metric labels.
func NewRouter(deps RouterDeps) http.Handler {
	registration := NewRegistrationHandler(deps.Workflow, deps.Auth)
	auth := NewAuthHandler(deps.Auth)
	health := NewHealthHandler(deps.Health)

	router := mux.NewRouter()
	router.Use(instrumentMiddleware(deps.Metrics))
	router.Use(NewAuthMiddleware(deps.Tokens).Handler)
	router.Use(baseURLMiddleware(deps.PublicBaseURL))

	router.HandleFunc("/registration-requests", registration.Submit).Methods(http.MethodPost).Name(config.RouteSubmitRequest)
	router.HandleFunc("/registration-requests", registration.List).Methods(http.MethodGet).Name(config.RouteListRequests)
	router.HandleFunc("/registration-requests", registration.Delete).Methods(http.MethodDelete).Name(config.RouteDeleteRequest)
	router.HandleFunc("/registration-requests/{id}", registration.Get).Methods(http.MethodGet).Name(config.RouteGetRequest)
	router.HandleFunc("/registration-requests/{id}/approve", registration.Approve).Methods(http.MethodPost).Name(config.RouteApproveRequest)
	router.HandleFunc("/registration-requests/{id}/reject", registration.Reject).Methods(http.MethodPost).Name(config.RouteRejectRequest)
	router.HandleFunc("/registration-complete", registration.VerifyToken).Methods(http.MethodGet).Name(config.RouteVerifyToken)
	router.HandleFunc("/registration-complete", registration.Complete).Methods(http.MethodPost).Name(config.RouteCompleteRequest)
	router.HandleFunc("/auth/login", auth.Login).Methods(http.MethodPost).Name(config.RouteLogin)
	router.HandleFunc("/healthz", health.Healthz).Methods(http.MethodGet).Name(config.RouteHealth)
	router.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet).Name(config.RouteMetrics)

	return cors.New(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(router)
}
