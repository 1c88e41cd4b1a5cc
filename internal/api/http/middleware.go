package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"ministry-admin-backend/internal/config"
	"ministry-admin-backend/internal/domain"
	"ministry-admin-backend/internal/logger"
	"ministry-admin-backend/internal/metrics"
	"ministry-admin-backend/internal/security"
	"ministry-admin-backend/internal/service"
)

type contextKey string

const accountIDKey contextKey = "account-id"

// AccountIDFromContext returns the authenticated administrator's id.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDKey).(string)
	return id, ok && id != ""
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		return route.GetName()
	}
	return ""
}

type AuthMiddleware struct {
	tokenManager security.TokenManager
}

func NewAuthMiddleware(tm security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm}
}

// Handler authenticates requests to admin routes using a bearer session token.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		level := config.GetSecurityLevel(routeName(r))

		// Public endpoint - skip auth
		if level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token := extractToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authorization token is not provided")
			return
		}

		claims, err := m.tokenManager.ValidateToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token: "+err.Error())
			return
		}
		if claims.Role != domain.AccountRoleAdmin && claims.Role != domain.AccountRoleOwner {
			writeError(w, http.StatusUnauthorized, "unauthorized", service.ErrUnauthorized.Error())
			return
		}

		ctx := context.WithValue(r.Context(), accountIDKey, claims.AccountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(r *http.Request) string {
	token := r.Header.Get("Authorization")
	// Remove Bearer prefix if present
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = token[7:]
	}
	return strings.TrimSpace(token)
}

// baseURLMiddleware records the origin that completion links should point at.
func baseURLMiddleware(publicBaseURL string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if base := requestBaseURL(r, publicBaseURL); base != "" {
				r = r.WithContext(service.WithBaseURL(r.Context(), base))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestBaseURL prefers the caller's Origin, then proxy headers, then the
// configured public base URL. The bare Host header is used only when nothing
// is configured.
func requestBaseURL(r *http.Request, publicBaseURL string) string {
	if origin := r.Header.Get("Origin"); origin != "" && origin != "null" {
		return origin
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		if publicBaseURL != "" {
			return strings.TrimRight(publicBaseURL, "/")
		}
		host = r.Host
	}
	if host == "" {
		return ""
	}
	host = strings.TrimSpace(strings.Split(host, ",")[0])

	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "http"
		if r.TLS != nil {
			scheme = "https"
		}
	}
	scheme = strings.TrimSpace(strings.Split(scheme, ",")[0])
	return scheme + "://" + host
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrumentMiddleware logs each request and counts it by route and status.
func instrumentMiddleware(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := routeName(r)
			m.HTTPRequest(route, rec.status)
			logger.Debug("HTTP request",
				"method", r.Method,
				"route", route,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
