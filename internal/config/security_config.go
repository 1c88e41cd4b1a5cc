package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAdmin                       // Admin session token required
)

// Route names registered on the HTTP router.
const (
	RouteSubmitRequest   = "submit_request"
	RouteListRequests    = "list_requests"
	RouteGetRequest      = "get_request"
	RouteDeleteRequest   = "delete_request"
	RouteApproveRequest  = "approve_request"
	RouteRejectRequest   = "reject_request"
	RouteVerifyToken     = "verify_token"
	RouteCompleteRequest = "complete_registration"
	RouteLogin           = "login"
	RouteHealth          = "healthz"
	RouteMetrics         = "metrics"
)

// EndpointSecurityConfig maps route names to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Public
	RouteSubmitRequest:   SecurityPublic,
	RouteVerifyToken:     SecurityPublic,
	RouteCompleteRequest: SecurityPublic,
	RouteLogin:           SecurityPublic,
	RouteHealth:          SecurityPublic,
	RouteMetrics:         SecurityPublic,

	// Admin
	RouteListRequests:   SecurityAdmin,
	RouteGetRequest:     SecurityAdmin,
	RouteDeleteRequest:  SecurityAdmin,
	RouteApproveRequest: SecurityAdmin,
	RouteRejectRequest:  SecurityAdmin,
}

// GetSecurityLevel returns the security level for a given route
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAdmin
}
