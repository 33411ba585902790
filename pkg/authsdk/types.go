package authsdk

import "github.com/aussiebroadwan/authgateway/pkg/httpx"

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse = httpx.ErrorBody

// ============================================================================
// Session Types
// ============================================================================

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`

	// RedirectTo is the same-origin path to land on after email confirmation.
	// Anything that is not a plain path is replaced with "/".
	RedirectTo string `json:"redirectTo,omitempty"`
}

// RegisterResponse reports whether the user must confirm their email first.
type RegisterResponse struct {
	OK                     bool `json:"ok"`
	NeedsEmailConfirmation bool `json:"needsEmailConfirmation"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the optional body of POST /auth/refresh. The refresh
// token cookie takes precedence when present.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

// OKResponse is returned by operations whose only output is cookies.
type OKResponse struct {
	OK bool `json:"ok"`
}

// ProfileResponse is returned by GET /auth/me.
type ProfileResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	Audience string `json:"aud,omitempty"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the gateway's dependencies.
type HealthChecks struct {
	// Upstream is the identity provider's health.
	Upstream string `json:"upstream"`

	// KeySet is "shared_secret", "pinned" or "pending". A pending key set
	// does not fail readiness since it resolves on the first token.
	KeySet string `json:"keyset"`
}
