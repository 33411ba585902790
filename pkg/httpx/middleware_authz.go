package httpx

import (
	"net/http"
	"slices"

	"github.com/aussiebroadwan/authgateway/pkg/apierr"
)

// RequireRole allows the request only when the verified "role" claim is one
// of roles. Must be chained after AuthnMiddleware.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, ok := AuthFromContext(r.Context())
			if !ok {
				WriteError(w, apierr.ErrInvalidToken)
				return
			}

			if !slices.Contains(roles, ac.Identity.Role) {
				w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope"`)
				WriteError(w, apierr.Forbidden("Insufficient role"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
