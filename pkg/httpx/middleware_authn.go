package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/authgateway/pkg/apierr"
	"github.com/aussiebroadwan/authgateway/pkg/jwtx"
	"github.com/aussiebroadwan/authgateway/pkg/slogx"
)

// AuthnMiddleware requires a verified access token taken from the
// Authorization header or, failing that, the named cookie. Pre-flight
// OPTIONS requests are answered with 204 before any token handling.
func AuthnMiddleware(v jwtx.Verifier, accessCookie string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := extractToken(r, accessCookie)
			if raw == "" {
				writeBearerError(w, apierr.ErrMissingToken)
				return
			}

			id, err := v.Verify(ctx, raw)
			if err != nil {
				log.Warn("jwt verify failed", "err", err)
				writeBearerError(w, apierr.ErrInvalidToken)
				return
			}
			// Same outcome as a bad signature; callers cannot tell which.
			if !id.Authenticated() {
				log.Warn("jwt verified without string sub")
				writeBearerError(w, apierr.ErrInvalidToken)
				return
			}

			ctx = WithAuth(ctx, AuthContext{Identity: id, AccessToken: raw})
			ctx = slogx.With(ctx, "sub", id.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken prefers "Authorization: Bearer" over the cookie.
func extractToken(r *http.Request, accessCookie string) string {
	if authz := r.Header.Get("Authorization"); len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
		if tok := strings.TrimSpace(authz[7:]); tok != "" {
			return tok
		}
	}

	if accessCookie == "" {
		return ""
	}
	if c, err := r.Cookie(accessCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

// RFC 6750 challenge plus the JSON error body.
func writeBearerError(w http.ResponseWriter, e *apierr.Error) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+e.Message+`"`)
	WriteError(w, e)
}
