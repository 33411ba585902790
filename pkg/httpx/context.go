package httpx

import (
	"context"

	"github.com/aussiebroadwan/authgateway/pkg/jwtx"
)

type ctxKey string

const ctxKeyAuth ctxKey = "auth"

// AuthContext is what AuthnMiddleware publishes for downstream handlers.
type AuthContext struct {
	Identity    jwtx.Identity
	AccessToken string
}

// WithAuth stores ac in ctx.
func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, ctxKeyAuth, ac)
}

// AuthFromContext returns the AuthContext set by AuthnMiddleware.
func AuthFromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(ctxKeyAuth).(AuthContext)
	return ac, ok
}
