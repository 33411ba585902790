// Package upstream talks to the identity provider that owns credentials and
// issues tokens. Everything the provider says is mapped into apierr before it
// leaves this package.
package upstream

import "context"

// Session is the token pair returned by a successful grant. RefreshToken
// may be empty.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// User is the subset of the provider's user record the gateway exposes.
type User struct {
	ID    string
	Email string
}

type SignUpInput struct {
	Email           string
	Password        string
	DisplayName     string
	CodeChallenge   string
	EmailRedirectTo string
}

type SignUpResult struct {
	NeedsEmailConfirmation bool
}

// Provider is the port the session service depends on.
type Provider interface {
	SignUp(ctx context.Context, in SignUpInput) (SignUpResult, error)
	Login(ctx context.Context, email, password string) (Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (Session, error)
	ExchangeAuthCodeForTokens(ctx context.Context, code, codeVerifier string) (Session, error)
	GetUser(ctx context.Context, accessToken string) (User, error)
}
