// Package service orchestrates the session lifecycle: each operation is a
// short exchange with the upstream provider plus staged cookie changes.
package service

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/authgateway/internal/gateway/cookies"
	"github.com/aussiebroadwan/authgateway/internal/gateway/upstream"
	"github.com/aussiebroadwan/authgateway/pkg/apierr"
	"github.com/aussiebroadwan/authgateway/pkg/cryptox"
	"github.com/aussiebroadwan/authgateway/pkg/jwtx"
	"github.com/aussiebroadwan/authgateway/pkg/slogx"
)

// Redirect error codes for the callback flow.
const (
	ErrorInvalidState = "invalid_state"
	ErrorMissingCode  = "missing_code"
)

var errInvalidRefresh = apierr.Authentication(apierr.CodeInvalidRefreshToken, "Invalid or expired refresh token")

type RegisterResult struct {
	NeedsEmailConfirmation bool `json:"needsEmailConfirmation"`
}

// Profile is what /auth/me reports about the caller.
type Profile struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	Audience string `json:"aud,omitempty"`
}

type SessionService struct {
	Provider upstream.Provider
	PKCE     cryptox.PKCEGenerator
}

// Register signs a user up with a PKCE challenge. The verifier is staged as
// a cookie for the confirmation callback, and staged for deletion again if
// the provider rejects the signup.
func (s *SessionService) Register(ctx context.Context, tx *cookies.Tx, in RegisterInput, origin string) (RegisterResult, error) {
	l := slogx.FromContext(ctx)

	in.normalize()
	if err := validateInput(&in); err != nil {
		return RegisterResult{}, err
	}

	next := SafeNext(in.RedirectTo)

	pair, err := s.PKCE.Generate()
	if err != nil {
		return RegisterResult{}, apierr.Internal(apierr.CodeInternal, "Internal server error", err)
	}
	tx.Set(cookies.CodeVerifier, pair.CodeVerifier)

	res, err := s.Provider.SignUp(ctx, upstream.SignUpInput{
		Email:           in.Email,
		Password:        in.Password,
		DisplayName:     in.DisplayName,
		CodeChallenge:   pair.CodeChallenge,
		EmailRedirectTo: callbackURL(origin, next),
	})
	if err != nil {
		tx.Delete(cookies.CodeVerifier)
		l.Info("signup rejected", "err", err)
		return RegisterResult{}, err
	}

	l.Info("signup accepted", "needs_confirmation", res.NeedsEmailConfirmation)
	return RegisterResult{NeedsEmailConfirmation: res.NeedsEmailConfirmation}, nil
}

// Login performs the password grant. An absent refresh token leaves any
// existing refresh cookie alone.
func (s *SessionService) Login(ctx context.Context, tx *cookies.Tx, in LoginInput) error {
	l := slogx.FromContext(ctx)

	in.normalize()
	if err := validateInput(&in); err != nil {
		return err
	}

	sess, err := s.Provider.Login(ctx, in.Email, in.Password)
	if err != nil {
		l.Info("login failed", "err", err)
		return err
	}

	tx.Set(cookies.AccessToken, sess.AccessToken)
	if sess.RefreshToken != "" {
		tx.Set(cookies.RefreshToken, sess.RefreshToken)
	}
	return nil
}

// Refresh rotates the session. Any failure, including a missing token, ends
// the session: both token cookies are staged for deletion and a 401 is
// returned.
func (s *SessionService) Refresh(ctx context.Context, tx *cookies.Tx, refreshToken string) error {
	l := slogx.FromContext(ctx)

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		endSession(tx)
		return errInvalidRefresh
	}
	fp := cryptox.FingerprintToken(refreshToken)[:12]

	sess, err := s.Provider.RefreshSession(ctx, refreshToken)
	if err != nil {
		endSession(tx)
		l.Info("refresh failed", "refresh_fp", fp, "err", err)
		return errInvalidRefresh.Wrap(err)
	}

	tx.Set(cookies.AccessToken, sess.AccessToken)
	if sess.RefreshToken != "" {
		tx.Set(cookies.RefreshToken, sess.RefreshToken)
	} else {
		tx.Set(cookies.RefreshToken, refreshToken)
	}

	l.Debug("session refreshed", "refresh_fp", fp, "rotated", sess.RefreshToken != "")
	return nil
}

// Callback completes the emailed PKCE flow and returns the redirect target.
// The verifier cookie is single-use and is deleted whatever the outcome.
func (s *SessionService) Callback(ctx context.Context, tx *cookies.Tx, code, verifier, next, origin string) string {
	l := slogx.FromContext(ctx)

	tx.Delete(cookies.CodeVerifier)

	if verifier == "" {
		l.Warn("callback without code verifier")
		return errorRedirect(origin, ErrorInvalidState)
	}
	if code == "" {
		return errorRedirect(origin, ErrorMissingCode)
	}

	sess, err := s.Provider.ExchangeAuthCodeForTokens(ctx, code, verifier)
	if err != nil {
		l.Info("code exchange failed", "err", err)
		return errorRedirect(origin, apierr.From(err).Message)
	}

	tx.Set(cookies.AccessToken, sess.AccessToken)
	if sess.RefreshToken != "" {
		tx.Set(cookies.RefreshToken, sess.RefreshToken)
	}
	return origin + SafeNext(next)
}

// Signout clears the token cookies. It never fails.
func (s *SessionService) Signout(tx *cookies.Tx) {
	endSession(tx)
}

// Me combines the verified identity with the provider's user record.
func (s *SessionService) Me(ctx context.Context, id jwtx.Identity, accessToken string) (Profile, error) {
	u, err := s.Provider.GetUser(ctx, accessToken)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		ID:       id.Subject,
		Email:    u.Email,
		Role:     id.Role,
		Audience: id.Audience,
	}, nil
}

func endSession(tx *cookies.Tx) {
	tx.Delete(cookies.AccessToken)
	tx.Delete(cookies.RefreshToken)
}
