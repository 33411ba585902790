package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/authgateway/internal/gateway/cookies"
	gatewayhttp "github.com/aussiebroadwan/authgateway/internal/gateway/http"
	"github.com/aussiebroadwan/authgateway/internal/gateway/service"
	"github.com/aussiebroadwan/authgateway/internal/gateway/upstream"
	"github.com/aussiebroadwan/authgateway/pkg/apierr"
	"github.com/aussiebroadwan/authgateway/pkg/authsdk"
	"github.com/aussiebroadwan/authgateway/pkg/httpx"
	"github.com/aussiebroadwan/authgateway/pkg/jwtx"
)

const (
	providerURL = "https://proj.supabase.co"
	jwtSecret   = "super-secret-jwt-token-with-at-least-32-characters"
	webOrigin   = "https://app.example.com"
)

var jar = cookies.Jar{ProjectRef: "proj"}

// fakeProvider issues real HS256 tokens for one known user.
type fakeProvider struct {
	t *testing.T

	refreshErr error
	exchanges  int
	pingErr    error
}

func (p *fakeProvider) token(sub string) string {
	p.t.Helper()
	now := time.Now()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"aud":  "authenticated",
		"role": "authenticated",
		"iss":  jwtx.Issuer(providerURL),
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}).SignedString([]byte(jwtSecret))
	require.NoError(p.t, err)
	return s
}

func (p *fakeProvider) SignUp(context.Context, upstream.SignUpInput) (upstream.SignUpResult, error) {
	return upstream.SignUpResult{NeedsEmailConfirmation: true}, nil
}

func (p *fakeProvider) Login(_ context.Context, email, password string) (upstream.Session, error) {
	if email != "alice@example.com" || password != "hunter22" {
		return upstream.Session{}, apierr.Authentication(apierr.CodeInvalidCredentials, "Invalid login credentials")
	}
	return upstream.Session{AccessToken: p.token("user-alice"), RefreshToken: "rt-1"}, nil
}

func (p *fakeProvider) RefreshSession(context.Context, string) (upstream.Session, error) {
	if p.refreshErr != nil {
		return upstream.Session{}, p.refreshErr
	}
	return upstream.Session{AccessToken: p.token("user-alice"), RefreshToken: "rt-2"}, nil
}

func (p *fakeProvider) ExchangeAuthCodeForTokens(context.Context, string, string) (upstream.Session, error) {
	p.exchanges++
	return upstream.Session{AccessToken: p.token("user-alice")}, nil
}

func (p *fakeProvider) GetUser(context.Context, string) (upstream.User, error) {
	return upstream.User{ID: "user-alice", Email: "alice@example.com"}, nil
}

func (p *fakeProvider) Ping(context.Context) error { return p.pingErr }

func newRouter(t *testing.T, p *fakeProvider) *gatewayhttp.Router {
	t.Helper()
	p.t = t

	v, err := jwtx.NewVerifier(jwtx.Options{ProviderURL: providerURL, Audience: "authenticated", Secret: jwtSecret})
	require.NoError(t, err)

	r := gatewayhttp.NewRouter(
		gatewayhttp.Config{AllowedOrigins: []string{webOrigin}},
		jar,
		v,
		httpx.NewFixedWindowLimiter(httpx.WithSweep(0, func() float64 { return 1 })),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	r.Sessions = &service.SessionService{Provider: p}
	r.Upstream = p
	r.ApplyRoutes()
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string, cks ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.RemoteAddr = "203.0.113.7:5555"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cks {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body authsdk.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func TestLoginCookieRoundTrip(t *testing.T) {
	r := newRouter(t, &fakeProvider{})

	rec := do(t, r, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	access := cookieNamed(rec, jar.Name(cookies.AccessToken))
	require.NotNil(t, access)
	require.True(t, access.HttpOnly)
	require.Equal(t, "rt-1", cookieNamed(rec, jar.Name(cookies.RefreshToken)).Value)

	me := do(t, r, http.MethodGet, "/auth/me", "", &http.Cookie{Name: access.Name, Value: access.Value})
	require.Equal(t, http.StatusOK, me.Code)

	var prof authsdk.ProfileResponse
	require.NoError(t, json.Unmarshal(me.Body.Bytes(), &prof))
	require.Equal(t, "user-alice", prof.ID)
	require.Equal(t, "alice@example.com", prof.Email)
}

func TestLoginFailures(t *testing.T) {
	r := newRouter(t, &fakeProvider{})

	rec := do(t, r, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"wrong-password"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, apierr.CodeInvalidCredentials, errorCode(t, rec))
	require.Empty(t, rec.Result().Cookies())

	rec = do(t, r, http.MethodPost, "/auth/login", `{"email":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	big := `{"email":"` + strings.Repeat("a", httpx.MaxBodyBytes) + `"}`
	rec = do(t, r, http.MethodPost, "/auth/login", big)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestLoginRateLimit(t *testing.T) {
	r := newRouter(t, &fakeProvider{})

	for i := range gatewayhttp.DefaultLoginLimit {
		rec := do(t, r, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"nope-nope"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "request %d", i+1)
	}

	rec := do(t, r, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, apierr.CodeRateLimited, errorCode(t, rec))
	require.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Other paths keep their own window.
	rec = do(t, r, http.MethodPost, "/auth/register", `{"email":"bob@example.com","password":"hunter22","displayName":"Bob"}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegister(t *testing.T) {
	r := newRouter(t, &fakeProvider{})

	rec := do(t, r, http.MethodPost, "/auth/register", `{"email":"bob@example.com","password":"hunter22","displayName":"Bob","redirectTo":"/welcome"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body authsdk.RegisterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.OK)
	require.True(t, body.NeedsEmailConfirmation)
	require.NotEmpty(t, cookieNamed(rec, jar.Name(cookies.CodeVerifier)).Value)

	rec = do(t, r, http.MethodPost, "/auth/register", `{"email":"not-an-email","password":"hunter22","displayName":"Bob"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, apierr.CodeValidationFailed, errorCode(t, rec))
}

func TestRefresh(t *testing.T) {
	t.Run("rotates from cookie", func(t *testing.T) {
		r := newRouter(t, &fakeProvider{})
		rec := do(t, r, http.MethodPost, "/auth/refresh", "", &http.Cookie{Name: jar.Name(cookies.RefreshToken), Value: "rt-1"})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "rt-2", cookieNamed(rec, jar.Name(cookies.RefreshToken)).Value)
	})

	t.Run("accepts body token", func(t *testing.T) {
		r := newRouter(t, &fakeProvider{})
		rec := do(t, r, http.MethodPost, "/auth/refresh", `{"refreshToken":"rt-1"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("failure clears both cookies", func(t *testing.T) {
		r := newRouter(t, &fakeProvider{refreshErr: errors.New("revoked")})
		rec := do(t, r, http.MethodPost, "/auth/refresh", "", &http.Cookie{Name: jar.Name(cookies.RefreshToken), Value: "rt-1"})

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, apierr.CodeInvalidRefreshToken, errorCode(t, rec))
		require.Equal(t, -1, cookieNamed(rec, jar.Name(cookies.AccessToken)).MaxAge)
		require.Equal(t, -1, cookieNamed(rec, jar.Name(cookies.RefreshToken)).MaxAge)
	})

	t.Run("missing token clears both cookies", func(t *testing.T) {
		r := newRouter(t, &fakeProvider{})
		rec := do(t, r, http.MethodPost, "/auth/refresh", "")

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.NotNil(t, cookieNamed(rec, jar.Name(cookies.AccessToken)))
		require.NotNil(t, cookieNamed(rec, jar.Name(cookies.RefreshToken)))
	})
}

func TestSignout(t *testing.T) {
	r := newRouter(t, &fakeProvider{})
	rec := do(t, r, http.MethodPost, "/auth/signout", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"ok":true}`, rec.Body.String())
	require.Equal(t, -1, cookieNamed(rec, jar.Name(cookies.AccessToken)).MaxAge)
	require.Equal(t, -1, cookieNamed(rec, jar.Name(cookies.RefreshToken)).MaxAge)
}

func TestCallback(t *testing.T) {
	t.Run("without verifier", func(t *testing.T) {
		p := &fakeProvider{}
		r := newRouter(t, p)
		rec := do(t, r, http.MethodGet, "/auth/callback?code=abc&next=/home", "")

		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, webOrigin+"?error=invalid_state", rec.Header().Get("Location"))
		require.Zero(t, p.exchanges)
	})

	t.Run("with verifier", func(t *testing.T) {
		p := &fakeProvider{}
		r := newRouter(t, p)
		rec := do(t, r, http.MethodGet, "/auth/callback?code=abc&next=/home", "",
			&http.Cookie{Name: jar.Name(cookies.CodeVerifier), Value: "verifier"})

		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, webOrigin+"/home", rec.Header().Get("Location"))
		require.Equal(t, 1, p.exchanges)
		require.NotEmpty(t, cookieNamed(rec, jar.Name(cookies.AccessToken)).Value)
		require.Equal(t, -1, cookieNamed(rec, jar.Name(cookies.CodeVerifier)).MaxAge)
	})
}

func TestMeRequiresToken(t *testing.T) {
	r := newRouter(t, &fakeProvider{})

	rec := do(t, r, http.MethodGet, "/auth/me", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, apierr.CodeMissingToken, errorCode(t, rec))

	rec = do(t, r, http.MethodGet, "/auth/me", "", &http.Cookie{Name: jar.Name(cookies.AccessToken), Value: "garbage"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, apierr.CodeInvalidToken, errorCode(t, rec))

	rec = do(t, r, http.MethodOptions, "/auth/me", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHealth(t *testing.T) {
	p := &fakeProvider{}
	r := newRouter(t, p)

	rec := do(t, r, http.MethodGet, "/livez", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(t, r, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var health authsdk.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "shared_secret", health.Checks.KeySet)

	p.pingErr = errors.New("down")
	rec = do(t, r, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
