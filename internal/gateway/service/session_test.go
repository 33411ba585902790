package service_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"testing/iotest"

	"github.com/aussiebroadwan/authgateway/internal/gateway/cookies"
	"github.com/aussiebroadwan/authgateway/internal/gateway/service"
	"github.com/aussiebroadwan/authgateway/internal/gateway/upstream"
	"github.com/aussiebroadwan/authgateway/pkg/apierr"
	"github.com/aussiebroadwan/authgateway/pkg/cryptox"
	"github.com/aussiebroadwan/authgateway/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const origin = "https://app.example.com"

var jar = cookies.Jar{ProjectRef: "proj"}

// stubProvider answers each port call from a func field and counts calls.
type stubProvider struct {
	signUp   func(upstream.SignUpInput) (upstream.SignUpResult, error)
	login    func(email, password string) (upstream.Session, error)
	refresh  func(token string) (upstream.Session, error)
	exchange func(code, verifier string) (upstream.Session, error)
	getUser  func(token string) (upstream.User, error)

	calls map[string]int
}

func (p *stubProvider) hit(name string) {
	if p.calls == nil {
		p.calls = map[string]int{}
	}
	p.calls[name]++
}

func (p *stubProvider) SignUp(_ context.Context, in upstream.SignUpInput) (upstream.SignUpResult, error) {
	p.hit("signup")
	return p.signUp(in)
}

func (p *stubProvider) Login(_ context.Context, email, password string) (upstream.Session, error) {
	p.hit("login")
	return p.login(email, password)
}

func (p *stubProvider) RefreshSession(_ context.Context, token string) (upstream.Session, error) {
	p.hit("refresh")
	return p.refresh(token)
}

func (p *stubProvider) ExchangeAuthCodeForTokens(_ context.Context, code, verifier string) (upstream.Session, error) {
	p.hit("exchange")
	return p.exchange(code, verifier)
}

func (p *stubProvider) GetUser(_ context.Context, token string) (upstream.User, error) {
	p.hit("user")
	return p.getUser(token)
}

func newTx() *cookies.Tx {
	return jar.Begin(httptest.NewRequest(http.MethodPost, "/", nil))
}

// committed returns the Set-Cookie results of committing tx, keyed by kind.
func committed(tx *cookies.Tx) map[cookies.Kind]*http.Cookie {
	rec := httptest.NewRecorder()
	tx.Commit(rec)

	out := map[cookies.Kind]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		for _, k := range []cookies.Kind{cookies.AccessToken, cookies.RefreshToken, cookies.CodeVerifier} {
			if c.Name == jar.Name(k) {
				out[k] = c
			}
		}
	}
	return out
}

func TestRegister(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, cryptox.PKCEVerifierBytes)
	want, err := cryptox.PKCEGenerator{Random: bytes.NewReader(seed)}.Generate()
	require.NoError(t, err)

	valid := service.RegisterInput{
		Email:       " alice@example.com ",
		Password:    "hunter22",
		DisplayName: "Alice",
		RedirectTo:  "/welcome?step=1",
	}

	t.Run("stages verifier and sends challenge", func(t *testing.T) {
		var got upstream.SignUpInput
		p := &stubProvider{signUp: func(in upstream.SignUpInput) (upstream.SignUpResult, error) {
			got = in
			return upstream.SignUpResult{NeedsEmailConfirmation: true}, nil
		}}
		svc := &service.SessionService{Provider: p, PKCE: cryptox.PKCEGenerator{Random: bytes.NewReader(seed)}}

		tx := newTx()
		res, err := svc.Register(t.Context(), tx, valid, origin)
		require.NoError(t, err)
		require.True(t, res.NeedsEmailConfirmation)

		require.Equal(t, "alice@example.com", got.Email)
		require.Equal(t, want.CodeChallenge, got.CodeChallenge)
		require.Equal(t, origin+"/auth/callback?next="+url.QueryEscape("/welcome?step=1"), got.EmailRedirectTo)

		c := committed(tx)
		require.Equal(t, want.CodeVerifier, c[cookies.CodeVerifier].Value)
	})

	t.Run("unsafe redirect collapses to root", func(t *testing.T) {
		var got upstream.SignUpInput
		p := &stubProvider{signUp: func(in upstream.SignUpInput) (upstream.SignUpResult, error) {
			got = in
			return upstream.SignUpResult{}, nil
		}}
		svc := &service.SessionService{Provider: p}

		in := valid
		in.RedirectTo = "//evil.com"
		_, err := svc.Register(t.Context(), newTx(), in, origin)
		require.NoError(t, err)
		require.Equal(t, origin+"/auth/callback?next=%2F", got.EmailRedirectTo)
	})

	t.Run("upstream failure deletes verifier", func(t *testing.T) {
		conflict := apierr.Conflict("User already registered")
		p := &stubProvider{signUp: func(upstream.SignUpInput) (upstream.SignUpResult, error) {
			return upstream.SignUpResult{}, conflict
		}}
		svc := &service.SessionService{Provider: p}

		tx := newTx()
		_, err := svc.Register(t.Context(), tx, valid, origin)
		require.ErrorIs(t, err, conflict)

		c := committed(tx)
		require.Equal(t, -1, c[cookies.CodeVerifier].MaxAge)
		require.Empty(t, c[cookies.CodeVerifier].Value)
	})

	t.Run("entropy failure", func(t *testing.T) {
		p := &stubProvider{}
		svc := &service.SessionService{Provider: p, PKCE: cryptox.PKCEGenerator{Random: iotest.ErrReader(errors.New("boom"))}}

		_, err := svc.Register(t.Context(), newTx(), valid, origin)
		require.True(t, apierr.IsKind(err, apierr.KindInternal))
		require.Zero(t, p.calls["signup"])
	})

	invalid := []struct {
		name   string
		mutate func(*service.RegisterInput)
		msg    string
	}{
		{"missing email", func(in *service.RegisterInput) { in.Email = "" }, "email is required"},
		{"bad email", func(in *service.RegisterInput) { in.Email = "nope" }, "email must be a valid email address"},
		{"short password", func(in *service.RegisterInput) { in.Password = "12345" }, "password must be at least 6 characters"},
		{"blank display name", func(in *service.RegisterInput) { in.DisplayName = "   " }, "displayName is required"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubProvider{}
			svc := &service.SessionService{Provider: p}

			in := valid
			tt.mutate(&in)
			_, err := svc.Register(t.Context(), newTx(), in, origin)

			e := apierr.From(err)
			require.Equal(t, apierr.KindValidation, e.Kind)
			require.Equal(t, tt.msg, e.Message)
			require.Zero(t, p.calls["signup"])
		})
	}
}

func TestLogin(t *testing.T) {
	in := service.LoginInput{Email: "alice@example.com", Password: "hunter22"}

	t.Run("sets both cookies", func(t *testing.T) {
		p := &stubProvider{login: func(string, string) (upstream.Session, error) {
			return upstream.Session{AccessToken: "at", RefreshToken: "rt"}, nil
		}}
		tx := newTx()
		require.NoError(t, (&service.SessionService{Provider: p}).Login(t.Context(), tx, in))

		c := committed(tx)
		require.Equal(t, "at", c[cookies.AccessToken].Value)
		require.Equal(t, 7*24*60*60, c[cookies.AccessToken].MaxAge)
		require.Equal(t, "rt", c[cookies.RefreshToken].Value)
		require.Equal(t, 30*24*60*60, c[cookies.RefreshToken].MaxAge)
	})

	t.Run("no refresh token leaves refresh cookie untouched", func(t *testing.T) {
		p := &stubProvider{login: func(string, string) (upstream.Session, error) {
			return upstream.Session{AccessToken: "at"}, nil
		}}
		tx := newTx()
		require.NoError(t, (&service.SessionService{Provider: p}).Login(t.Context(), tx, in))

		_, _, staged := tx.Staged(cookies.RefreshToken)
		require.False(t, staged)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		p := &stubProvider{login: func(string, string) (upstream.Session, error) {
			return upstream.Session{}, apierr.Authentication(apierr.CodeInvalidCredentials, "Invalid login credentials")
		}}
		tx := newTx()
		err := (&service.SessionService{Provider: p}).Login(t.Context(), tx, in)
		require.True(t, apierr.IsKind(err, apierr.KindAuthentication))
		require.Empty(t, committed(tx))
	})
}

func TestRefresh(t *testing.T) {
	t.Run("rotates both cookies", func(t *testing.T) {
		p := &stubProvider{refresh: func(token string) (upstream.Session, error) {
			require.Equal(t, "old-rt", token)
			return upstream.Session{AccessToken: "new-at", RefreshToken: "new-rt"}, nil
		}}
		tx := newTx()
		require.NoError(t, (&service.SessionService{Provider: p}).Refresh(t.Context(), tx, " old-rt "))

		c := committed(tx)
		require.Equal(t, "new-at", c[cookies.AccessToken].Value)
		require.Equal(t, "new-rt", c[cookies.RefreshToken].Value)
	})

	t.Run("keeps old refresh token when none returned", func(t *testing.T) {
		p := &stubProvider{refresh: func(string) (upstream.Session, error) {
			return upstream.Session{AccessToken: "new-at"}, nil
		}}
		tx := newTx()
		require.NoError(t, (&service.SessionService{Provider: p}).Refresh(t.Context(), tx, "old-rt"))
		require.Equal(t, "old-rt", committed(tx)[cookies.RefreshToken].Value)
	})

	failures := []struct {
		name  string
		token string
		err   error
	}{
		{"missing token", "", nil},
		{"rejected token", "old-rt", apierr.Authentication(apierr.CodeInvalidCredentials, "Invalid Refresh Token")},
		{"provider down", "old-rt", apierr.Internal(apierr.CodeUpstreamUnavailable, "Authentication service unavailable", nil)},
	}
	for _, tt := range failures {
		t.Run(tt.name+" clears session", func(t *testing.T) {
			p := &stubProvider{refresh: func(string) (upstream.Session, error) {
				return upstream.Session{}, tt.err
			}}
			tx := newTx()
			err := (&service.SessionService{Provider: p}).Refresh(t.Context(), tx, tt.token)

			e := apierr.From(err)
			require.Equal(t, apierr.KindAuthentication, e.Kind)
			require.Equal(t, apierr.CodeInvalidRefreshToken, e.Code)

			c := committed(tx)
			require.Equal(t, -1, c[cookies.AccessToken].MaxAge)
			require.Equal(t, -1, c[cookies.RefreshToken].MaxAge)
		})
	}

	t.Run("missing token never calls provider", func(t *testing.T) {
		p := &stubProvider{}
		_ = (&service.SessionService{Provider: p}).Refresh(t.Context(), newTx(), "  ")
		require.Zero(t, p.calls["refresh"])
	})
}

func TestCallback(t *testing.T) {
	t.Run("no verifier is invalid state", func(t *testing.T) {
		p := &stubProvider{}
		tx := newTx()
		target := (&service.SessionService{Provider: p}).Callback(t.Context(), tx, "code", "", "/home", origin)

		require.Equal(t, origin+"?error=invalid_state", target)
		require.Zero(t, p.calls["exchange"])
	})

	t.Run("missing code", func(t *testing.T) {
		p := &stubProvider{}
		tx := newTx()
		target := (&service.SessionService{Provider: p}).Callback(t.Context(), tx, "", "verifier", "/home", origin)

		require.Equal(t, origin+"?error=missing_code", target)
		require.Zero(t, p.calls["exchange"])
		require.Equal(t, -1, committed(tx)[cookies.CodeVerifier].MaxAge)
	})

	t.Run("success sets cookies and follows safe next", func(t *testing.T) {
		p := &stubProvider{exchange: func(code, verifier string) (upstream.Session, error) {
			require.Equal(t, "code", code)
			require.Equal(t, "verifier", verifier)
			return upstream.Session{AccessToken: "at", RefreshToken: "rt"}, nil
		}}
		tx := newTx()
		target := (&service.SessionService{Provider: p}).Callback(t.Context(), tx, "code", "verifier", "/home", origin)
		require.Equal(t, origin+"/home", target)

		c := committed(tx)
		require.Equal(t, "at", c[cookies.AccessToken].Value)
		require.Equal(t, "rt", c[cookies.RefreshToken].Value)
		require.Equal(t, -1, c[cookies.CodeVerifier].MaxAge)
	})

	t.Run("unsafe next collapses", func(t *testing.T) {
		p := &stubProvider{exchange: func(string, string) (upstream.Session, error) {
			return upstream.Session{AccessToken: "at"}, nil
		}}
		target := (&service.SessionService{Provider: p}).Callback(t.Context(), newTx(), "code", "verifier", `/\evil.com`, origin)
		require.Equal(t, origin+"/", target)
	})

	t.Run("exchange failure carries message", func(t *testing.T) {
		p := &stubProvider{exchange: func(string, string) (upstream.Session, error) {
			return upstream.Session{}, apierr.Authentication(apierr.CodeInvalidCredentials, "code verifier mismatch")
		}}
		tx := newTx()
		target := (&service.SessionService{Provider: p}).Callback(t.Context(), tx, "code", "verifier", "/home", origin)
		require.Equal(t, origin+"?error=code+verifier+mismatch", target)

		c := committed(tx)
		require.NotContains(t, c, cookies.AccessToken)
		require.Equal(t, -1, c[cookies.CodeVerifier].MaxAge)
	})
}

func TestSignout(t *testing.T) {
	tx := newTx()
	(&service.SessionService{}).Signout(tx)

	c := committed(tx)
	require.Len(t, c, 2)
	require.Equal(t, -1, c[cookies.AccessToken].MaxAge)
	require.Equal(t, -1, c[cookies.RefreshToken].MaxAge)
}

func TestMe(t *testing.T) {
	p := &stubProvider{getUser: func(token string) (upstream.User, error) {
		require.Equal(t, "at", token)
		return upstream.User{ID: "u1", Email: "alice@example.com"}, nil
	}}
	id := jwtx.Identity{Subject: "u1", Audience: "authenticated", Role: "authenticated"}

	prof, err := (&service.SessionService{Provider: p}).Me(t.Context(), id, "at")
	require.NoError(t, err)
	require.Equal(t, service.Profile{ID: "u1", Email: "alice@example.com", Role: "authenticated", Audience: "authenticated"}, prof)
}
