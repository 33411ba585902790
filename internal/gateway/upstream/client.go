package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aussiebroadwan/authgateway/pkg/apierr"
)

const (
	// DefaultTimeout bounds each provider call; there are no retries.
	DefaultTimeout = 10 * time.Second

	authPath        = "/auth/v1"
	maxResponseBody = 1 << 20
	tracerName      = "github.com/aussiebroadwan/authgateway/internal/gateway/upstream"
)

// Client is a Provider backed by the provider's auth REST API.
type Client struct {
	BaseURL    string
	AnonKey    string
	HTTPClient *http.Client
}

var _ Provider = (*Client)(nil)

// NewClient returns a client for providerURL. A zero timeout selects
// DefaultTimeout.
func NewClient(providerURL, anonKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL:    strings.TrimRight(providerURL, "/") + authPath,
		AnonKey:    anonKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type signUpRequest struct {
	Email               string            `json:"email"`
	Password            string            `json:"password"`
	Data                map[string]string `json:"data,omitempty"`
	CodeChallenge       string            `json:"code_challenge,omitempty"`
	CodeChallengeMethod string            `json:"code_challenge_method,omitempty"`
}

// signUpResponse is either a session (auto-confirm) or a bare user record
// (confirmation email sent). Only the presence of a token matters.
type signUpResponse struct {
	AccessToken string `json:"access_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (c *Client) SignUp(ctx context.Context, in SignUpInput) (SignUpResult, error) {
	body := signUpRequest{
		Email:    in.Email,
		Password: in.Password,
	}
	if in.DisplayName != "" {
		body.Data = map[string]string{"display_name": in.DisplayName}
	}
	if in.CodeChallenge != "" {
		body.CodeChallenge = in.CodeChallenge
		body.CodeChallengeMethod = "s256"
	}

	var q url.Values
	if in.EmailRedirectTo != "" {
		q = url.Values{"redirect_to": {in.EmailRedirectTo}}
	}

	var out signUpResponse
	if err := c.do(ctx, "upstream.SignUp", http.MethodPost, "/signup", q, "", body, &out); err != nil {
		return SignUpResult{}, err
	}
	return SignUpResult{NeedsEmailConfirmation: out.AccessToken == ""}, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	return c.grant(ctx, "upstream.Login", "password", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (Session, error) {
	return c.grant(ctx, "upstream.RefreshSession", "refresh_token", map[string]string{
		"refresh_token": refreshToken,
	})
}

func (c *Client) ExchangeAuthCodeForTokens(ctx context.Context, code, codeVerifier string) (Session, error) {
	return c.grant(ctx, "upstream.ExchangeAuthCode", "pkce", map[string]string{
		"auth_code":     code,
		"code_verifier": codeVerifier,
	})
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (User, error) {
	var out userResponse
	if err := c.do(ctx, "upstream.GetUser", http.MethodGet, "/user", nil, accessToken, nil, &out); err != nil {
		return User{}, err
	}
	return User{ID: out.ID, Email: out.Email}, nil
}

// Ping checks the provider's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "upstream.Ping", http.MethodGet, "/health", nil, "", nil, nil)
}

func (c *Client) grant(ctx context.Context, span, grantType string, body map[string]string) (Session, error) {
	var out tokenResponse
	q := url.Values{"grant_type": {grantType}}
	if err := c.do(ctx, span, http.MethodPost, "/token", q, "", body, &out); err != nil {
		return Session{}, err
	}
	if out.AccessToken == "" {
		return Session{}, unavailable(fmt.Errorf("upstream: %s grant returned no access token", grantType))
	}
	return Session{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    out.ExpiresIn,
	}, nil
}

// do sends one request and decodes a 2xx JSON body into dst when non-nil.
// Every failure comes back as an *apierr.Error.
func (c *Client) do(
	ctx context.Context,
	spanName, method, path string,
	query url.Values,
	bearer string,
	body, dst any,
) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", authPath+path),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return apierr.Internal(apierr.CodeInternal, "Internal server error", fmt.Errorf("upstream: encode body: %w", err))
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return apierr.Internal(apierr.CodeInternal, "Internal server error", fmt.Errorf("upstream: create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AnonKey != "" {
		req.Header.Set("apikey", c.AnonKey)
	}
	switch {
	case bearer != "":
		req.Header.Set("Authorization", "Bearer "+bearer)
	case c.AnonKey != "":
		req.Header.Set("Authorization", "Bearer "+c.AnonKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return unavailable(fmt.Errorf("upstream: send request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return unavailable(fmt.Errorf("upstream: read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return mapError(resp, respBody)
	}

	if dst == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, dst); err != nil {
		return unavailable(fmt.Errorf("upstream: decode response: %w", err))
	}
	return nil
}
