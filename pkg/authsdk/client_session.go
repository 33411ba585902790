package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Register creates an account. The code-verifier cookie for the emailed
// confirmation link is stored in the client's jar.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/register", req)
	if err != nil {
		return nil, err
	}

	var out RegisterResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login signs in with a password; session cookies land in the jar.
func (c *SDKClient) Login(ctx context.Context, email, password string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/login", LoginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}
	return decodeJSON(resp, &OKResponse{}, http.StatusOK)
}

// Refresh rotates the session. refreshToken is only needed when the jar
// holds no refresh cookie.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) error {
	var body any
	if refreshToken != "" {
		body = RefreshRequest{RefreshToken: refreshToken}
	}
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/refresh", body)
	if err != nil {
		return err
	}
	return decodeJSON(resp, &OKResponse{}, http.StatusOK)
}

// Signout clears the session cookies.
func (c *SDKClient) Signout(ctx context.Context) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/signout", nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, &OKResponse{}, http.StatusOK)
}

// Me returns the signed-in user's profile.
func (c *SDKClient) Me(ctx context.Context) (*ProfileResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var out ProfileResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Callback follows an emailed confirmation link and returns where the
// gateway redirected to.
func (c *SDKClient) Callback(ctx context.Context, code, next string) (*url.URL, error) {
	q := url.Values{}
	if code != "" {
		q.Set("code", code)
	}
	if next != "" {
		q.Set("next", next)
	}

	path := "/auth/callback"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := c.doJSON(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		return nil, fmt.Errorf("callback: unexpected status %d", resp.StatusCode)
	}
	return resp.Location()
}
