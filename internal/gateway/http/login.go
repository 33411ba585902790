package http

import (
	"net/http"

	"github.com/aussiebroadwan/authgateway/internal/gateway/cookies"
	"github.com/aussiebroadwan/authgateway/internal/gateway/service"
	"github.com/aussiebroadwan/authgateway/pkg/authsdk"
	"github.com/aussiebroadwan/authgateway/pkg/httpx"
)

type LoginHandler struct {
	Sessions *service.SessionService
	Jar      cookies.Jar
}

// ServeHTTP handles password sign-in.
//
//	@Summary		Sign in with a password
//	@Description	Exchanges credentials for a session. Sets the access-token cookie (7 days) and, when the
//	@Description	provider returns one, the refresh-token cookie (30 days). Limited to 5 requests per minute.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.OKResponse		"Signed in"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Invalid input"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid credentials"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Provider unavailable"
//	@Router			/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	tx := h.Jar.Begin(r)
	if err := h.Sessions.Login(r.Context(), tx, service.LoginInput{Email: req.Email, Password: req.Password}); err != nil {
		tx.Rollback(w)
		httpx.WriteError(w, err)
		return
	}

	tx.Commit(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.OKResponse{OK: true})
}
