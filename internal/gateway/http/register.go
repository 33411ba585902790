package http

import (
	"net/http"

	"github.com/aussiebroadwan/authgateway/internal/gateway/cookies"
	"github.com/aussiebroadwan/authgateway/internal/gateway/service"
	"github.com/aussiebroadwan/authgateway/pkg/authsdk"
	"github.com/aussiebroadwan/authgateway/pkg/httpx"
)

type RegisterHandler struct {
	Sessions *service.SessionService
	Jar      cookies.Jar
	Origins  OriginPolicy
}

// ServeHTTP handles account registration.
//
//	@Summary		Register an account
//	@Description	Creates an account with the provider using a PKCE challenge. The code verifier is stored
//	@Description	in the code-verifier cookie for the emailed confirmation link. redirectTo must be a
//	@Description	same-origin path; anything else is replaced with "/". Limited to 3 requests per minute.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest		true	"Account details"
//	@Success		200		{object}	authsdk.RegisterResponse	"Registered"
//	@Failure		400		{object}	authsdk.ErrorResponse		"Invalid input"
//	@Failure		409		{object}	authsdk.ErrorResponse		"Account already exists"
//	@Failure		413		{object}	authsdk.ErrorResponse		"Body too large"
//	@Failure		429		{object}	authsdk.ErrorResponse		"Rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse		"Provider unavailable"
//	@Router			/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	tx := h.Jar.Begin(r)
	res, err := h.Sessions.Register(r.Context(), tx, service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		RedirectTo:  req.RedirectTo,
	}, h.Origins.Resolve(r))
	if err != nil {
		tx.Rollback(w)
		httpx.WriteError(w, err)
		return
	}

	tx.Commit(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.RegisterResponse{
		OK:                     true,
		NeedsEmailConfirmation: res.NeedsEmailConfirmation,
	})
}
