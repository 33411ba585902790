package http

import (
	"net/http"

	"github.com/aussiebroadwan/authgateway/internal/gateway/cookies"
	"github.com/aussiebroadwan/authgateway/internal/gateway/service"
	"github.com/aussiebroadwan/authgateway/pkg/authsdk"
	"github.com/aussiebroadwan/authgateway/pkg/httpx"
)

type SignoutHandler struct {
	Sessions *service.SessionService
	Jar      cookies.Jar
}

// ServeHTTP handles sign-out.
//
//	@Summary		Sign out
//	@Description	Clears the access-token and refresh-token cookies. Always succeeds.
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	authsdk.OKResponse	"Signed out"
//	@Router			/auth/signout [post].
func (h *SignoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tx := h.Jar.Begin(r)
	h.Sessions.Signout(tx)
	tx.Commit(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.OKResponse{OK: true})
}
