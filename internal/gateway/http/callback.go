package http

import (
	"net/http"

	"github.com/aussiebroadwan/authgateway/internal/gateway/cookies"
	"github.com/aussiebroadwan/authgateway/internal/gateway/service"
	"github.com/aussiebroadwan/authgateway/pkg/httpx"
)

type CallbackHandler struct {
	Sessions *service.SessionService
	Jar      cookies.Jar
	Origins  OriginPolicy
}

// ServeHTTP completes the emailed PKCE flow.
//
//	@Summary		Complete email confirmation
//	@Description	Exchanges the code for a session using the code-verifier cookie, which is cleared
//	@Description	whatever the outcome. Always answers with a redirect: to the origin plus next on success,
//	@Description	or to the origin with an error query parameter (invalid_state, missing_code, or the
//	@Description	provider's message).
//	@Tags			Session
//	@Param			code	query	string	false	"Authorization code from the provider"
//	@Param			next	query	string	false	"Same-origin path to land on"
//	@Success		302		"Redirect to the web origin"
//	@Router			/auth/callback [get].
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	verifier, _ := h.Jar.Read(r, cookies.CodeVerifier)

	tx := h.Jar.Begin(r)
	target := h.Sessions.Callback(r.Context(), tx, q.Get("code"), verifier, q.Get("next"), h.Origins.Resolve(r))
	tx.Commit(w)

	httpx.NoCache(w)
	http.Redirect(w, r, target, http.StatusFound)
}
