package http

import (
	"net/http"

	"github.com/aussiebroadwan/authgateway/internal/gateway/cookies"
	"github.com/aussiebroadwan/authgateway/internal/gateway/service"
	"github.com/aussiebroadwan/authgateway/pkg/apierr"
	"github.com/aussiebroadwan/authgateway/pkg/authsdk"
	"github.com/aussiebroadwan/authgateway/pkg/httpx"
)

type RefreshHandler struct {
	Sessions *service.SessionService
	Jar      cookies.Jar
}

// ServeHTTP handles session rotation.
//
//	@Summary		Refresh the session
//	@Description	Rotates the session using the refresh-token cookie, or refreshToken in the body when no
//	@Description	cookie is present. Any failure clears both token cookies. Limited to 10 requests per minute.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	false	"Refresh token when not sent as a cookie"
//	@Success		200		{object}	authsdk.OKResponse		"Rotated"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Missing or invalid refresh token"
//	@Failure		413		{object}	authsdk.ErrorResponse	"Body too large"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limited"
//	@Router			/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, ok := h.Jar.Read(r, cookies.RefreshToken)
	if !ok && r.ContentLength != 0 {
		var req authsdk.RefreshRequest
		if err := httpx.DecodeJSON(w, r, &req); err != nil && apierr.IsKind(err, apierr.KindPayloadTooLarge) {
			httpx.WriteError(w, err)
			return
		}
		token = req.RefreshToken
	}

	tx := h.Jar.Begin(r)
	if err := h.Sessions.Refresh(r.Context(), tx, token); err != nil {
		tx.Rollback(w)
		httpx.WriteError(w, err)
		return
	}

	tx.Commit(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.OKResponse{OK: true})
}
