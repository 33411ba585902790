package http

import (
	"net/http"

	"github.com/aussiebroadwan/authgateway/internal/gateway/service"
	"github.com/aussiebroadwan/authgateway/pkg/apierr"
	"github.com/aussiebroadwan/authgateway/pkg/authsdk"
	"github.com/aussiebroadwan/authgateway/pkg/httpx"
	"github.com/aussiebroadwan/authgateway/pkg/slogx"
)

type MeHandler struct {
	Sessions *service.SessionService
}

// ServeHTTP returns the caller's profile.
//
//	@Summary		Current user
//	@Description	Returns the verified identity plus the email held by the provider.
//	@Tags			Session
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.ProfileResponse	"Profile"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Missing or invalid access token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Role not allowed"
//	@Failure		500	{object}	authsdk.ErrorResponse	"Provider unavailable"
//	@Router			/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ac, ok := httpx.AuthFromContext(ctx)
	if !ok {
		httpx.WriteError(w, apierr.ErrInvalidToken)
		return
	}

	prof, err := h.Sessions.Me(ctx, ac.Identity, ac.AccessToken)
	if err != nil {
		slogx.FromContext(ctx).Warn("failed to load user", "err", err)
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.ProfileResponse{
		ID:       prof.ID,
		Email:    prof.Email,
		Role:     prof.Role,
		Audience: prof.Audience,
	})
}
