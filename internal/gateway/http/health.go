package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/authgateway/pkg/authsdk"
	"github.com/aussiebroadwan/authgateway/pkg/httpx"
)

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe endpoint returning basic service health status, uptime, and version information
//	@Description	This endpoint always returns 200 OK if the service is running
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint reporting whether the identity provider is reachable
//	@Description	and whether a key set has been pinned yet (informational only)
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, upstream Pinger, keys KeySetStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{
			Upstream: "ok",
			KeySet:   "shared_secret",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if upstream != nil {
			if err := upstream.Ping(r.Context()); err != nil {
				checks.Upstream = "error: unreachable"
				overallStatus = "degraded"
				statusCode = http.StatusServiceUnavailable
			}
		}

		if keys != nil {
			checks.KeySet = "pending"
			if _, ok := keys.Pinned(); ok {
				checks.KeySet = "pinned"
			}
		}

		httpx.WriteJSON(w, statusCode, authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
