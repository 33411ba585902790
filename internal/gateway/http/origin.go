package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/authgateway/internal/gateway/service"
)

// OriginPolicy picks the web origin that auth-flow redirects are sent to.
type OriginPolicy struct {
	Allowed             []string
	TrustForwardedProto bool
}

// Resolve returns an allowed origin for r; see service.ResolveWebOrigin.
func (p OriginPolicy) Resolve(r *http.Request) string {
	return service.ResolveWebOrigin(p.candidates(r), p.Allowed)
}

// candidates in priority order: Origin, the Referer's origin, then the
// request's own scheme://host.
func (p OriginPolicy) candidates(r *http.Request) []string {
	out := make([]string, 0, 3)
	if o := service.OriginOf(r.Header.Get("Origin")); o != "" {
		out = append(out, o)
	}
	if o := service.OriginOf(r.Referer()); o != "" {
		out = append(out, o)
	}
	if r.Host != "" {
		out = append(out, p.scheme(r)+"://"+r.Host)
	}
	return out
}

func (p OriginPolicy) scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if p.TrustForwardedProto && strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https") {
		return "https"
	}
	return "http"
}
