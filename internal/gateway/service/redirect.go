package service

import (
	"net/url"
	"slices"
	"strings"
)

// LocalOrigin is used when no web origin is configured.
const LocalOrigin = "http://localhost:3000"

// SafeNext returns candidate when it is a same-origin path and "/" otherwise.
// Protocol-relative ("//host") and backslash ("/\host") forms are rejected
// because browsers resolve both to another host.
func SafeNext(candidate string) string {
	if !strings.HasPrefix(candidate, "/") ||
		strings.HasPrefix(candidate, "//") ||
		strings.HasPrefix(candidate, `/\`) {
		return "/"
	}
	return candidate
}

// ResolveWebOrigin returns the first candidate present in allowed, falling
// back to allowed[0] and then LocalOrigin. It never returns an origin that is
// not configured.
func ResolveWebOrigin(candidates, allowed []string) string {
	for _, c := range candidates {
		if c != "" && slices.Contains(allowed, c) {
			return c
		}
	}
	if len(allowed) > 0 {
		return allowed[0]
	}
	return LocalOrigin
}

// OriginOf reduces a URL to scheme://host, or "" when it has neither.
func OriginOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func callbackURL(origin, next string) string {
	return origin + "/auth/callback?next=" + url.QueryEscape(next)
}

func errorRedirect(origin, msg string) string {
	return origin + "?" + url.Values{"error": {msg}}.Encode()
}
