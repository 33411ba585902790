package jwtx

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/authgateway/pkg/slogx"
)

var errNoJWKSURI = errors.New("jwtx: discovery document has no jwks_uri")

type discoveryDocument struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

// DiscoveryURLs lists the metadata documents tried for jwks_uri, in order:
// the authorization-server document, then the OIDC one.
func DiscoveryURLs(providerURL string) []string {
	issuer := Issuer(providerURL)
	return []string{
		issuer + "/.well-known/oauth-authorization-server",
		issuer + "/.well-known/openid-configuration",
	}
}

// FallbackJWKSURLs are the conventional key set locations probed after any
// discovered URI.
func FallbackJWKSURLs(providerURL string) []string {
	origin := strings.TrimRight(providerURL, "/")
	issuer := Issuer(providerURL)
	return []string{
		issuer + "/.well-known/jwks.json",
		issuer + "/jwks",
		origin + "/.well-known/jwks.json",
	}
}

// DiscoverJWKSURI returns jwks_uri from the first discovery document that
// answers 2xx with valid JSON naming one.
func DiscoverJWKSURI(ctx context.Context, client HTTPClient, providerURL string) (string, error) {
	var errs []error
	for _, u := range DiscoveryURLs(providerURL) {
		var doc discoveryDocument
		if err := fetchJSON(ctx, client, u, &doc); err != nil {
			errs = append(errs, err)
			continue
		}
		if doc.JWKSURI == "" {
			errs = append(errs, fmt.Errorf("%w: %s", errNoJWKSURI, u))
			continue
		}
		return doc.JWKSURI, nil
	}
	return "", errors.Join(errs...)
}

// CandidateURLs puts discovered first, then the fallbacks, without duplicates.
func CandidateURLs(discovered string, fallbacks []string) []string {
	seen := make(map[string]struct{}, len(fallbacks)+1)
	out := make([]string, 0, len(fallbacks)+1)
	for _, u := range append([]string{discovered}, fallbacks...) {
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// NewDiscoveringResolver returns a ProbingResolver whose candidates come from
// discovery plus the fallback list, computed on first use.
func NewDiscoveringResolver(client HTTPClient, providerURL string) *ProbingResolver {
	return NewLazyProbingResolver(func(ctx context.Context) []Candidate {
		log := slogx.FromContext(ctx)

		discovered, err := DiscoverJWKSURI(ctx, client, providerURL)
		if err != nil {
			log.Warn("jwks discovery failed, using fallbacks", "err", err)
		}

		urls := CandidateURLs(discovered, FallbackJWKSURLs(providerURL))
		candidates := make([]Candidate, 0, len(urls))
		for _, u := range urls {
			candidates = append(candidates, Candidate{URL: u, Resolver: NewRemoteKeySet(client, u)})
		}
		return candidates
	})
}
