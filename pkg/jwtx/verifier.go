package jwtx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/attribute"
)

// Verifier validates an access token and returns the identity it carries.
// A nil error does not authorise anything: callers must still check that
// Identity.Subject is non-empty.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// Mode reports how a JWTVerifier obtains its verification key.
type Mode string

const (
	ModeSharedSecret Mode = "shared_secret"
	ModeKeySet       Mode = "key_set"
)

const (
	// DefaultLeeway tolerates clock skew on exp/nbf/iat.
	DefaultLeeway = 5 * time.Second

	// IssuerSuffix is appended to the provider origin to form the expected issuer.
	IssuerSuffix = "/auth/v1"
)

var (
	ErrInvalidToken = errors.New("jwtx: invalid token")
	ErrUnknownKID   = errors.New("jwtx: unknown kid")
	ErrKeyType      = errors.New("jwtx: key type does not match algorithm")
	ErrNoCandidates = errors.New("jwtx: no key set candidate resolved a key")
	ErrConfig       = errors.New("jwtx: invalid verifier configuration")
)

// HTTPClient is the subset of *http.Client used for discovery and key fetches.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Options configures NewVerifier.
type Options struct {
	// ProviderURL is the provider origin, e.g. https://abc.supabase.co.
	ProviderURL string

	// Audience the token must carry. Empty disables the audience check.
	Audience string

	// Secret enables shared-secret mode.
	Secret string

	// Algorithms overrides the accepted "alg" values.
	Algorithms []string

	// Leeway defaults to DefaultLeeway.
	Leeway time.Duration

	// HTTPClient is used in key-set mode. Defaults to a client with a 10s timeout.
	HTTPClient HTTPClient

	// Resolver replaces discovery in key-set mode.
	Resolver KeyResolver
}

// JWTVerifier verifies provider-issued JWTs either against a shared secret or
// a lazily discovered key set.
type JWTVerifier struct {
	mode       Mode
	issuer     string
	algorithms []string
	parser     *jwt.Parser
	keyfunc    func(ctx context.Context) jwt.Keyfunc
	resolver   KeyResolver
}

// Issuer derives the expected "iss" claim from the provider origin.
func Issuer(providerURL string) string {
	return strings.TrimRight(providerURL, "/") + IssuerSuffix
}

// DefaultAlgorithms picks the accepted algorithms when none are configured.
func DefaultAlgorithms(secret string) []string {
	if secret != "" {
		return []string{jwt.SigningMethodHS256.Alg()}
	}
	return []string{jwt.SigningMethodRS256.Alg(), jwt.SigningMethodES256.Alg()}
}

// NewVerifier builds a verifier. Key-set mode does no network I/O until the
// first Verify call.
func NewVerifier(opts Options) (*JWTVerifier, error) {
	if strings.TrimSpace(opts.ProviderURL) == "" {
		return nil, fmt.Errorf("%w: provider url is required", ErrConfig)
	}

	v := &JWTVerifier{
		issuer:     Issuer(opts.ProviderURL),
		algorithms: opts.Algorithms,
	}
	if len(v.algorithms) == 0 {
		v.algorithms = DefaultAlgorithms(opts.Secret)
	}

	leeway := opts.Leeway
	if leeway == 0 {
		leeway = DefaultLeeway
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods(v.algorithms),
		jwt.WithIssuer(v.issuer),
		jwt.WithLeeway(leeway),
	}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience))
	}
	v.parser = jwt.NewParser(parserOpts...)

	if opts.Secret != "" {
		v.mode = ModeSharedSecret
		v.keyfunc = hmacKeyfunc([]byte(opts.Secret))
		return v, nil
	}

	v.mode = ModeKeySet
	v.resolver = opts.Resolver
	if v.resolver == nil {
		client := opts.HTTPClient
		if client == nil {
			client = &http.Client{Timeout: 10 * time.Second}
		}
		v.resolver = NewDiscoveringResolver(client, opts.ProviderURL)
	}
	v.keyfunc = keySetKeyfunc(v.resolver)
	return v, nil
}

// Mode returns the verification mode.
func (v *JWTVerifier) Mode() Mode { return v.mode }

// Algorithms returns the accepted algorithms.
func (v *JWTVerifier) Algorithms() []string { return v.algorithms }

// ExpectedIssuer returns the required "iss" value.
func (v *JWTVerifier) ExpectedIssuer() string { return v.issuer }

// Resolver returns the key resolver, nil in shared-secret mode.
func (v *JWTVerifier) Resolver() KeyResolver { return v.resolver }

// Verify checks signature, algorithm, issuer, audience and time claims.
// Every failure wraps ErrInvalidToken.
func (v *JWTVerifier) Verify(ctx context.Context, raw string) (id Identity, err error) {
	ctx, span := startSpan(ctx, "jwtx.Verify", attribute.String("jwt.mode", string(v.mode)))
	defer func() { finishSpan(span, err) }()

	if raw == "" {
		return Identity{}, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	claims := jwt.MapClaims{}
	token, err := v.parser.ParseWithClaims(raw, claims, v.keyfunc(ctx))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Identity{}, fmt.Errorf("%w: token not valid", ErrInvalidToken)
	}

	return identityFromClaims(claims), nil
}
