package jwtx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/aussiebroadwan/authgateway/pkg/slogx"
	"go.opentelemetry.io/otel/attribute"
)

// maxDocumentBytes bounds discovery and JWKS response bodies.
const maxDocumentBytes = 1 << 20

// DefaultRefetchCooldown limits how often a RemoteKeySet refetches on an unknown kid.
const DefaultRefetchCooldown = 30 * time.Second

// KeyResolver returns the verification key for a token's kid.
type KeyResolver interface {
	ResolveKey(ctx context.Context, kid string) (any, error)
}

// RemoteKeySet resolves keys from one JWKS URL. The set is fetched on first
// use and refetched when a kid is unknown, at most once per cooldown.
type RemoteKeySet struct {
	url      string
	client   HTTPClient
	keys     *KeySet
	cooldown time.Duration
	now      func() time.Time

	mu        sync.Mutex
	fetchedAt time.Time
}

// NewRemoteKeySet returns a resolver for the JWKS at url.
func NewRemoteKeySet(client HTTPClient, url string) *RemoteKeySet {
	return &RemoteKeySet{
		url:      url,
		client:   client,
		keys:     NewKeySet(),
		cooldown: DefaultRefetchCooldown,
		now:      time.Now,
	}
}

// URL returns the JWKS location.
func (r *RemoteKeySet) URL() string { return r.url }

func (r *RemoteKeySet) ResolveKey(ctx context.Context, kid string) (any, error) {
	if key, err := r.keys.Get(kid); err == nil {
		return key, nil
	}

	if err := r.refresh(ctx); err != nil {
		return nil, err
	}

	key, err := r.keys.Get(kid)
	if err != nil {
		return nil, fmt.Errorf("%w %q at %s", ErrUnknownKID, kid, r.url)
	}
	return key, nil
}

func (r *RemoteKeySet) refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.fetchedAt.IsZero() && r.now().Sub(r.fetchedAt) < r.cooldown {
		return nil
	}

	var jwks JWKS
	if err := fetchJSON(ctx, r.client, r.url, &jwks); err != nil {
		return err
	}
	if err := r.keys.ResetFromJWKS(jwks); err != nil {
		return fmt.Errorf("jwtx: %s: %w", r.url, err)
	}
	r.fetchedAt = r.now()

	slogx.FromContext(ctx).Debug("jwks fetched", "url", r.url, "keys", r.keys.Len())
	return nil
}

// Candidate is one key source considered by a ProbingResolver.
type Candidate struct {
	URL      string
	Resolver KeyResolver
}

// ProbingResolver tries candidates in order and pins the first one that
// resolves a key. Once pinned, no other candidate is probed again for the
// lifetime of the resolver.
type ProbingResolver struct {
	load func(context.Context) []Candidate

	mu         sync.Mutex
	loaded     bool
	candidates []Candidate
	pinned     *Candidate
}

// NewProbingResolver probes a fixed candidate list.
func NewProbingResolver(candidates ...Candidate) *ProbingResolver {
	return &ProbingResolver{
		loaded:     true,
		candidates: candidates,
	}
}

// NewLazyProbingResolver builds its candidate list on the first ResolveKey call.
func NewLazyProbingResolver(load func(context.Context) []Candidate) *ProbingResolver {
	return &ProbingResolver{load: load}
}

func (p *ProbingResolver) ResolveKey(ctx context.Context, kid string) (any, error) {
	p.mu.Lock()
	if pinned := p.pinned; pinned != nil {
		p.mu.Unlock()
		return pinned.Resolver.ResolveKey(ctx, kid)
	}
	defer p.mu.Unlock()

	ctx, span := startSpan(ctx, "jwtx.ProbeKeySets")
	var err error
	defer func() { finishSpan(span, err) }()

	if !p.loaded {
		p.candidates = p.load(ctx)
		// A cancelled first caller must not freeze an incomplete list.
		p.loaded = ctx.Err() == nil
	}

	log := slogx.FromContext(ctx)
	err = ErrNoCandidates
	for i := range p.candidates {
		c := p.candidates[i]

		key, resolveErr := c.Resolver.ResolveKey(ctx, kid)
		if resolveErr != nil {
			log.Debug("jwks candidate failed", "url", c.URL, "err", resolveErr)
			err = fmt.Errorf("%w: %w", ErrNoCandidates, resolveErr)
			continue
		}

		p.pinned = &c
		span.SetAttributes(attribute.String("jwks.url", c.URL))
		log.Info("jwks endpoint pinned", "url", c.URL)
		err = nil
		return key, nil
	}

	return nil, err
}

// Pinned returns the URL of the pinned candidate, if any.
func (p *ProbingResolver) Pinned() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pinned == nil {
		return "", false
	}
	return p.pinned.URL, true
}

// fetchJSON GETs url and decodes a size-limited 2xx JSON body into dst.
func fetchJSON(ctx context.Context, client HTTPClient, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("jwtx: build request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("jwtx: fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDocumentBytes))
		return fmt.Errorf("jwtx: fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDocumentBytes)).Decode(dst); err != nil {
		return fmt.Errorf("jwtx: decode %s: %w", url, err)
	}
	return nil
}
