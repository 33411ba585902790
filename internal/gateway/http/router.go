package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/authgateway/internal/gateway/cookies"
	"github.com/aussiebroadwan/authgateway/internal/gateway/service"
	"github.com/aussiebroadwan/authgateway/pkg/httpx"
	"github.com/aussiebroadwan/authgateway/pkg/jwtx"
	"github.com/aussiebroadwan/authgateway/pkg/slogx"

	_ "github.com/aussiebroadwan/authgateway/api/gateway" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Default fixed-window limits per client and path.
const (
	DefaultRegisterLimit   = 3
	DefaultLoginLimit      = 5
	DefaultRefreshLimit    = 10
	DefaultRateLimitWindow = time.Minute
)

// Pinger reports whether the identity provider is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KeySetStatus is implemented by resolvers that pin a key set lazily.
type KeySetStatus interface {
	Pinned() (string, bool)
}

// Config carries the HTTP-facing settings.
type Config struct {
	AllowedOrigins      []string
	TrustForwardedProto bool

	RegisterLimit   int
	LoginLimit      int
	RefreshLimit    int
	RateLimitWindow time.Duration

	BuildVersion string
}

func (c Config) withDefaults() Config {
	if c.RegisterLimit <= 0 {
		c.RegisterLimit = DefaultRegisterLimit
	}
	if c.LoginLimit <= 0 {
		c.LoginLimit = DefaultLoginLimit
	}
	if c.RefreshLimit <= 0 {
		c.RefreshLimit = DefaultRefreshLimit
	}
	if c.RateLimitWindow <= 0 {
		c.RateLimitWindow = DefaultRateLimitWindow
	}
	return c
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	cfg       Config
	jar       cookies.Jar
	verifier  jwtx.Verifier
	limiter   *httpx.FixedWindowLimiter
	startTime time.Time
	logger    *slog.Logger

	Sessions *service.SessionService

	// Upstream is checked by /readyz; nil skips the check.
	Upstream Pinger

	// KeySet reports key pinning on /readyz; nil means shared-secret mode.
	KeySet KeySetStatus
}

func NewRouter(
	cfg Config,
	jar cookies.Jar,
	verifier jwtx.Verifier,
	limiter *httpx.FixedWindowLimiter,
	logger *slog.Logger,
) *Router {
	if limiter == nil {
		limiter = httpx.NewFixedWindowLimiter()
	}
	r := &Router{
		Mux:       http.NewServeMux(),
		cfg:       cfg.withDefaults(),
		jar:       jar,
		verifier:  verifier,
		limiter:   limiter,
		startTime: time.Now(),
		logger:    logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSession()
	r.registerProfile()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpx.Chain(httpSwagger.Handler(), httpx.RateLimitByClient(httpx.PublicLimit)))
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Auth Gateway API
//	@version		0.1.0
//	@description	Backend-for-frontend authentication gateway. Sessions live in HttpOnly cookies
//	@description	named sb-{projectRef}-{access-token|refresh-token|code-verifier}; access tokens are
//	@description	verified locally against the provider's shared secret or published key set.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/authgateway
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Access token. Format: "Bearer {token}". The access-token cookie is accepted instead.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSession() {
	window := r.cfg.RateLimitWindow

	// POST /auth/register - 3 per window per client
	register := &RegisterHandler{Sessions: r.Sessions, Jar: r.jar, Origins: r.origins()}
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(register,
			httpx.FixedWindow(r.limiter, r.cfg.RegisterLimit, window),
		),
	)

	// POST /auth/login - brute-force protection
	login := &LoginHandler{Sessions: r.Sessions, Jar: r.jar}
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(login,
			httpx.FixedWindow(r.limiter, r.cfg.LoginLimit, window),
		),
	)

	refresh := &RefreshHandler{Sessions: r.Sessions, Jar: r.jar}
	r.Mux.Handle("POST /auth/refresh",
		httpx.Chain(refresh,
			httpx.FixedWindow(r.limiter, r.cfg.RefreshLimit, window),
		),
	)

	r.Mux.Handle("POST /auth/signout", &SignoutHandler{Sessions: r.Sessions, Jar: r.jar})

	r.Mux.Handle("GET /auth/callback", &CallbackHandler{Sessions: r.Sessions, Jar: r.jar, Origins: r.origins()})
}

func (r *Router) registerProfile() {
	h := &MeHandler{Sessions: r.Sessions}

	secured := httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier, r.jar.Name(cookies.AccessToken)),
		httpx.RequireRole("authenticated", "service_role"),
		httpx.RateLimitBySubject(httpx.ModerateLimit),
	)

	r.Mux.Handle("GET /auth/me", secured)
	r.Mux.Handle("OPTIONS /auth/me", secured)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.cfg.BuildVersion),
			httpx.RateLimitByClient(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.cfg.BuildVersion, r.Upstream, r.KeySet),
			httpx.RateLimitByClient(httpx.LenientLimit),
		),
	)
}

func (r *Router) origins() OriginPolicy {
	return OriginPolicy{
		Allowed:             r.cfg.AllowedOrigins,
		TrustForwardedProto: r.cfg.TrustForwardedProto,
	}
}
