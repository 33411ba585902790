package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Env                 string        `env:"ENV"                   envDefault:"dev"`  // dev, staging, prod
	LogLevel            string        `env:"LOG_LEVEL"             envDefault:"info"` // debug, info, warn, error
	LogFormat           string        `env:"LOG_FORMAT"            envDefault:"json"` // json, text
	Port                int           `env:"PORT"                  envDefault:"8080"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`

	// ProviderURL is the identity provider's base URL, e.g. https://abc.supabase.co.
	ProviderURL string `env:"GATEWAY_PROVIDER_URL,required"`
	AnonKey     string `env:"GATEWAY_PROVIDER_ANON_KEY"`

	// ProjectRef names the cookies; defaults to the first label of the provider host.
	ProjectRef string `env:"GATEWAY_PROJECT_REF"`

	// JWTSecret selects shared-secret verification; empty means key-set mode.
	JWTSecret     string   `env:"GATEWAY_JWT_SECRET"`
	JWTAudience   string   `env:"GATEWAY_JWT_AUDIENCE"   envDefault:"authenticated"`
	JWTAlgorithms []string `env:"GATEWAY_JWT_ALGORITHMS" envSeparator:","`

	AllowedOrigins      []string      `env:"GATEWAY_ALLOWED_ORIGINS"       envSeparator:","`
	CookieDomain        string        `env:"GATEWAY_COOKIE_DOMAIN"`
	TrustForwardedProto bool          `env:"GATEWAY_TRUST_FORWARDED_PROTO"`
	UpstreamTimeout     time.Duration `env:"GATEWAY_UPSTREAM_TIMEOUT"      envDefault:"10s"`

	RegisterLimit   int           `env:"GATEWAY_RATELIMIT_REGISTER" envDefault:"3"`
	LoginLimit      int           `env:"GATEWAY_RATELIMIT_LOGIN"    envDefault:"5"`
	RefreshLimit    int           `env:"GATEWAY_RATELIMIT_REFRESH"  envDefault:"10"`
	RateLimitWindow time.Duration `env:"GATEWAY_RATELIMIT_WINDOW"   envDefault:"1m"`
}

// LoadConfig reads the environment and fills derived defaults.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.ProviderURL = strings.TrimRight(strings.TrimSpace(c.ProviderURL), "/")
	u, err := url.Parse(c.ProviderURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: GATEWAY_PROVIDER_URL must be an absolute URL", ErrInvalidConfig)
	}

	if c.ProjectRef == "" {
		c.ProjectRef = ProjectRefFromHost(u.Hostname())
	}
	if c.ProjectRef == "" {
		return fmt.Errorf("%w: GATEWAY_PROJECT_REF could not be derived", ErrInvalidConfig)
	}

	c.AllowedOrigins = trimAll(c.AllowedOrigins)
	for i, o := range c.AllowedOrigins {
		c.AllowedOrigins[i] = strings.TrimRight(o, "/")
	}
	c.JWTAlgorithms = trimAll(c.JWTAlgorithms)
	return nil
}

// ProjectRefFromHost returns the first DNS label: "abc.supabase.co" gives "abc".
func ProjectRefFromHost(host string) string {
	label, _, _ := strings.Cut(host, ".")
	return label
}

func trimAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
