package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/authgateway/internal/gateway/cookies"
	httpapi "github.com/aussiebroadwan/authgateway/internal/gateway/http"
	"github.com/aussiebroadwan/authgateway/internal/gateway/service"
	"github.com/aussiebroadwan/authgateway/internal/gateway/upstream"
	"github.com/aussiebroadwan/authgateway/pkg/httpx"
	"github.com/aussiebroadwan/authgateway/pkg/jwtx"
	"github.com/aussiebroadwan/authgateway/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application wires the gateway's dependencies and owns the HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	provider *upstream.Client
	verifier *jwtx.JWTVerifier
	limiter  *httpx.FixedWindowLimiter
	sessions *service.SessionService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-gateway",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initAuth(); err != nil {
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the routed handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the server and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("auth gateway starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"mode", app.verifier.Mode(),
		"provider", app.cfg.ProviderURL,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests within the grace period.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
		return err
	}

	app.logger.Info("auth gateway stopped")
	return nil
}

func (app *Application) initAuth() error {
	app.provider = upstream.NewClient(app.cfg.ProviderURL, app.cfg.AnonKey, app.cfg.UpstreamTimeout)

	verifier, err := jwtx.NewVerifier(jwtx.Options{
		ProviderURL: app.cfg.ProviderURL,
		Audience:    app.cfg.JWTAudience,
		Secret:      app.cfg.JWTSecret,
		Algorithms:  app.cfg.JWTAlgorithms,
		HTTPClient:  &http.Client{Timeout: app.cfg.UpstreamTimeout},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	app.verifier = verifier

	app.limiter = httpx.NewFixedWindowLimiter()
	app.sessions = &service.SessionService{Provider: app.provider}

	app.logger.Info("token verifier ready",
		"mode", verifier.Mode(),
		"issuer", verifier.ExpectedIssuer(),
		"algorithms", verifier.Algorithms(),
	)
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		httpapi.Config{
			AllowedOrigins:      app.cfg.AllowedOrigins,
			TrustForwardedProto: app.cfg.TrustForwardedProto,
			RegisterLimit:       app.cfg.RegisterLimit,
			LoginLimit:          app.cfg.LoginLimit,
			RefreshLimit:        app.cfg.RefreshLimit,
			RateLimitWindow:     app.cfg.RateLimitWindow,
			BuildVersion:        BuildVersion,
		},
		cookies.Jar{
			ProjectRef:          app.cfg.ProjectRef,
			Domain:              app.cfg.CookieDomain,
			TrustForwardedProto: app.cfg.TrustForwardedProto,
		},
		app.verifier,
		app.limiter,
		app.logger,
	)

	router.Sessions = app.sessions
	router.Upstream = app.provider
	if status, ok := app.verifier.Resolver().(httpapi.KeySetStatus); ok {
		router.KeySet = status
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
