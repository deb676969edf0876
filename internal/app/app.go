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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/samber/do/v2"

	"github.com/vadim/supportbot/internal/auth"
	"github.com/vadim/supportbot/internal/config"
	httpcontroller "github.com/vadim/supportbot/internal/controller/http"
	"github.com/vadim/supportbot/internal/database"
	analyticspolicy "github.com/vadim/supportbot/internal/domain/analytics/policy"
	chatservice "github.com/vadim/supportbot/internal/domain/chat/service"
	intentservice "github.com/vadim/supportbot/internal/domain/intent/service"
	"github.com/vadim/supportbot/internal/httpx/response"
	"github.com/vadim/supportbot/internal/metrics"
)

// App is the main application container
type App struct {
	cfg        *config.Config
	httpServer *http.Server
	router     *chi.Mux
	logger     *slog.Logger
	injector   *do.RootScope

	// Handlers' dependencies, resolved from the injector
	chatService     *chatservice.Service
	intentService   *intentservice.Service
	analyticsPolicy *analyticspolicy.Policy
	tokens          *auth.TokenManager
	metrics         *metrics.Metrics
}

// NewApp creates and initializes the application
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)

	app := &App{
		cfg:      cfg,
		router:   r,
		logger:   logger,
		injector: injector,
	}

	// Initialize infrastructure
	if err := app.initInfrastructure(ctx); err != nil {
		app.shutdownInjector(context.Background())
		return nil, fmt.Errorf("initializing infrastructure: %w", err)
	}

	// Initialize domain layers
	if err := app.initDomains(ctx); err != nil {
		app.shutdownInjector(context.Background())
		return nil, fmt.Errorf("initializing domains: %w", err)
	}

	if err := app.registerRoutes(); err != nil {
		app.shutdownInjector(context.Background())
		return nil, fmt.Errorf("registering routes: %w", err)
	}

	app.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

// initInfrastructure connects to Postgres and the NLU agent eagerly so that
// misconfiguration fails at startup rather than on the first request
func (a *App) initInfrastructure(ctx context.Context) error {
	registerInfrastructure(a.injector)

	if _, err := do.Invoke[*database.Postgres](a.injector); err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "connected to postgres")

	m, err := do.Invoke[*metrics.Metrics](a.injector)
	if err != nil {
		return err
	}
	a.metrics = m

	tokens, err := do.Invoke[*auth.TokenManager](a.injector)
	if err != nil {
		return err
	}
	a.tokens = tokens

	return nil
}

// initDomains initializes domain layers (DAO, Service, Policy)
func (a *App) initDomains(ctx context.Context) error {
	registerDomains(a.injector)

	chat, err := do.Invoke[*chatservice.Service](a.injector)
	if err != nil {
		return err
	}
	a.chatService = chat

	intents, err := do.Invoke[*intentservice.Service](a.injector)
	if err != nil {
		return err
	}
	a.intentService = intents

	analytics, err := do.Invoke[*analyticspolicy.Policy](a.injector)
	if err != nil {
		return err
	}
	a.analyticsPolicy = analytics

	a.logger.InfoContext(ctx, "domains initialized",
		"dialogflow_project", a.cfg.Dialogflow.ProjectID,
		"s3_bucket", a.cfg.S3.Bucket,
	)
	return nil
}

// registerRoutes registers all HTTP routes
func (a *App) registerRoutes() error {
	a.router.Get("/healthz", a.healthHandler)
	a.router.Get("/readyz", a.readyHandler)
	a.router.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	swaggerHandler, err := httpcontroller.NewSwaggerHandler("Support Bot API", OpenAPISpec)
	if err != nil {
		return err
	}
	swaggerHandler.RegisterRoutes(a.router)

	a.router.Route("/api/v1", func(r chi.Router) {
		// Public chat widget
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(a.cfg.RateLimit.ChatRequests, a.cfg.RateLimit.Window))
			httpcontroller.NewChatHandler(a.chatService).RegisterRoutes(r)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(httprate.LimitByIP(a.cfg.RateLimit.ChatRequests, a.cfg.RateLimit.Window))
				httpcontroller.NewAuthHandler(a.tokens).RegisterRoutes(r)
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware(a.tokens))
				httpcontroller.NewAnalyticsHandler(a.analyticsPolicy).RegisterRoutes(r)
				httpcontroller.NewTranscriptHandler(a.chatService).RegisterRoutes(r)
				httpcontroller.NewIntentHandler(a.intentService).RegisterRoutes(r)
			})
		})
	})

	return nil
}

// healthHandler handles health check requests
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}

// readyHandler runs the health checks of every resolved service
func (a *App) readyHandler(w http.ResponseWriter, r *http.Request) {
	for name, err := range a.injector.HealthCheckWithContext(r.Context()) {
		if err != nil {
			a.logger.WarnContext(r.Context(), "readiness check failed", "service", name, "error", err)
			response.ServiceUnavailable(w, "not ready")
			return
		}
	}
	response.OK(w, map[string]string{"status": "ready"})
}

// Run starts the application and blocks until shutdown signal
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", "addr", a.cfg.Server.Address())
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.shutdownInjector(context.Background())
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		a.logger.Info("context cancelled")
	}

	return a.Shutdown(context.Background())
}

// Shutdown stops the HTTP server, then releases the pool and the NLU clients
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}

	if err := a.shutdownInjector(shutdownCtx); err != nil {
		return fmt.Errorf("releasing services: %w", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}

func (a *App) shutdownInjector(ctx context.Context) error {
	report := a.injector.ShutdownWithContext(ctx)
	if report != nil && !report.Succeed {
		a.logger.Error("service shutdown failed", "error", report.Error())
		return report
	}
	return nil
}
