package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/taskly/taskly/internal/auth"
	"github.com/taskly/taskly/internal/handler"
	"github.com/taskly/taskly/internal/metrics"
	"github.com/taskly/taskly/internal/middleware"
	"github.com/taskly/taskly/internal/service"
)

// RouterConfig carries everything the HTTP surface needs.
type RouterConfig struct {
	Logger   *slog.Logger
	Auth     *service.AuthService
	Tasks    *service.TaskService
	Sessions *auth.Sessions
	Tokens   *auth.TokenManager
	Metrics  *metrics.InMemoryRecorder

	// Readiness probes. Cache may be nil.
	DB    handler.HealthChecker
	Cache handler.HealthChecker

	IsDevelopment      bool
	CORSAllowedOrigins []string
	MaxRequestBodySize int64
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var recorder metrics.Recorder = metrics.NewNoop()
	var snapshotter metrics.Snapshotter
	if cfg.Metrics != nil {
		recorder = cfg.Metrics
		snapshotter = cfg.Metrics
	}

	h := handler.New()
	healthHandler := handler.NewHealthHandler(cfg.DB, cfg.Cache, logger)
	metricsHandler := handler.NewMetricsHandler(snapshotter)
	authHandler := handler.NewAuthHandler(cfg.Auth, cfg.Sessions, logger)
	taskHandler := handler.NewTaskHandler(cfg.Tasks, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.CORS(corsCfg))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	}

	// Health and info endpoints (no session required)
	r.Get("/", h.Hello)
	r.Get("/health", healthHandler.Health)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	requireSession := middleware.RequireSession(middleware.SessionConfig{
		Logger:   logger,
		Sessions: cfg.Sessions,
		Tokens:   cfg.Tokens,
		Metrics:  recorder,
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.With(requireSession).Get("/me", authHandler.Me)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(requireSession)
			r.Get("/", taskHandler.List)
			r.Post("/", taskHandler.Create)
			r.Put("/{id}", taskHandler.Update)
			r.Delete("/{id}", taskHandler.Delete)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
