package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/pratik-mahalle/linkboost/internal/api/handlers"
	"github.com/pratik-mahalle/linkboost/internal/api/middleware"
	"github.com/pratik-mahalle/linkboost/internal/config"
	"github.com/pratik-mahalle/linkboost/internal/domain/user"
	"github.com/pratik-mahalle/linkboost/internal/pkg/logger"
	"github.com/pratik-mahalle/linkboost/internal/pkg/metrics"
)

type Handlers struct {
	Health  *handlers.HealthHandler
	Metrics *handlers.MetricsHandler
	Proxy   *handlers.ProxyHandler
}

// New builds the API router. limiter may be nil to disable rate limiting.
func New(cfg *config.Config, log *logger.Logger, h *Handlers, limiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(metrics.Middleware)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.FrontendCORS(cfg.Server.FrontendURL))
	if limiter != nil {
		r.Use(limiter.Middleware)
	}

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/swagger/*", httpSwagger.WrapHandler)
		r.Handle("/metrics", metrics.Handler())

		// Health checks
		r.Get(cfg.Health.Endpoint, h.Health.Health)
		if cfg.Health.Endpoint != "/health" {
			r.Get("/health", h.Health.Health)
		}
		r.Get("/healthz", h.Health.Healthz)

		// Predictions proxy; the analytics service authenticates the caller
		r.HandleFunc("/api/v1/predictions/*", h.Proxy.Predictions)

		// Auth proxy
		r.Get("/api/v1/auth", h.Proxy.AuthAction)
		r.Post("/api/v1/auth", h.Proxy.AuthAction)
		r.Post("/api/v1/auth/login", h.Proxy.Gateway)
		r.Post("/api/v1/auth/register", h.Proxy.Gateway)
		r.Post("/api/v1/auth/refresh", h.Proxy.Gateway)
		r.Get("/api/v1/auth/verify", h.Proxy.Gateway)
		r.Get("/api/v1/auth/linkedin/url", h.Proxy.Gateway)
		r.Post("/api/v1/auth/linkedin/disconnect", h.Proxy.Gateway)
	})

	// Protected routes (require authentication)
	r.Route("/api/v1/metrics", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSubscription(user.LevelBasic))
			r.Post("/profile", h.Metrics.RecordProfile)
			r.Post("/engagement", h.Metrics.RecordEngagement)
			r.Get("/dashboard", h.Metrics.Dashboard)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSubscription(user.LevelPremium))
			r.Get("/analytics", h.Metrics.Analytics)
			r.Get("/time-range", h.Metrics.TimeRange)
		})
	})

	return r
}
