// Package api provides the HTTP API for CycleRoute.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/cycleroute/cycleroute/internal/api/handler"
	"github.com/cycleroute/cycleroute/internal/api/middleware"
	"github.com/cycleroute/cycleroute/internal/auth"
	"github.com/cycleroute/cycleroute/internal/provider/resilience"
	"github.com/cycleroute/cycleroute/internal/route"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version      string
	BuildTime    string
	Logger       zerolog.Logger
	ServiceName  string
	Metrics      *middleware.Metrics
	RouteService *route.Service
	Store        route.Store
	Registry     *resilience.Registry
	Pool         *pgxpool.Pool

	// JWTService, when set, protects mutating route endpoints with bearer
	// token authentication. Nil leaves the API open (local development).
	JWTService *auth.JWTService
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "cycleroute-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry, cfg.Pool)
	routeHandler := handler.NewRouteHandler(cfg.RouteService, cfg.Store)

	computeRateLimit := middleware.RateLimitByIP(middleware.ComputeRateLimit)   // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Route endpoints
		r.Route("/routes", func(r chi.Router) {
			if cfg.JWTService != nil {
				r.Use(middleware.Auth(cfg.JWTService))
			}

			// Computation is expensive, strict rate limiting
			r.With(computeRateLimit).Post("/", routeHandler.ComputeRoute)

			r.With(standardRateLimit).Get("/", routeHandler.ListRoutes)

			r.Route("/{routeId}", func(r chi.Router) {
				r.Use(standardRateLimit)
				r.Get("/", routeHandler.GetRoute)
				r.Delete("/", routeHandler.DeleteRoute)
				r.Post("/favorite", routeHandler.ToggleFavorite)
				r.Get("/export", routeHandler.ExportRoute)
			})
		})
	})

	return r
}
