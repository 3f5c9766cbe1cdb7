// Package main provides the entrypoint for the CycleRoute API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/cycleroute/cycleroute/internal/api"
	"github.com/cycleroute/cycleroute/internal/api/middleware"
	"github.com/cycleroute/cycleroute/internal/auth"
	"github.com/cycleroute/cycleroute/internal/database"
	"github.com/cycleroute/cycleroute/internal/provider/resilience"
	"github.com/cycleroute/cycleroute/internal/route"
	"github.com/cycleroute/cycleroute/internal/route/offline"
	"github.com/cycleroute/cycleroute/internal/route/openrouteservice"
	"github.com/cycleroute/cycleroute/internal/route/osrm"
	"github.com/cycleroute/cycleroute/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// buildProviders assembles the provider fallback chain in priority order from
// the environment. The offline estimator is always last so computation
// degrades instead of failing; OFFLINE_ONLY makes it the sole provider,
// skipping the remote adapters entirely.
func buildProviders(log zerolog.Logger, registry *resilience.Registry) []route.Provider {
	if os.Getenv("OFFLINE_ONLY") == "true" {
		log.Info().Msg("offline-only mode: remote providers disabled")
		return []route.Provider{offline.NewEstimator(log)}
	}

	var providers []route.Provider
	if apiKey := os.Getenv("ORS_API_KEY"); apiKey != "" {
		providers = append(providers, openrouteservice.NewClient(openrouteservice.ClientConfig{
			APIKey:   apiKey,
			BaseURL:  os.Getenv("ORS_BASE_URL"),
			Registry: registry,
			Logger:   log,
		}))
		log.Info().Msg("openrouteservice provider configured")
	} else {
		log.Warn().Msg("ORS_API_KEY not set - openrouteservice provider disabled")
	}
	if os.Getenv("OSRM_DISABLED") != "true" {
		providers = append(providers, osrm.NewClient(osrm.ClientConfig{
			BaseURL:  os.Getenv("OSRM_BASE_URL"),
			Registry: registry,
			Logger:   log,
		}))
		log.Info().Msg("osrm provider configured")
	}
	return append(providers, offline.NewEstimator(log))
}

func main() {
	const serviceName = "cycleroute-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting CycleRoute API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Pick the route store: Postgres when configured, otherwise in-memory.
	codec := route.NewCodec(log)
	var store route.Store
	var pool *pgxpool.Pool
	if os.Getenv("DB_ENABLED") == "true" {
		dbConfig := database.ConfigFromEnv()
		p, err := database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer p.Close()
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")
		store = route.NewPostgresStore(p, codec)
		pool = p
	} else {
		store = route.NewInMemoryStore()
		log.Info().Msg("using in-memory route store")
	}

	// Provider registry tracks circuit breaker health for the ops endpoint.
	registry := resilience.NewRegistry()

	providers := buildProviders(log, registry)

	// Proximity cache avoids provider calls for near-identical requests.
	cache := route.NewCache(route.CacheConfig{Logger: log})

	routeService := route.NewService(route.ServiceConfig{
		Providers: providers,
		Scorer:    route.NewScorer(nil),
		Cache:     cache,
		Store:     store,
		Logger:    log,
	})
	log.Info().Int("providers", len(providers)).Msg("route service initialized")

	// Drain the coordinator event stream into the log.
	go func() {
		for ev := range routeService.Events() {
			evt := log.Debug().
				Str("kind", string(ev.Kind)).
				Str("request_id", ev.RequestID).
				Str("provider", ev.Provider)
			if ev.Err != nil {
				evt = evt.AnErr("error", ev.Err)
			}
			evt.Msg("route event")
		}
	}()

	// SIGUSR1 trims the route working set, the host's memory pressure hook.
	pressure := make(chan os.Signal, 1)
	signal.Notify(pressure, syscall.SIGUSR1)
	go func() {
		for range pressure {
			routeService.OnMemoryPressure()
		}
	}()

	// JWT auth is optional; without a signing key the API runs open.
	var jwtService *auth.JWTService
	if signingKey := os.Getenv("JWT_SIGNING_KEY"); signingKey != "" {
		jwtService = auth.NewJWTService(auth.JWTConfig{SigningKey: signingKey})
		log.Info().Msg("JWT authentication enabled")
	} else {
		log.Warn().Msg("JWT_SIGNING_KEY not set - API running without authentication")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:      Version,
		BuildTime:    BuildTime,
		Logger:       log,
		ServiceName:  serviceName,
		Metrics:      metrics,
		RouteService: routeService,
		Store:        store,
		Registry:     registry,
		Pool:         pool,
		JWTService:   jwtService,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
