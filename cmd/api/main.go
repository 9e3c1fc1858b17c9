// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

// Command api is the entry point for the Vaultgate HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire domain services and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tdnguyen/vaultgate/internal/api"
	"github.com/tdnguyen/vaultgate/internal/audit"
	"github.com/tdnguyen/vaultgate/internal/files"
	"github.com/tdnguyen/vaultgate/internal/gateway"
	"github.com/tdnguyen/vaultgate/internal/identity"
	"github.com/tdnguyen/vaultgate/internal/incident"
	"github.com/tdnguyen/vaultgate/internal/platform/clock"
	"github.com/tdnguyen/vaultgate/internal/platform/config"
	"github.com/tdnguyen/vaultgate/internal/platform/constants"
	"github.com/tdnguyen/vaultgate/internal/platform/migration"
	"github.com/tdnguyen/vaultgate/internal/platform/ops"
	pgstore "github.com/tdnguyen/vaultgate/internal/platform/postgres"
	redisstore "github.com/tdnguyen/vaultgate/internal/platform/redis"
	"github.com/tdnguyen/vaultgate/internal/platform/sec"
	"github.com/tdnguyen/vaultgate/internal/ratelimit"
	"github.com/tdnguyen/vaultgate/internal/session"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "vaultgate"))
	slog.SetDefault(log)

	log.Info("[Vaultgate] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "vaultgate"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Platform Services ──────────────────────────────────────────────
	systemClock := clock.System()
	reporter := ops.NewReporter(log)

	jwtSvc, err := sec.NewTokenService(cfg.SessionSecret, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// Background context for the long-lived goroutines (flood guard and
	// rate-limit reclamation). Cancelled after the HTTP server drains.
	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())
	defer backgroundCancel()

	rules, err := cfg.ParseRateLimitRules()
	must(log, err, "parse rate limit rules")

	limiterRules := ratelimit.Config{
		ratelimit.DefaultEndpoint: {
			Window:      cfg.RateLimitWindow,
			MaxRequests: cfg.RateLimitMaxRequests,
		},
	}
	for endpoint, rule := range rules {
		limiterRules[endpoint] = ratelimit.Rule{
			Window:      time.Duration(rule.WindowMs) * time.Millisecond,
			MaxRequests: rule.MaxRequests,
		}
	}

	limiter := ratelimit.New(limiterRules, systemClock)
	go limiter.Reclaim(backgroundCtx)

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
		DroppedOpsEvents: reporter.Dropped,
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	identityProvider := identity.NewPostgresProvider(pool)

	sessionRepository := session.NewPostgresRepository(pool)
	sessionService := session.NewService(sessionRepository, identityProvider, systemClock, cfg.SessionTTL)

	auditRepository := audit.NewPostgresRepository(pool)
	auditService := audit.NewService(auditRepository, reporter, systemClock)
	auditHandler := audit.NewHandler(auditService)

	incidentRepository := incident.NewPostgresRepository(pool)
	incidentService := incident.NewService(incidentRepository, systemClock, incident.Policy{
		AllowDirectResolve: cfg.IncidentAllowDirectResolve,
	})
	incidentHandler := incident.NewHandler(incidentService)

	gatewayService := gateway.NewService(gateway.Deps{
		Sessions:   sessionService,
		Identities: identityProvider,
		Tokens:     jwtSvc,
		Limiter:    limiter,
		Auditor:    auditService,
		Incidents:  incidentService,
		Failures:   gateway.NewRedisFailureCounter(rdb),
		Reporter:   reporter,
		Clock:      systemClock,
	}, gateway.EscalationPolicy{
		Threshold: cfg.EscalationFailureCount,
		Window:    cfg.EscalationWindow,
	})
	authHandler := gateway.NewHandler(gatewayService)

	blobStore, err := files.NewDiskBlobStore(cfg.BlobPath)
	must(log, err, "initialize blob store")
	filesHandler := files.NewHandler(gatewayService, blobStore, systemClock)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Files:     filesHandler,
		Audit:     auditHandler,
		Incident:  incidentHandler,
	}

	server := api.NewServer(backgroundCtx, cfg, log, jwtSvc, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
