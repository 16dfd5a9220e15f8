// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Renkei gateway HTTP server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis (optional — in-process fallback for development).
//  5. Run database migrations (idempotent).
//  6. Wire the session, role, audit, memory and model-provider services.
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

	"github.com/taibuivan/renkei/internal/api"
	"github.com/taibuivan/renkei/internal/audit"
	"github.com/taibuivan/renkei/internal/auth"
	"github.com/taibuivan/renkei/internal/botconfig"
	"github.com/taibuivan/renkei/internal/identity"
	"github.com/taibuivan/renkei/internal/llm"
	"github.com/taibuivan/renkei/internal/memory"
	"github.com/taibuivan/renkei/internal/platform/config"
	"github.com/taibuivan/renkei/internal/platform/constants"
	"github.com/taibuivan/renkei/internal/platform/metrics"
	"github.com/taibuivan/renkei/internal/platform/migration"
	pgstore "github.com/taibuivan/renkei/internal/platform/postgres"
	redisstore "github.com/taibuivan/renkei/internal/platform/redis"
	"github.com/taibuivan/renkei/internal/platform/sec"
	"github.com/taibuivan/renkei/internal/roles"
	"github.com/taibuivan/renkei/pkg/slice"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "renkei"))
	slog.SetDefault(log)

	log.Info("[Renkei] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "renkei"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("ai_provider", cfg.AIProvider),
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

	// ── 4. Context Store (Redis or in-process fallback) ───────────────────
	var contextStore memory.Store
	var checkCache func() error

	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
		contextStore = memory.NewRedisStore(rdb)
		checkCache = func() error {
			return redisstore.Ping(context.Background(), rdb)
		}
	} else {
		log.Warn("redis_not_configured", slog.String("detail", "context memory will not survive restarts"))
		contextStore = memory.NewInMemoryStore()
	}

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Security Primitives ────────────────────────────────────────────
	tokenService, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer)
	must(log, err, "initialize token service")

	registry := metrics.New()

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: checkCache,
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	auditService := audit.NewService(audit.NewPostgresRepository(pool), log)
	auditHandler := audit.NewHandler(auditService)

	roleRepository := roles.NewPostgresRepository(pool)
	roleResolver := roles.NewResolver(roleRepository, cfg.FallbackRoles, log)
	rolesHandler := roles.NewHandler(roleRepository, auditService)

	exchanger := identity.NewOAuthExchanger(identity.OAuthConfig{
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		RedirectURI:  cfg.OAuthRedirectURI,
		TokenURL:     cfg.OAuthTokenURL,
		UserInfoURL:  cfg.OAuthUserInfoURL,
	})

	admitted := slice.Map(cfg.DashboardRoles, sec.ParseRole)

	authService := auth.NewService(
		exchanger,
		roleResolver,
		auth.NewSessionRepository(pool),
		tokenService,
		auditService,
		registry,
		auth.ServiceConfig{
			AccessTokenTTL:      cfg.AccessTokenTTL(),
			RefreshTokenTTL:     cfg.RefreshTokenTTL(),
			AdmittedRoles:       admitted,
			BindRefreshToClient: cfg.BindRefreshToClient,
		},
	)
	authHandler := auth.NewHandler(authService, cfg)

	memoryService := memory.NewService(contextStore, log)
	memoryHandler := memory.NewHandler(memoryService)

	// Stored configuration overrides win over the environment, so fold them
	// in before the model provider is selected. The allow-list definitions
	// capture the pristine env fallbacks first.
	configRepository := botconfig.NewPostgresRepository(pool)
	definitions := botconfig.Definitions(cfg)
	overrides, err := configRepository.All(startupCtx)
	must(log, err, "load configuration overrides")
	botconfig.Apply(cfg, overrides)

	configService := botconfig.NewService(configRepository, definitions, auditService)
	configHandler := botconfig.NewHandler(configService)

	completer, err := llm.NewCompleter(cfg)
	must(log, err, "initialize model provider")
	log.Info("model_provider_ready", slog.String("provider", completer.Name()))

	askService := llm.NewService(completer, memoryService, auditService, registry, cfg.SystemPrompt, log)
	askHandler := llm.NewHandler(askService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Ask:       askHandler,
		Roles:     rolesHandler,
		Audit:     auditHandler,
		Config:    configHandler,
		Memory:    memoryHandler,
	}

	server := api.NewServer(serverCtx, cfg, log, tokenService, auditService, registry, handlers)

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
