// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/renkei/internal/audit"
	"github.com/taibuivan/renkei/internal/auth"
	"github.com/taibuivan/renkei/internal/botconfig"
	"github.com/taibuivan/renkei/internal/llm"
	"github.com/taibuivan/renkei/internal/memory"
	"github.com/taibuivan/renkei/internal/platform/config"
	"github.com/taibuivan/renkei/internal/platform/constants"
	"github.com/taibuivan/renkei/internal/platform/metrics"
	"github.com/taibuivan/renkei/internal/platform/middleware"
	"github.com/taibuivan/renkei/internal/platform/sec"
	"github.com/taibuivan/renkei/internal/roles"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles the OAuth login flow and session lifecycle.
	Auth *auth.Handler

	// Ask handles model completions for authenticated dashboard users.
	Ask *llm.Handler

	// Roles manages the role assignment table.
	Roles *roles.Handler

	// Audit exposes the read side of the audit trail.
	Audit *audit.Handler

	// Config manages runtime configuration overrides.
	Config *botconfig.Handler

	// Memory manages per-user and shared context entries.
	Memory *memory.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// # Route Gating
//
// Every group under /api/v1 except /auth requires an authenticated caller.
// Operator groups (/acl, /audit, /config, /bot-context) additionally require
// admin or superadmin; /ask and /user-context admit any assigned role.
func NewServer(
	context context.Context,
	cfg *config.Config,
	log *slog.Logger,
	verifier middleware.TokenVerifier,
	auditor middleware.DenialAuditor,
	registry *metrics.Registry,
	h Handlers,
) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(registry.Middleware(func(request *http.Request) string {
		return chi.RouteContext(request.Context()).RoutePattern()
	}))
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg, cfg.ExtraOrigins))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration, plus the
	// Prometheus scrape endpoint.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Method(http.MethodGet, "/metrics", registry.Handler())

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())

		// Any assigned role.
		api.Group(func(member chi.Router) {
			member.Use(middleware.RequireAnyRole(auditor,
				sec.RoleUser, sec.RoleAdmin, sec.RoleSuperadmin))
			member.Mount("/", h.Ask.Routes())
			member.Mount("/user-context", h.Memory.UserContextRoutes())
		})

		// Operators only.
		api.Group(func(operator chi.Router) {
			operator.Use(middleware.RequireAnyRole(auditor,
				sec.RoleAdmin, sec.RoleSuperadmin))
			operator.Mount("/acl", h.Roles.Routes())
			operator.Mount("/audit", h.Audit.Routes())
			operator.Mount("/config", h.Config.Routes())
			operator.Mount("/bot-context", h.Memory.BotContextRoutes())
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
