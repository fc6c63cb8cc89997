// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

/*
Package api composes the HTTP surface of the Tradeway server.

It wires the cross-cutting middleware chain, mounts every domain router
under /api/v1, and gates the /admin page prefix. Domain packages own their
handlers; this package only decides where they live and which guards stand
in front of them.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/tradewayhq/tradeway/internal/auth"
	"github.com/tradewayhq/tradeway/internal/blog"
	"github.com/tradewayhq/tradeway/internal/course"
	"github.com/tradewayhq/tradeway/internal/media"
	"github.com/tradewayhq/tradeway/internal/platform/config"
	"github.com/tradewayhq/tradeway/internal/platform/constants"
	"github.com/tradewayhq/tradeway/internal/platform/middleware"
	"github.com/tradewayhq/tradeway/internal/waitlist"
)

// Dependencies bundles everything the router needs.
type Dependencies struct {
	Config   *config.Config
	Logger   *slog.Logger
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	Verifier middleware.TokenVerifier

	Auth     *auth.Handler
	Blog     *blog.Handler
	Course   *course.Handler
	Waitlist *waitlist.Handler
	Media    *media.Handler

	// AdminPages serves the dashboard pages behind the page gate. The API
	// binary ships a minimal placeholder; the real dashboard is a separate
	// deployment fronted by the same gate contract.
	AdminPages http.Handler
}

// NewRouter builds the complete HTTP handler tree.
func NewRouter(ctx context.Context, deps Dependencies) chi.Router {
	router := chi.NewRouter()

	// ── 1. Cross-Cutting Chain ────────────────────────────────────────────
	// Order matters: tracing first, then logging (so the sub-logger carries
	// the request ID), then guards, then identity.
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(deps.Logger))
	router.Use(chimiddleware.Timeout(constants.GlobalRequestTimeout))
	router.Use(middleware.RateLimit(ctx))
	router.Use(middleware.PanicRecovery(deps.Logger))
	router.Use(middleware.CORS(deps.Config))
	router.Use(middleware.Authenticate(deps.Verifier))

	// ── 2. Health ─────────────────────────────────────────────────────────
	health := NewHealthHandler(deps.Pool, deps.Redis)
	router.Get("/health", health.Liveness)
	router.Get("/ready", health.Readiness)

	// ── 3. API Surface ────────────────────────────────────────────────────
	router.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", deps.Auth.Routes())
		api.Mount("/users", deps.Auth.ProfileRoutes())
		api.Mount("/blogs", deps.Blog.Routes())
		api.Mount("/courses", deps.Course.Routes())
		api.Mount("/waitlist", deps.Waitlist.Routes())

		api.With(middleware.RequireAdmin).Mount("/uploads", deps.Media.Routes())

		api.Route("/admin", func(admin chi.Router) {
			// The explicit check endpoint makes its own 401/403 decision so
			// the dashboard can read the role from the response body.
			admin.Get("/check", deps.Auth.CheckAdmin)
			admin.With(middleware.RequireAdmin).Mount("/users", deps.Auth.AdminRoutes())
		})
	})

	// ── 4. Gated Dashboard Pages ──────────────────────────────────────────
	adminPages := deps.AdminPages
	if adminPages == nil {
		adminPages = placeholderDashboard()
	}
	router.With(middleware.PageGate(constants.AdminPathPrefix)).
		Handle(constants.AdminPathPrefix+"/*", adminPages)
	router.With(middleware.PageGate(constants.AdminPathPrefix)).
		Handle(constants.AdminPathPrefix, adminPages)

	return router
}

// placeholderDashboard answers gated page loads when no dashboard bundle is
// attached. Reaching it at all proves the session passed the gate.
func placeholderDashboard() http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = writer.Write([]byte("<!doctype html><title>Tradeway Admin</title><h1>Tradeway Admin</h1>"))
	})
}
