// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

// Command api runs the Tradeway HTTP server.
//
// # Startup Sequence
//
//  1. Structured logger (JSON in production, text in development).
//  2. Configuration from environment (.env honored in development).
//  3. PostgreSQL pool — acquired once, shared by reference everywhere.
//  4. Redis client for sessions and OAuth state.
//  5. Schema migrations (idempotent).
//  6. Object-storage media store.
//  7. Token service, domain wiring, router.
//  8. HTTP server with graceful shutdown.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tradewayhq/tradeway/internal/api"
	"github.com/tradewayhq/tradeway/internal/auth"
	"github.com/tradewayhq/tradeway/internal/blog"
	"github.com/tradewayhq/tradeway/internal/course"
	"github.com/tradewayhq/tradeway/internal/media"
	"github.com/tradewayhq/tradeway/internal/platform/config"
	"github.com/tradewayhq/tradeway/internal/platform/constants"
	"github.com/tradewayhq/tradeway/internal/platform/migration"
	"github.com/tradewayhq/tradeway/internal/platform/postgres"
	redisplatform "github.com/tradewayhq/tradeway/internal/platform/redis"
	"github.com/tradewayhq/tradeway/internal/platform/sec"
	"github.com/tradewayhq/tradeway/internal/waitlist"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server_exited_with_error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Configuration & Logging ────────────────────────────────────────

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("starting",
		slog.String("app", constants.AppName),
		slog.String("version", constants.AppVersion),
		slog.String("environment", cfg.Environment),
	)

	// ── 2. Infrastructure ─────────────────────────────────────────────────

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := redisplatform.NewClient(ctx, cfg.RedisURL, logger)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger); err != nil {
		return err
	}

	mediaStore, err := media.NewStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	tokenService, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	if err != nil {
		return err
	}

	// ── 3. Domain Wiring ──────────────────────────────────────────────────

	userRepository := auth.NewUserRepository(pool)
	sessionStore := auth.NewSessionStore(redisClient)
	stateStore := auth.NewStateStore(redisClient)

	authService := auth.NewService(userRepository, sessionStore, tokenService, logger)
	oauthService := auth.NewOAuthService(auth.OAuthConfig{
		ClientID:     cfg.OAuthGoogleClientID,
		ClientSecret: cfg.OAuthGoogleClientSecret,
		RedirectURL:  cfg.OAuthRedirectURL,
	}, userRepository, stateStore, logger)

	blogService := blog.NewService(blog.NewRepository(pool), mediaStore, logger)
	courseService := course.NewService(course.NewRepository(pool), mediaStore, logger)
	waitlistService := waitlist.NewService(waitlist.NewRepository(pool), logger)

	// ── 4. HTTP Surface ───────────────────────────────────────────────────

	router := api.NewRouter(ctx, api.Dependencies{
		Config:   cfg,
		Logger:   logger,
		Pool:     pool,
		Redis:    redisClient,
		Verifier: tokenService,

		Auth:     auth.NewHandler(authService, oauthService, cfg.IsProduction()),
		Blog:     blog.NewHandler(blogService),
		Course:   course.NewHandler(courseService),
		Waitlist: waitlist.NewHandler(waitlistService),
		Media:    media.NewHandler(mediaStore),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadTimeout:       constants.DefaultReadTimeout,
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		WriteTimeout:      constants.DefaultWriteTimeout,
		IdleTimeout:       constants.DefaultIdleTimeout,
	}

	// ── 5. Serve & Shut Down ──────────────────────────────────────────────

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("http_server_listening", slog.String("addr", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown_signal_received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful_shutdown_failed", slog.Any("error", err))
			return server.Close()
		}
	}

	logger.Info("server_stopped")
	return nil
}

// newLogger builds the process logger: text for development terminals, JSON
// for aggregation everywhere else. Debug mode lowers the level.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	options := &slog.HandlerOptions{Level: level}

	if cfg.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stdout, options))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, options))
}
