// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/tradewayhq/tradeway/internal/platform/constants"
	"github.com/tradewayhq/tradeway/internal/platform/respond"
)

// healthCheckTimeout bounds each dependency probe.
const healthCheckTimeout = 2 * time.Second

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	pool  *pgxpool.Pool
	redis *redis.Client
}

// NewHealthHandler creates the health probe handler.
func NewHealthHandler(pool *pgxpool.Pool, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{pool: pool, redis: redisClient}
}

// Liveness reports that the process is up. It touches no dependency, so a
// struggling database never causes a restart loop.
func (handler *HealthHandler) Liveness(writer http.ResponseWriter, request *http.Request) {
	respond.JSON(writer, http.StatusOK, map[string]string{
		constants.FieldStatus:  "ok",
		constants.FieldApp:     constants.AppName,
		constants.FieldVersion: constants.AppVersion,
	})
}

// Readiness reports whether the server can actually serve traffic: both
// PostgreSQL and Redis must answer a ping within the probe timeout.
func (handler *HealthHandler) Readiness(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if handler.pool != nil {
		if err := handler.pool.Ping(ctx); err != nil {
			checks["postgres"] = "down"
			healthy = false
		} else {
			checks["postgres"] = "up"
		}
	}

	if handler.redis != nil {
		if err := handler.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down"
			healthy = false
		} else {
			checks["redis"] = "up"
		}
	}

	status := http.StatusOK
	statusText := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		statusText = "degraded"
	}

	respond.JSON(writer, status, map[string]any{
		constants.FieldStatus: statusText,
		constants.FieldChecks: checks,
	})
}
