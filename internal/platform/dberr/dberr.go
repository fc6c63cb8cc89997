// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tradewayhq/tradeway/internal/platform/apperr"
)

// uniqueViolation is the Postgres SQLSTATE for unique-constraint failures.
const uniqueViolation = "23505"

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// # Classification
//
//   - pgx.ErrNoRows          → NOT_FOUND for the named resource.
//   - SQLSTATE 23505         → CONFLICT with the given conflictMsg. Relying on
//     the store's unique index (instead of a read-then-write existence check)
//     is what makes duplicate detection race-free under concurrent inserts.
//   - anything else          → INTERNAL_ERROR carrying the cause for logging.
func Wrap(err error, resource, conflictMsg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	var pgError *pgconn.PgError
	if errors.As(err, &pgError) && pgError.Code == uniqueViolation {
		return apperr.Conflict(conflictMsg)
	}

	return apperr.Internal(err)
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint failure.
func IsUniqueViolation(err error) bool {
	var pgError *pgconn.PgError
	return errors.As(err, &pgError) && pgError.Code == uniqueViolation
}
