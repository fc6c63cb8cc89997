// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package waitlist

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradewayhq/tradeway/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create persists a new entry. The unique index on email is the single
// uniqueness authority; SQLSTATE 23505 maps to CONFLICT.
func (repository *PostgresRepository) Create(ctx context.Context, entry *Entry) error {
	const query = `
		INSERT INTO waitlist_entries (id, name, email, referral_source, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	entry.CreatedAt = time.Now()

	_, err := repository.pool.Exec(ctx, query,
		entry.ID,
		entry.Name,
		entry.Email,
		entry.ReferralSource,
		entry.CreatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Waitlist entry", "This email is already on the waitlist")
	}

	return nil
}

// List returns a page of entries, newest first, plus the total count.
func (repository *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	const query = `
		SELECT id, name, email, referral_source, created_at
		FROM waitlist_entries
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Waitlist entry", "")
	}
	defer rows.Close()

	entries := make([]*Entry, 0, limit)
	for rows.Next() {
		entry := &Entry{}
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.Email, &entry.ReferralSource, &entry.CreatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "Waitlist entry", "")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Waitlist entry", "")
	}

	var total int
	if err := repository.pool.QueryRow(ctx, `SELECT count(*) FROM waitlist_entries`).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Waitlist entry", "")
	}

	return entries, total, nil
}
