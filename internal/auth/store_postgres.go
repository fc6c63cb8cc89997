// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradewayhq/tradeway/internal/platform/apperr"
	"github.com/tradewayhq/tradeway/internal/platform/dberr"
	"github.com/tradewayhq/tradeway/internal/platform/sec"
)

// PostgresUserRepository implements [UserRepository] using pgx.
//
// # Error Mapping
//
// Storage-specific errors (pgx.ErrNoRows, SQLSTATE 23505) are mapped to
// domain-friendly [apperr.AppError] values via dberr, so storage details
// never leak past this layer.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of [UserRepository].
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, image, role, bio, location, website, created_at, updated_at`

// Create persists a new user record.
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Image,
		user.Role,
		user.Bio,
		user.Location,
		user.Website,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "User", "Email is already registered")
	}

	return nil
}

// FindByID retrieves a user record by primary key.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return repository.scanOne(ctx, query, id)
}

// FindByEmail retrieves a user record by their unique email address.
//
// This query also serves the lazy role resolution performed at token
// issuance for OAuth identities.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return repository.scanOne(ctx, query, email)
}

// UpdateProfile persists the owner-editable profile fields.
func (repository *PostgresUserRepository) UpdateProfile(ctx context.Context, user *User) error {
	const query = `
		UPDATE users
		SET name = $2, image = $3, bio = $4, location = $5, website = $6, updated_at = $7
		WHERE id = $1`

	user.UpdatedAt = time.Now()

	tag, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Image,
		user.Bio,
		user.Location,
		user.Website,
		user.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "User", "Profile conflicts with an existing account")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// UpdateRole replaces only the role column.
func (repository *PostgresUserRepository) UpdateRole(ctx context.Context, userID string, role sec.Role) error {
	const query = `UPDATE users SET role = $2, updated_at = $3 WHERE id = $1`

	tag, err := repository.pool.Exec(ctx, query, userID, role, time.Now())
	if err != nil {
		return dberr.Wrap(err, "User", "")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// List returns a page of accounts ordered by creation time (newest first),
// plus the total account count for pagination metadata.
func (repository *PostgresUserRepository) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "User", "")
	}
	defer rows.Close()

	users := make([]*User, 0, limit)
	for rows.Next() {
		user := &User{}
		if err := rows.Scan(
			&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Image,
			&user.Role, &user.Bio, &user.Location, &user.Website,
			&user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "User", "")
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "User", "")
	}

	var total int
	if err := repository.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "User", "")
	}

	return users, total, nil
}

// scanOne runs a single-row user query and maps the result.
func (repository *PostgresUserRepository) scanOne(ctx context.Context, query string, arg any) (*User, error) {
	user := &User{}
	err := repository.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Image,
		&user.Role, &user.Bio, &user.Location, &user.Website,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "User", "")
	}

	return user, nil
}
