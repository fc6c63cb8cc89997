// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package auth

import (
	"context"
	"time"

	"github.com/tradewayhq/tradeway/internal/platform/sec"
)

// UserRepository defines the data access contract for user accounts.
//
// # Implementations
//
// The canonical implementation is PostgreSQL ([PostgresUserRepository]).
// Tests use an in-memory fake.
type UserRepository interface {
	// FindByID returns the account with the given ID.
	//
	// Returns [apperr.NotFound] if the account does not exist.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the account with the given email.
	//
	// Returns [apperr.NotFound] if no user is registered with this email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create persists a brand-new user account.
	//
	// Returns [apperr.Conflict] if the email unique constraint fails; the
	// constraint — not a prior existence read — is the uniqueness authority.
	Create(ctx context.Context, user *User) error

	// UpdateProfile persists changes to the owner-editable fields
	// (Name, Bio, Location, Website, Image). Role and email are untouchable
	// here by design.
	UpdateProfile(ctx context.Context, user *User) error

	// UpdateRole replaces only the role of the given account. This is the
	// single administrative mutation path for roles.
	UpdateRole(ctx context.Context, userID string, role sec.Role) error

	// List returns a page of accounts plus the total count.
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
}

// SessionStore defines the contract for volatile refresh-token sessions.
//
// # Implementations
//
// Sessions live in Redis keyed by the refresh-token hash; expiry is enforced
// by key TTL, so no background sweeper is needed.
type SessionStore interface {
	// Save persists a session under its refresh-token hash for the given TTL.
	Save(ctx context.Context, tokenHash string, session *Session, ttl time.Duration) error

	// FindByTokenHash returns the session for the hash.
	//
	// Returns [apperr.Unauthorized] if the session is absent or expired.
	FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// Revoke removes the session for the hash. Revoking an unknown hash is
	// not an error (logout is idempotent).
	Revoke(ctx context.Context, tokenHash string) error
}

// StateStore holds single-use OAuth state nonces.
type StateStore interface {
	// Save stores a nonce for the given TTL.
	Save(ctx context.Context, state string, ttl time.Duration) error

	// Take consumes a nonce, returning whether it existed. A nonce can be
	// taken at most once; replayed callbacks find nothing.
	Take(ctx context.Context, state string) (bool, error)
}
