// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

// Package auth implements identity: registration, credential and OAuth
// sign-in, session issuance, and user administration.
//
// # Architecture
//
// Entities in this file represent the "truth" of the identity domain. They
// have no dependencies on outer layers (databases, HTTP, OAuth providers).
package auth

import (
	"time"

	"github.com/tradewayhq/tradeway/internal/platform/sec"
)

// User represents a registered member of the Tradeway platform.
//
// # Rules
//   - Email is unique and validated.
//   - PasswordHash is generated via bcrypt exclusively by the auth service.
//     It is empty for accounts created through OAuth sign-in.
//   - Role is set at creation (default "user") and mutated only by an
//     explicit administrative action, never by profile edits.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	Image        string    `json:"image,omitempty"`
	Role         sec.Role  `json:"role"`
	Bio          string    `json:"bio,omitempty"`
	Location     string    `json:"location,omitempty"`
	Website      string    `json:"website,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity is the authenticated subject produced by a credential or OAuth
// sign-in, before any token exists.
//
// Role may be empty: OAuth providers know nothing about Tradeway roles, so
// an OAuth identity arrives without one and the session service resolves it
// lazily at token issuance.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   sec.Role
}

// Session represents an active refresh-token session.
//
// # Security Concept
//
// Access tokens (JWT) are stateless and cannot be revoked before expiry. To
// mitigate this, Tradeway pairs short-lived JWTs with server-side sessions
// keyed by the hash of a long-lived refresh token. Revoking the session logs
// the user out globally; the at-most-15-minute JWT window bounds how long a
// stale role claim can outlive a role change.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginSession is the result of a successful sign-in or refresh.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}
