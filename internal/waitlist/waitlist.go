// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

// Package waitlist implements the pre-launch signup list.
//
// Uniqueness of the email is enforced by the store's unique index, not by a
// read-then-write existence check, so concurrent submissions of the same
// email cannot both land.
package waitlist

import (
	"context"
	"time"
)

// Entry is a single waitlist signup.
type Entry struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	ReferralSource string    `json:"referral_source,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Repository defines the persistence contract for waitlist entries.
type Repository interface {
	// Create persists a new entry.
	//
	// Returns [apperr.Conflict] if the email unique constraint fails.
	Create(ctx context.Context, entry *Entry) error

	// List returns a page of entries (newest first) plus the total count.
	List(ctx context.Context, limit, offset int) ([]*Entry, int, error)
}
