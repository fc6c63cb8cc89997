// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package course

import "context"

// Repository defines the persistence contract for course documents.
//
// # Implementations
//
// The canonical implementation is PostgreSQL with the chapter tree stored as
// a JSONB column ([PostgresRepository]). Tests use an in-memory fake.
type Repository interface {
	// Create persists a new course document.
	Create(ctx context.Context, course *Course) error

	// FindByID returns the course with the given ID.
	//
	// Returns [apperr.NotFound] if the course does not exist.
	FindByID(ctx context.Context, id string) (*Course, error)

	// UpdateMetadata persists title, description, status, featured flag, and
	// thumbnail. Chapters and the derived aggregates are deliberately outside
	// this write.
	UpdateMetadata(ctx context.Context, course *Course) error

	// ReplaceChapters overwrites the chapter document and both derived
	// aggregates in a single write. The prior chapters value is replaced
	// entirely, never merged.
	ReplaceChapters(ctx context.Context, id string, chapters []Chapter, totalVideos int, totalDuration string) error

	// List returns a page of courses plus the total count. An empty status
	// means no status filter.
	List(ctx context.Context, status Status, limit, offset int) ([]*Course, int, error)

	// Delete removes a course document.
	//
	// Returns [apperr.NotFound] if the course does not exist.
	Delete(ctx context.Context, id string) error
}
