// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package blog

import "context"

// Repository defines the persistence contract for blog posts.
type Repository interface {
	// Create persists a new post.
	//
	// Returns [apperr.Conflict] if the slug unique constraint fails.
	Create(ctx context.Context, post *Post) error

	// FindByIDOrSlug returns the post whose ID or slug matches the key.
	//
	// Returns [apperr.NotFound] if no post matches.
	FindByIDOrSlug(ctx context.Context, key string) (*Post, error)

	// Update persists every mutable field of the post. The slug column is
	// written as-is; the service guarantees it never changes after creation.
	Update(ctx context.Context, post *Post) error

	// List returns a filtered page of posts plus the total matching count.
	// Ordering is featured-first, then newest-first.
	List(ctx context.Context, filters ListFilters, limit, offset int) ([]*Post, int, error)

	// Delete removes a post.
	//
	// Returns [apperr.NotFound] if the post does not exist.
	Delete(ctx context.Context, id string) error
}
