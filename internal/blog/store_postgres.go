// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package blog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradewayhq/tradeway/internal/platform/apperr"
	"github.com/tradewayhq/tradeway/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
//
// # Search
//
// Full-text search runs against a generated tsvector column covering title,
// excerpt, content, and tags, so the filter needs no trigram extension and
// stays index-backed.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const postColumns = `id, title, slug, content, excerpt, author, cover_art, category, tags, read_time, status, is_featured, published_at, created_at, updated_at`

// Create persists a new post.
func (repository *PostgresRepository) Create(ctx context.Context, post *Post) error {
	const query = `
		INSERT INTO blog_posts (` + postColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		post.ID,
		post.Title,
		post.Slug,
		post.Content,
		post.Excerpt,
		post.Author,
		post.CoverArt,
		post.Category,
		post.Tags,
		post.ReadTime,
		post.Status,
		post.IsFeatured,
		post.PublishedAt,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Post", "A post with this slug already exists")
	}

	return nil
}

// FindByIDOrSlug returns the post matching the key as either primary key or
// slug. Slugs and UUIDv7 strings cannot collide, so one query serves both
// lookups.
func (repository *PostgresRepository) FindByIDOrSlug(ctx context.Context, key string) (*Post, error) {
	const query = `SELECT ` + postColumns + ` FROM blog_posts WHERE id = $1 OR slug = $1`

	return scanPost(repository.pool.QueryRow(ctx, query, key))
}

// Update persists every mutable field.
func (repository *PostgresRepository) Update(ctx context.Context, post *Post) error {
	const query = `
		UPDATE blog_posts
		SET title = $2, content = $3, excerpt = $4, author = $5, cover_art = $6,
		    category = $7, tags = $8, read_time = $9, status = $10,
		    is_featured = $11, published_at = $12, updated_at = $13
		WHERE id = $1`

	post.UpdatedAt = time.Now()

	tag, err := repository.pool.Exec(ctx, query,
		post.ID,
		post.Title,
		post.Content,
		post.Excerpt,
		post.Author,
		post.CoverArt,
		post.Category,
		post.Tags,
		post.ReadTime,
		post.Status,
		post.IsFeatured,
		post.PublishedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Post", "A post with this slug already exists")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Post")
	}

	return nil
}

// List returns a filtered, featured-first page of posts plus the total
// matching count. Present filters are combined with AND.
func (repository *PostgresRepository) List(ctx context.Context, filters ListFilters, limit, offset int) ([]*Post, int, error) {
	conditions := []string{}
	args := []any{}

	appendCondition := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filters.Search != "" {
		appendCondition(`search @@ plainto_tsquery('english', $%d)`, filters.Search)
	}
	if filters.Category != "" {
		appendCondition(`category = $%d`, filters.Category)
	}
	if filters.Status != "" {
		appendCondition(`status = $%d`, filters.Status)
	}
	if filters.Tag != "" {
		appendCondition(`$%d = ANY(tags)`, strings.ToLower(filters.Tag))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT ` + postColumns + ` FROM blog_posts` + whereClause +
		fmt.Sprintf(` ORDER BY is_featured DESC, created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := repository.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Post", "")
	}
	defer rows.Close()

	posts := make([]*Post, 0, limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Post", "")
	}

	var total int
	countQuery := `SELECT count(*) FROM blog_posts` + whereClause
	if err := repository.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Post", "")
	}

	return posts, total, nil
}

// Delete removes a post by primary key.
func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := repository.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "Post", "")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Post")
	}

	return nil
}

// scanPost maps one row onto a [Post].
func scanPost(row pgx.Row) (*Post, error) {
	post := &Post{}

	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.Content,
		&post.Excerpt,
		&post.Author,
		&post.CoverArt,
		&post.Category,
		&post.Tags,
		&post.ReadTime,
		&post.Status,
		&post.IsFeatured,
		&post.PublishedAt,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Post", "")
	}

	if post.Tags == nil {
		post.Tags = []string{}
	}

	return post, nil
}
