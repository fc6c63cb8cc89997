// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package course

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradewayhq/tradeway/internal/platform/apperr"
	"github.com/tradewayhq/tradeway/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
//
// # Storage Layout
//
// The chapter tree is a single JSONB column: a course is read and written as
// one document, matching its aggregate-root semantics. Concurrent writers to
// the same course race with last-write-wins; there is no version token.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const courseColumns = `id, title, description, thumbnail, status, is_featured, chapters, total_videos, total_duration, created_at, updated_at`

// Create persists a new course document.
func (repository *PostgresRepository) Create(ctx context.Context, course *Course) error {
	const query = `
		INSERT INTO courses (` + courseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	chaptersJSON, err := marshalChapters(course.Chapters)
	if err != nil {
		return err
	}

	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now

	_, err = repository.pool.Exec(ctx, query,
		course.ID,
		course.Title,
		course.Description,
		course.Thumbnail,
		course.Status,
		course.IsFeatured,
		chaptersJSON,
		course.TotalVideos,
		course.TotalDuration,
		course.CreatedAt,
		course.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Course", "A course with this ID already exists")
	}

	return nil
}

// FindByID retrieves a course document by primary key.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Course, error) {
	const query = `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	row := repository.pool.QueryRow(ctx, query, id)
	return scanCourse(row)
}

// UpdateMetadata persists the metadata fields only. The chapters column and
// both aggregates are untouched by this statement on purpose.
func (repository *PostgresRepository) UpdateMetadata(ctx context.Context, course *Course) error {
	const query = `
		UPDATE courses
		SET title = $2, description = $3, thumbnail = $4, status = $5, is_featured = $6, updated_at = $7
		WHERE id = $1`

	course.UpdatedAt = time.Now()

	tag, err := repository.pool.Exec(ctx, query,
		course.ID,
		course.Title,
		course.Description,
		course.Thumbnail,
		course.Status,
		course.IsFeatured,
		course.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Course", "")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Course")
	}

	return nil
}

// ReplaceChapters overwrites the chapter document and both aggregates in a
// single statement, so the invariant between them can never be observed
// broken.
func (repository *PostgresRepository) ReplaceChapters(ctx context.Context, id string, chapters []Chapter, totalVideos int, totalDuration string) error {
	const query = `
		UPDATE courses
		SET chapters = $2, total_videos = $3, total_duration = $4, updated_at = $5
		WHERE id = $1`

	chaptersJSON, err := marshalChapters(chapters)
	if err != nil {
		return err
	}

	tag, err := repository.pool.Exec(ctx, query, id, chaptersJSON, totalVideos, totalDuration, time.Now())
	if err != nil {
		return dberr.Wrap(err, "Course", "")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Course")
	}

	return nil
}

// List returns a page of courses (featured first, newest first) plus the
// total matching count.
func (repository *PostgresRepository) List(ctx context.Context, status Status, limit, offset int) ([]*Course, int, error) {
	query := `SELECT ` + courseColumns + ` FROM courses`
	countQuery := `SELECT count(*) FROM courses`
	args := []any{}

	if status != "" {
		query += ` WHERE status = $1`
		countQuery += ` WHERE status = $1`
		args = append(args, status)
	}

	query += fmt.Sprintf(` ORDER BY is_featured DESC, created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := repository.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Course", "")
	}
	defer rows.Close()

	courses := make([]*Course, 0, limit)
	for rows.Next() {
		courseDocument, err := scanCourse(rows)
		if err != nil {
			return nil, 0, err
		}
		courses = append(courses, courseDocument)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Course", "")
	}

	var total int
	if err := repository.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Course", "")
	}

	return courses, total, nil
}

// Delete removes a course document.
func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := repository.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "Course", "")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Course")
	}

	return nil
}

// marshalChapters serializes the chapter tree for the JSONB column.
func marshalChapters(chapters []Chapter) ([]byte, error) {
	if chapters == nil {
		chapters = []Chapter{}
	}
	payload, err := json.Marshal(chapters)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("course: failed to marshal chapters: %w", err))
	}
	return payload, nil
}

// scanCourse maps one row onto a [Course], decoding the JSONB chapter tree.
func scanCourse(row pgx.Row) (*Course, error) {
	courseDocument := &Course{}
	chaptersJSON := []byte{}

	err := row.Scan(
		&courseDocument.ID,
		&courseDocument.Title,
		&courseDocument.Description,
		&courseDocument.Thumbnail,
		&courseDocument.Status,
		&courseDocument.IsFeatured,
		&chaptersJSON,
		&courseDocument.TotalVideos,
		&courseDocument.TotalDuration,
		&courseDocument.CreatedAt,
		&courseDocument.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Course", "")
	}

	if len(chaptersJSON) > 0 {
		if err := json.Unmarshal(chaptersJSON, &courseDocument.Chapters); err != nil {
			return nil, apperr.Internal(fmt.Errorf("course: failed to decode chapters: %w", err))
		}
	}
	if courseDocument.Chapters == nil {
		courseDocument.Chapters = []Chapter{}
	}

	return courseDocument, nil
}
