// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package blog

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tradewayhq/tradeway/internal/media"
	"github.com/tradewayhq/tradeway/internal/platform/validate"
	"github.com/tradewayhq/tradeway/pkg/slug"
	"github.com/tradewayhq/tradeway/pkg/uuidv7"
)

// wordsPerMinute is the reading speed used for the read-time default.
const wordsPerMinute = 200

// maxConcurrentImageUploads bounds the inline-image resolution fan-out.
const maxConcurrentImageUploads = 4

var (
	// inlineImagePattern matches a base64 image data-URI embedded in rich
	// HTML content. Each occurrence is uploaded and textually replaced.
	inlineImagePattern = regexp.MustCompile(`data:image/[a-z0-9.+-]+;base64,[A-Za-z0-9+/=]+`)

	// htmlTagPattern strips markup for the word count behind read-time.
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
)

// Service implements blog post normalization and CRUD.
type Service struct {
	repository Repository
	uploader   media.Uploader
	logger     *slog.Logger
}

// NewService constructs a new [Service].
func NewService(repository Repository, uploader media.Uploader, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		uploader:   uploader,
		logger:     logger,
	}
}

// CreateInput is a new post submission.
type CreateInput struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt"`
	Author     string   `json:"author"`
	CoverArt   string   `json:"cover_art"`
	Category   Category `json:"category"`
	Tags       []string `json:"tags"`
	ReadTime   int      `json:"read_time"`
	Status     Status   `json:"status"`
	IsFeatured bool     `json:"is_featured"`
}

// Create normalizes and persists a new post.
//
// # Normalization Pipeline
//
//  1. Slug derived from the title (deterministic transform, frozen forever).
//  2. Cover art resolved: a data-URI is uploaded, an absolute URL passes
//     through unchanged.
//  3. Every base64 image inside the content is uploaded individually and
//     replaced in its original textual position; surrounding HTML is
//     untouched.
//  4. ReadTime defaulted from the visible word count when not supplied.
//
// A duplicate slug surfaces as CONFLICT from the store's unique index.
func (service *Service) Create(ctx context.Context, input CreateInput) (*Post, error) {
	// ── 1. Validation ─────────────────────────────────────────────────────

	if input.Status == "" {
		input.Status = StatusDraft
	}

	validator := &validate.Validator{}
	validator.Required("title", input.Title).MaxLen("title", input.Title, 200)
	validator.Required("content", input.Content)
	validator.Required("author", input.Author)
	validator.Custom("category", !input.Category.Valid(), "Unknown category")
	validator.OneOf("status", string(input.Status), string(StatusDraft), string(StatusPublished))
	if err := validator.Err(); err != nil {
		return nil, err
	}

	postID := uuidv7.New()

	// ── 2. Media Resolution ───────────────────────────────────────────────

	coverArt := input.CoverArt
	if coverArt != "" {
		resolved, err := service.uploader.UploadDataURI(ctx, coverArt, postID, media.AssetCover)
		if err != nil {
			return nil, err
		}
		coverArt = resolved
	}

	content, err := service.resolveInlineImages(ctx, postID, input.Content)
	if err != nil {
		return nil, err
	}

	// ── 3. Derived Fields ─────────────────────────────────────────────────

	readTime := input.ReadTime
	if readTime <= 0 {
		readTime = estimateReadTime(content)
	}

	post := &Post{
		ID:         postID,
		Title:      input.Title,
		Slug:       slug.From(input.Title),
		Content:    content,
		Excerpt:    input.Excerpt,
		Author:     input.Author,
		CoverArt:   coverArt,
		Category:   input.Category,
		Tags:       normalizeTags(input.Tags),
		ReadTime:   readTime,
		Status:     input.Status,
		IsFeatured: input.IsFeatured,
	}

	if post.Status == StatusPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	// ── 4. Persistence ────────────────────────────────────────────────────

	if err := service.repository.Create(ctx, post); err != nil {
		return nil, err
	}

	service.logger.Info("blog_post_created",
		slog.String("post_id", post.ID),
		slog.String("slug", post.Slug),
	)

	return post, nil
}

// UpdateInput holds the partial edit. Nil pointers mean "leave unchanged".
type UpdateInput struct {
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	Excerpt    *string   `json:"excerpt"`
	Author     *string   `json:"author"`
	CoverArt   *string   `json:"cover_art"`
	Category   *Category `json:"category"`
	Tags       *[]string `json:"tags"`
	ReadTime   *int      `json:"read_time"`
	Status     *Status   `json:"status"`
	IsFeatured *bool     `json:"is_featured"`
}

// Update applies a partial edit with the same media resolution rules as
// creation, applied only to the fields present.
//
// The slug is frozen at creation: a title edit never changes it, so links to
// published posts keep working.
func (service *Service) Update(ctx context.Context, id string, input UpdateInput) (*Post, error) {
	post, err := service.repository.FindByIDOrSlug(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		post.Title = *input.Title
	}
	if input.Excerpt != nil {
		post.Excerpt = *input.Excerpt
	}
	if input.Author != nil {
		post.Author = *input.Author
	}
	if input.Category != nil {
		post.Category = *input.Category
	}
	if input.Tags != nil {
		post.Tags = normalizeTags(*input.Tags)
	}
	if input.ReadTime != nil {
		post.ReadTime = *input.ReadTime
	}
	if input.IsFeatured != nil {
		post.IsFeatured = *input.IsFeatured
	}

	if input.CoverArt != nil && *input.CoverArt != "" {
		resolved, err := service.uploader.UploadDataURI(ctx, *input.CoverArt, post.ID, media.AssetCover)
		if err != nil {
			return nil, err
		}
		post.CoverArt = resolved
	}

	if input.Content != nil {
		content, err := service.resolveInlineImages(ctx, post.ID, *input.Content)
		if err != nil {
			return nil, err
		}
		post.Content = content
		if input.ReadTime == nil {
			post.ReadTime = estimateReadTime(content)
		}
	}

	if input.Status != nil {
		if *input.Status == StatusPublished && post.Status != StatusPublished {
			now := time.Now()
			post.PublishedAt = &now
		}
		post.Status = *input.Status
	}

	validator := &validate.Validator{}
	validator.Required("title", post.Title).MaxLen("title", post.Title, 200)
	validator.Required("content", post.Content)
	validator.Custom("category", !post.Category.Valid(), "Unknown category")
	validator.OneOf("status", string(post.Status), string(StatusDraft), string(StatusPublished))
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.repository.Update(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// Get returns a single post by ID or slug.
func (service *Service) Get(ctx context.Context, idOrSlug string) (*Post, error) {
	return service.repository.FindByIDOrSlug(ctx, idOrSlug)
}

// List returns a filtered page of posts. Filters are ANDed; featured posts
// always precede non-featured ones regardless of recency.
func (service *Service) List(ctx context.Context, filters ListFilters, limit, offset int) ([]*Post, int, error) {
	if filters.Category != "" && !filters.Category.Valid() {
		return nil, 0, validate.RequiredError("category", "Unknown category")
	}
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, 0, validate.RequiredError("status", "Must be 'draft' or 'published'")
	}

	return service.repository.List(ctx, filters, limit, offset)
}

// Delete removes a post.
func (service *Service) Delete(ctx context.Context, id string) error {
	post, err := service.repository.FindByIDOrSlug(ctx, id)
	if err != nil {
		return err
	}
	return service.repository.Delete(ctx, post.ID)
}

// # Internals

// resolveInlineImages uploads every base64 image data-URI found in the
// content and splices the resolved URL into the exact textual position of
// the original match. Uploads run concurrently; the rebuild walks matches in
// document order, so output positions are input positions.
func (service *Service) resolveInlineImages(ctx context.Context, postID, content string) (string, error) {
	matches := inlineImagePattern.FindAllStringIndex(content, -1)
	if len(matches) == 0 {
		return content, nil
	}

	resolved := make([]string, len(matches))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentImageUploads)

	for matchIndex, span := range matches {
		group.Go(func() error {
			url, err := service.uploader.UploadDataURI(groupCtx, content[span[0]:span[1]], postID, media.AssetContent)
			if err != nil {
				return err
			}
			resolved[matchIndex] = url
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return "", err
	}

	builder := strings.Builder{}
	cursor := 0
	for matchIndex, span := range matches {
		builder.WriteString(content[cursor:span[0]])
		builder.WriteString(resolved[matchIndex])
		cursor = span[1]
	}
	builder.WriteString(content[cursor:])

	return builder.String(), nil
}

// estimateReadTime derives minutes-to-read from the visible word count,
// rounding up. Non-empty content always reads as at least one minute.
func estimateReadTime(content string) int {
	text := htmlTagPattern.ReplaceAllString(content, " ")
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}

	return (words + wordsPerMinute - 1) / wordsPerMinute
}

// normalizeTags trims, lowercases, and de-duplicates tags, preserving first
// occurrence order.
func normalizeTags(tags []string) []string {
	seen := map[string]struct{}{}
	normalized := make([]string, 0, len(tags))

	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, duplicate := seen[tag]; duplicate {
			continue
		}
		seen[tag] = struct{}{}
		normalized = append(normalized, tag)
	}

	return normalized
}
