// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package course

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/tradewayhq/tradeway/internal/media"
	"github.com/tradewayhq/tradeway/internal/platform/validate"
	"github.com/tradewayhq/tradeway/pkg/duration"
	"github.com/tradewayhq/tradeway/pkg/uuidv7"
)

// maxConcurrentUploads bounds the parallel media resolution fan-out per
// request so one large course cannot monopolize upstream connections.
const maxConcurrentUploads = 4

// Service implements course creation, metadata updates, and the
// chapters-replace operation with its upload orchestration.
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

// CreateCourseInput is the structured half of a multipart course submission.
// Raw files travel separately in a [FileSet], referenced by fileRef keys.
type CreateCourseInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	IsFeatured  bool      `json:"is_featured"`
	Thumbnail   string    `json:"thumbnail"`
	Chapters    []Chapter `json:"chapters"`
}

// CreateCourse builds a complete course document from a nested submission.
//
// # Pipeline
//
//  1. Validate the structured payload.
//  2. Assign fresh IDs to the course and every chapter/video/resource, in
//     input order.
//  3. Resolve every embedded media reference (thumbnail part, fileRef parts,
//     data-URIs) to a stable URL. Sibling uploads run concurrently; output
//     ordering is input ordering regardless of completion order.
//  4. Recompute TotalVideos and TotalDuration from the resolved tree.
//  5. Persist the whole document.
//
// Any single upload failure aborts the operation; nothing partial is
// persisted.
func (service *Service) CreateCourse(ctx context.Context, input CreateCourseInput, files FileSet) (*Course, error) {
	// ── 1. Validation ─────────────────────────────────────────────────────

	if input.Status == "" {
		input.Status = StatusDraft
	}
	if err := service.validateStructure(input.Title, input.Status, input.Chapters); err != nil {
		return nil, err
	}

	// ── 2. Identity Assignment ────────────────────────────────────────────

	courseID := uuidv7.New()
	assignIdentifiers(input.Chapters)

	// ── 3. Media Resolution ───────────────────────────────────────────────

	thumbnail, err := service.resolveThumbnail(ctx, courseID, input.Thumbnail, files)
	if err != nil {
		return nil, err
	}

	if err := service.resolveChapterMedia(ctx, courseID, input.Chapters, files); err != nil {
		return nil, err
	}

	// ── 4. Aggregation ────────────────────────────────────────────────────

	totalVideos, totalDuration, err := computeTotals(input.Chapters)
	if err != nil {
		return nil, err
	}

	// ── 5. Persistence ────────────────────────────────────────────────────

	courseDocument := &Course{
		ID:            courseID,
		Title:         input.Title,
		Description:   input.Description,
		Thumbnail:     thumbnail,
		Status:        input.Status,
		IsFeatured:    input.IsFeatured,
		Chapters:      input.Chapters,
		TotalVideos:   totalVideos,
		TotalDuration: totalDuration,
	}

	if err := service.repository.Create(ctx, courseDocument); err != nil {
		return nil, err
	}

	service.logger.Info("course_created",
		slog.String("course_id", courseID),
		slog.Int("total_videos", totalVideos),
	)

	return courseDocument, nil
}

// UpdateCourseInput holds the metadata-only partial update. Nil pointers mean
// "leave unchanged".
type UpdateCourseInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *Status `json:"status"`
	IsFeatured  *bool   `json:"is_featured"`
	Thumbnail   string  `json:"thumbnail"`
}

// UpdateCourse applies a metadata edit. Chapters, TotalVideos, and
// TotalDuration are never touched here; they belong exclusively to
// [Service.ReplaceChapters].
func (service *Service) UpdateCourse(ctx context.Context, id string, input UpdateCourseInput, files FileSet) (*Course, error) {
	courseDocument, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		courseDocument.Title = *input.Title
	}
	if input.Description != nil {
		courseDocument.Description = *input.Description
	}
	if input.Status != nil {
		courseDocument.Status = *input.Status
	}
	if input.IsFeatured != nil {
		courseDocument.IsFeatured = *input.IsFeatured
	}

	validator := &validate.Validator{}
	validator.Required("title", courseDocument.Title).MaxLen("title", courseDocument.Title, 200)
	validator.OneOf("status", string(courseDocument.Status), string(StatusDraft), string(StatusPublished))
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// A new thumbnail (part or data-URI) replaces the stored one; otherwise
	// the existing URL is retained.
	if newThumbnail, err := service.resolveThumbnail(ctx, id, input.Thumbnail, files); err != nil {
		return nil, err
	} else if newThumbnail != "" {
		courseDocument.Thumbnail = newThumbnail
	}

	if err := service.repository.UpdateMetadata(ctx, courseDocument); err != nil {
		return nil, err
	}

	return courseDocument, nil
}

// ReplaceChapters swaps the entire chapter tree of a course.
//
// Existing item IDs in the input are kept; items without an ID are treated
// as newly introduced and assigned one. The prior chapters value is replaced
// entirely, and both aggregates are recomputed from the new tree.
func (service *Service) ReplaceChapters(ctx context.Context, id string, chapters []Chapter, files FileSet) (*Course, error) {
	courseDocument, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := service.validateChapters(chapters); err != nil {
		return nil, err
	}

	assignIdentifiers(chapters)

	if err := service.resolveChapterMedia(ctx, id, chapters, files); err != nil {
		return nil, err
	}

	totalVideos, totalDuration, err := computeTotals(chapters)
	if err != nil {
		return nil, err
	}

	if err := service.repository.ReplaceChapters(ctx, id, chapters, totalVideos, totalDuration); err != nil {
		return nil, err
	}

	courseDocument.Chapters = chapters
	courseDocument.TotalVideos = totalVideos
	courseDocument.TotalDuration = totalDuration

	service.logger.Info("course_chapters_replaced",
		slog.String("course_id", id),
		slog.Int("total_videos", totalVideos),
		slog.String("total_duration", totalDuration),
	)

	return courseDocument, nil
}

// Get returns a single course by ID.
func (service *Service) Get(ctx context.Context, id string) (*Course, error) {
	return service.repository.FindByID(ctx, id)
}

// List returns a page of courses, optionally filtered by status.
func (service *Service) List(ctx context.Context, status Status, limit, offset int) ([]*Course, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, validate.RequiredError("status", "Must be 'draft' or 'published'")
	}
	return service.repository.List(ctx, status, limit, offset)
}

// Delete removes a course document.
func (service *Service) Delete(ctx context.Context, id string) error {
	return service.repository.Delete(ctx, id)
}

// # Internals

// validateStructure checks the structural payload of a create submission.
func (service *Service) validateStructure(title string, status Status, chapters []Chapter) error {
	validator := &validate.Validator{}
	validator.Required("title", title).MaxLen("title", title, 200)
	validator.OneOf("status", string(status), string(StatusDraft), string(StatusPublished))
	if err := validator.Err(); err != nil {
		return err
	}

	return service.validateChapters(chapters)
}

// validateChapters checks the per-item rules of a chapter tree.
func (service *Service) validateChapters(chapters []Chapter) error {
	validator := &validate.Validator{}

	for chapterIndex, chapter := range chapters {
		validator.Required(fmt.Sprintf("chapters[%d].title", chapterIndex), chapter.Title)

		for videoIndex, video := range chapter.Videos {
			field := fmt.Sprintf("chapters[%d].videos[%d]", chapterIndex, videoIndex)
			validator.Required(field+".title", video.Title)
			validator.Required(field+".duration", video.Duration)
		}

		for resourceIndex, resource := range chapter.Resources {
			field := fmt.Sprintf("chapters[%d].resources[%d]", chapterIndex, resourceIndex)
			validator.Required(field+".title", resource.Title)
			validator.Custom(field+".type", !resource.Type.Valid(), "Must be one of: pdf, link, file")
		}
	}

	return validator.Err()
}

// assignIdentifiers walks the tree in input order and gives every item
// without an ID a fresh one. Orders are normalized to the input positions.
func assignIdentifiers(chapters []Chapter) {
	for chapterIndex := range chapters {
		chapter := &chapters[chapterIndex]
		if chapter.ID == "" {
			chapter.ID = uuidv7.New()
		}
		chapter.Order = chapterIndex

		for videoIndex := range chapter.Videos {
			video := &chapter.Videos[videoIndex]
			if video.ID == "" {
				video.ID = uuidv7.New()
			}
			video.Order = videoIndex
		}

		for resourceIndex := range chapter.Resources {
			resource := &chapter.Resources[resourceIndex]
			if resource.ID == "" {
				resource.ID = uuidv7.New()
			}
		}
	}
}

// resolveThumbnail resolves the course thumbnail from either the reserved
// multipart part or an inline reference. Returns "" when no new thumbnail
// was supplied.
func (service *Service) resolveThumbnail(ctx context.Context, courseID, inline string, files FileSet) (string, error) {
	if file, ok := files[ThumbnailKey]; ok {
		return service.uploader.UploadStream(ctx, bytes.NewReader(file.Data), int64(len(file.Data)),
			file.Filename, courseID, media.AssetThumbnail)
	}

	if inline == "" {
		return "", nil
	}

	// Absolute URLs pass through unchanged inside the uploader.
	return service.uploader.UploadDataURI(ctx, inline, courseID, media.AssetThumbnail)
}

// resolveChapterMedia resolves every pending media reference in the tree.
//
// # Ordering Contract
//
// Sibling uploads run concurrently (bounded by [maxConcurrentUploads]), but
// each goroutine writes only its own item's fields, so the tree's ordering
// is exactly the input ordering no matter how uploads interleave. The first
// failure cancels the remaining uploads and aborts the operation.
func (service *Service) resolveChapterMedia(ctx context.Context, courseID string, chapters []Chapter, files FileSet) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentUploads)

	for chapterIndex := range chapters {
		chapter := &chapters[chapterIndex]

		for videoIndex := range chapter.Videos {
			video := &chapter.Videos[videoIndex]

			if video.FileRef != "" {
				file, ok := files[video.FileRef]
				if !ok {
					return validate.RequiredError("fileRef",
						fmt.Sprintf("No uploaded file part named %q", video.FileRef))
				}
				group.Go(func() error {
					url, err := service.uploader.UploadStream(groupCtx,
						bytes.NewReader(file.Data), int64(len(file.Data)),
						file.Filename, courseID, media.AssetVideo)
					if err != nil {
						return err
					}
					video.URL = url
					video.FileRef = ""
					return nil
				})
			} else if media.IsDataURI(video.URL) {
				group.Go(func() error {
					url, err := service.uploader.UploadDataURI(groupCtx, video.URL, courseID, media.AssetVideo)
					if err != nil {
						return err
					}
					video.URL = url
					return nil
				})
			}

			if media.IsDataURI(video.Thumbnail) {
				group.Go(func() error {
					url, err := service.uploader.UploadDataURI(groupCtx, video.Thumbnail, courseID, media.AssetThumbnail)
					if err != nil {
						return err
					}
					video.Thumbnail = url
					return nil
				})
			}
		}

		for resourceIndex := range chapter.Resources {
			resource := &chapter.Resources[resourceIndex]

			if resource.FileRef != "" {
				file, ok := files[resource.FileRef]
				if !ok {
					return validate.RequiredError("fileRef",
						fmt.Sprintf("No uploaded file part named %q", resource.FileRef))
				}
				group.Go(func() error {
					url, err := service.uploader.UploadStream(groupCtx,
						bytes.NewReader(file.Data), int64(len(file.Data)),
						file.Filename, courseID, media.AssetResource)
					if err != nil {
						return err
					}
					resource.URL = url
					resource.FileRef = ""
					if resource.Size == "" {
						resource.Size = humanize.Bytes(uint64(len(file.Data)))
					}
					return nil
				})
			} else if media.IsDataURI(resource.URL) {
				group.Go(func() error {
					url, err := service.uploader.UploadDataURI(groupCtx, resource.URL, courseID, media.AssetResource)
					if err != nil {
						return err
					}
					resource.URL = url
					return nil
				})
			}
		}
	}

	return group.Wait()
}

// computeTotals derives the two aggregate fields from the chapter tree.
//
// Every video duration is parsed as "M:SS" or "H:MM:SS"; the sum of seconds
// is formatted as zero-padded "HH:MM:SS". A malformed duration rejects the
// write with a field-level validation error rather than corrupting the
// aggregate.
func computeTotals(chapters []Chapter) (int, string, error) {
	totalVideos := 0
	totalSeconds := 0

	for chapterIndex, chapter := range chapters {
		for videoIndex, video := range chapter.Videos {
			seconds, err := duration.ParseSeconds(video.Duration)
			if err != nil {
				return 0, "", validate.RequiredError(
					fmt.Sprintf("chapters[%d].videos[%d].duration", chapterIndex, videoIndex),
					`Must be a duration in "M:SS" or "H:MM:SS" form`,
				)
			}
			totalVideos++
			totalSeconds += seconds
		}
	}

	return totalVideos, duration.FormatHMS(totalSeconds), nil
}
