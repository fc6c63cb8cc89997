// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

// Package course implements the learning-management domain: nested
// course/chapter/video/resource documents, media upload orchestration, and
// the derived aggregate fields.
//
// # Architecture
//
// A course is an aggregate root persisted as one document: chapters embed
// videos and resources rather than being normalized into join tables. The two
// derived fields (TotalVideos, TotalDuration) are recomputed from the chapter
// tree on every write that touches chapters and are never edited directly.
package course

import (
	"time"
)

// Status is the publication state of a course.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether the status is a known publication state.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// ResourceType classifies a downloadable course attachment.
type ResourceType string

const (
	ResourcePDF  ResourceType = "pdf"
	ResourceLink ResourceType = "link"
	ResourceFile ResourceType = "file"
)

// Valid reports whether the resource type is in the closed set.
func (t ResourceType) Valid() bool {
	return t == ResourcePDF || t == ResourceLink || t == ResourceFile
}

// Course is the aggregate root.
//
// # Invariant
//
// TotalVideos and TotalDuration always equal the aggregate computed from
// Chapters at the time of the last chapter write. Metadata updates never
// touch them.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Status      Status    `json:"status"`
	IsFeatured  bool      `json:"is_featured"`
	Chapters    []Chapter `json:"chapters"`

	// Derived aggregates — recomputed on every chapter write.
	TotalVideos   int    `json:"total_videos"`
	TotalDuration string `json:"total_duration"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Chapter is an ordered child of a course.
type Chapter struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Order       int        `json:"order"`
	Videos      []Video    `json:"videos"`
	Resources   []Resource `json:"resources"`
}

// Video is a single lesson inside a chapter.
//
// Duration is a human-entered string, "M:SS" or "H:MM:SS". It is validated
// during aggregation; a malformed value rejects the whole write.
//
// FileRef names the multipart part carrying the raw upload for this video.
// It exists only in transit: resolution replaces URL with the stored object
// URL and clears FileRef, so a video never reaches the store with an
// unresolved file attached.
type Video struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Duration    string `json:"duration"`
	Order       int    `json:"order"`
	FileRef     string `json:"fileRef,omitempty"`
}

// Resource is a downloadable attachment inside a chapter.
type Resource struct {
	ID      string       `json:"id"`
	Title   string       `json:"title"`
	Type    ResourceType `json:"type"`
	URL     string       `json:"url,omitempty"`
	Size    string       `json:"size,omitempty"`
	FileRef string       `json:"fileRef,omitempty"`
}

// UploadedFile is a buffered multipart file part, keyed by its fileRef name
// in a [FileSet].
type UploadedFile struct {
	Filename string
	Data     []byte
}

// FileSet maps fileRef keys (and the well-known "thumbnail" key) to the
// buffered parts of a multipart submission.
type FileSet map[string]UploadedFile

// ThumbnailKey is the reserved multipart part name for the course thumbnail.
const ThumbnailKey = "thumbnail"
