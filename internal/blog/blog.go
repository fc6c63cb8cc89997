// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

// Package blog implements the publishing domain: post normalization (slug
// derivation, inline image resolution, read-time defaults), filtered listing
// with full-text search, and CRUD.
package blog

import (
	"time"
)

// Category is the closed set of editorial sections.
type Category string

const (
	CategoryAnalysis   Category = "analysis"
	CategoryEducation  Category = "education"
	CategoryPsychology Category = "psychology"
	CategoryStrategy   Category = "strategy"
	CategoryNews       Category = "news"
)

// Categories lists every valid category, for validation and clients.
var Categories = []Category{
	CategoryAnalysis,
	CategoryEducation,
	CategoryPsychology,
	CategoryStrategy,
	CategoryNews,
}

// Valid reports whether the category is in the closed set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Status is the publication state of a post.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether the status is a known publication state.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Post is a published or draft article.
//
// # Rules
//   - Slug is derived from the title exactly once, at creation, and is
//     frozen thereafter: published URLs never break when a title is edited.
//   - Content is stored with every inline image resolved to a stable URL;
//     no base64 data-URI ever reaches the store.
//   - ReadTime, when not supplied, is derived from the visible word count at
//     200 words per minute.
type Post struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Content    string     `json:"content"`
	Excerpt    string     `json:"excerpt,omitempty"`
	Author     string     `json:"author"`
	CoverArt   string     `json:"cover_art,omitempty"`
	Category   Category   `json:"category"`
	Tags       []string   `json:"tags"`
	ReadTime   int        `json:"read_time"`
	Status     Status     `json:"status"`
	IsFeatured bool       `json:"is_featured"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ListFilters are the independently optional listing filters; present
// filters are combined with logical AND.
type ListFilters struct {
	Search   string
	Category Category
	Status   Status
	Tag      string
}
