// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package blog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewayhq/tradeway/internal/media"
	"github.com/tradewayhq/tradeway/internal/platform/apperr"
)

// # Fakes

type fakeRepository struct {
	posts       map[string]*Post
	createCalls int
}

func newFakeRepository(posts ...*Post) *fakeRepository {
	repo := &fakeRepository{posts: map[string]*Post{}}
	for _, post := range posts {
		repo.posts[post.ID] = post
	}
	return repo
}

func (r *fakeRepository) Create(_ context.Context, post *Post) error {
	r.createCalls++
	for _, existing := range r.posts {
		if existing.Slug == post.Slug {
			return apperr.Conflict("A post with this slug already exists")
		}
	}
	r.posts[post.ID] = post
	return nil
}

func (r *fakeRepository) FindByIDOrSlug(_ context.Context, key string) (*Post, error) {
	if post, ok := r.posts[key]; ok {
		return post, nil
	}
	for _, post := range r.posts {
		if post.Slug == key {
			return post, nil
		}
	}
	return nil, apperr.NotFound("Post")
}

func (r *fakeRepository) Update(_ context.Context, post *Post) error {
	if _, ok := r.posts[post.ID]; !ok {
		return apperr.NotFound("Post")
	}
	r.posts[post.ID] = post
	return nil
}

func (r *fakeRepository) List(_ context.Context, _ ListFilters, _, _ int) ([]*Post, int, error) {
	list := make([]*Post, 0, len(r.posts))
	for _, post := range r.posts {
		list = append(list, post)
	}
	return list, len(list), nil
}

func (r *fakeRepository) Delete(_ context.Context, id string) error {
	if _, ok := r.posts[id]; !ok {
		return apperr.NotFound("Post")
	}
	delete(r.posts, id)
	return nil
}

// fakeUploader resolves each distinct input to a distinct URL so tests can
// verify positional replacement.
type fakeUploader struct {
	mu       sync.Mutex
	uploads  int
	failWith error
}

func (u *fakeUploader) UploadDataURI(_ context.Context, input, _ string, _ media.AssetType) (string, error) {
	if media.IsAbsoluteURL(input) {
		return input, nil
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failWith != nil {
		return "", u.failWith
	}
	u.uploads++
	return fmt.Sprintf("https://cdn.tradeway.app/content/%s", input[len(input)-6:]), nil
}

func (u *fakeUploader) UploadStream(_ context.Context, _ io.Reader, _ int64, filename, _ string, _ media.AssetType) (string, error) {
	return "https://cdn.tradeway.app/files/" + filename, nil
}

func newTestService(repo *fakeRepository, uploader *fakeUploader) *Service {
	return NewService(repo, uploader, slog.New(slog.DiscardHandler))
}

// # Tests

/*
TestCreate_SlugDerivation verifies the deterministic slug transform:
lowercase, non-alphanumeric runs collapsed to single hyphens, no edge
hyphens.
*/
func TestCreate_SlugDerivation(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, &fakeUploader{})

	post, err := service.Create(context.Background(), CreateInput{
		Title:    "Hello, World! 2025",
		Content:  "<p>Short analysis.</p>",
		Author:   "Desk Team",
		Category: CategoryAnalysis,
	})

	require.NoError(t, err)
	assert.Equal(t, "hello-world-2025", post.Slug)
}

/*
TestCreate_InlineImageResolution verifies that content holding two distinct
base64 data-URIs ends up with zero data-URIs and two resolved URLs in the
original textual positions, with the surrounding HTML untouched.
*/
func TestCreate_InlineImageResolution(t *testing.T) {
	firstImage := "data:image/png;base64,aaaaAAAA11112222"
	secondImage := "data:image/jpeg;base64,bbbbBBBB33334444"
	content := fmt.Sprintf(`<p>Intro</p><img src="%s"/><p>Middle</p><img src="%s"/><p>End</p>`,
		firstImage, secondImage)

	repo := newFakeRepository()
	uploader := &fakeUploader{}
	service := newTestService(repo, uploader)

	post, err := service.Create(context.Background(), CreateInput{
		Title:    "Chart Patterns",
		Content:  content,
		Author:   "Desk Team",
		Category: CategoryEducation,
	})

	require.NoError(t, err)
	assert.NotContains(t, post.Content, "base64", "no data-URI may reach the store")
	assert.Equal(t, 2, uploader.uploads)

	// Resolved URLs sit exactly where the originals were.
	firstPos := strings.Index(post.Content, "https://cdn.tradeway.app/content/112222")
	secondPos := strings.Index(post.Content, "https://cdn.tradeway.app/content/334444")
	require.GreaterOrEqual(t, firstPos, 0)
	require.Greater(t, secondPos, firstPos)
	assert.True(t, strings.HasPrefix(post.Content, "<p>Intro</p>"))
	assert.True(t, strings.HasSuffix(post.Content, "<p>End</p>"))
	assert.Contains(t, post.Content, "<p>Middle</p>")
}

/*
TestCreate_ReadTimeDefault verifies the 200-words-per-minute default with
markup stripped, and that a caller-supplied value wins.
*/
func TestCreate_ReadTimeDefault(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, &fakeUploader{})

	t.Run("derived from word count", func(t *testing.T) {
		// 250 words → ceil(250/200) = 2 minutes.
		content := "<article>" + strings.Repeat("word ", 250) + "</article>"
		post, err := service.Create(context.Background(), CreateInput{
			Title:    "Long Read",
			Content:  content,
			Author:   "Desk Team",
			Category: CategoryStrategy,
		})

		require.NoError(t, err)
		assert.Equal(t, 2, post.ReadTime)
	})

	t.Run("explicit value preserved", func(t *testing.T) {
		post, err := service.Create(context.Background(), CreateInput{
			Title:    "Short Read",
			Content:  "<p>Tiny.</p>",
			Author:   "Desk Team",
			Category: CategoryNews,
			ReadTime: 7,
		})

		require.NoError(t, err)
		assert.Equal(t, 7, post.ReadTime)
	})
}

/*
TestCreate_UploadFailureAborts verifies that a cover or inline upload failure
aborts creation with nothing persisted.
*/
func TestCreate_UploadFailureAborts(t *testing.T) {
	repo := newFakeRepository()
	uploader := &fakeUploader{failWith: apperr.Upstream(fmt.Errorf("bucket unreachable"))}
	service := newTestService(repo, uploader)

	_, err := service.Create(context.Background(), CreateInput{
		Title:    "Doomed Post",
		Content:  `<img src="data:image/png;base64,deadbeef00"/>`,
		Author:   "Desk Team",
		Category: CategoryNews,
	})

	require.Error(t, err)
	assert.Equal(t, "UPSTREAM_ERROR", apperr.As(err).Code)
	assert.Zero(t, repo.createCalls)
}

/*
TestUpdate_SlugFrozen verifies the explicit slug policy: a title edit never
recomputes the slug.
*/
func TestUpdate_SlugFrozen(t *testing.T) {
	existing := &Post{
		ID:       "post-1",
		Title:    "Original Title",
		Slug:     "original-title",
		Content:  "<p>Body.</p>",
		Author:   "Desk Team",
		Category: CategoryAnalysis,
		Status:   StatusPublished,
	}
	repo := newFakeRepository(existing)
	service := newTestService(repo, &fakeUploader{})

	newTitle := "Completely Different Title"
	post, err := service.Update(context.Background(), "post-1", UpdateInput{Title: &newTitle})

	require.NoError(t, err)
	assert.Equal(t, "Completely Different Title", post.Title)
	assert.Equal(t, "original-title", post.Slug, "slug is frozen at creation")
}

/*
TestUpdate_PublishSetsTimestamp verifies that the draft→published transition
stamps PublishedAt exactly once.
*/
func TestUpdate_PublishSetsTimestamp(t *testing.T) {
	existing := &Post{
		ID:       "post-1",
		Title:    "Draft",
		Slug:     "draft",
		Content:  "<p>Body.</p>",
		Author:   "Desk Team",
		Category: CategoryNews,
		Status:   StatusDraft,
	}
	repo := newFakeRepository(existing)
	service := newTestService(repo, &fakeUploader{})

	published := StatusPublished
	post, err := service.Update(context.Background(), "post-1", UpdateInput{Status: &published})
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)
	firstPublish := *post.PublishedAt

	// Re-publishing must not move the timestamp.
	post, err = service.Update(context.Background(), "post-1", UpdateInput{Status: &published})
	require.NoError(t, err)
	assert.Equal(t, firstPublish, *post.PublishedAt)
}

/*
TestUpdate_UnknownPost verifies the NotFound contract.
*/
func TestUpdate_UnknownPost(t *testing.T) {
	service := newTestService(newFakeRepository(), &fakeUploader{})

	_, err := service.Update(context.Background(), "missing", UpdateInput{})

	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestCreate_DuplicateSlug verifies that two posts with the same derived slug
conflict.
*/
func TestCreate_DuplicateSlug(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, &fakeUploader{})

	_, err := service.Create(context.Background(), CreateInput{
		Title: "Same Title", Content: "<p>A.</p>", Author: "A", Category: CategoryNews,
	})
	require.NoError(t, err)

	_, err = service.Create(context.Background(), CreateInput{
		Title: "Same Title", Content: "<p>B.</p>", Author: "B", Category: CategoryNews,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
}

/*
TestNormalizeTags verifies tag cleanup: lowercase, trimmed, de-duplicated,
first-occurrence order.
*/
func TestNormalizeTags(t *testing.T) {
	tags := normalizeTags([]string{" Forex ", "forex", "GOLD", "", "gold", "indices"})

	assert.Equal(t, []string{"forex", "gold", "indices"}, tags)
}
