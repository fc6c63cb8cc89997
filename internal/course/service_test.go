// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package course

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewayhq/tradeway/internal/media"
	"github.com/tradewayhq/tradeway/internal/platform/apperr"
)

// # Fakes

type fakeRepository struct {
	courses      map[string]*Course
	createCalls  int
	replaceCalls int
}

func newFakeRepository(courses ...*Course) *fakeRepository {
	repo := &fakeRepository{courses: map[string]*Course{}}
	for _, courseDocument := range courses {
		repo.courses[courseDocument.ID] = courseDocument
	}
	return repo
}

func (r *fakeRepository) Create(_ context.Context, course *Course) error {
	r.createCalls++
	r.courses[course.ID] = course
	return nil
}

func (r *fakeRepository) FindByID(_ context.Context, id string) (*Course, error) {
	if courseDocument, ok := r.courses[id]; ok {
		return courseDocument, nil
	}
	return nil, apperr.NotFound("Course")
}

func (r *fakeRepository) UpdateMetadata(_ context.Context, course *Course) error {
	if _, ok := r.courses[course.ID]; !ok {
		return apperr.NotFound("Course")
	}
	r.courses[course.ID] = course
	return nil
}

func (r *fakeRepository) ReplaceChapters(_ context.Context, id string, chapters []Chapter, totalVideos int, totalDuration string) error {
	r.replaceCalls++
	courseDocument, ok := r.courses[id]
	if !ok {
		return apperr.NotFound("Course")
	}
	courseDocument.Chapters = chapters
	courseDocument.TotalVideos = totalVideos
	courseDocument.TotalDuration = totalDuration
	return nil
}

func (r *fakeRepository) List(_ context.Context, _ Status, _, _ int) ([]*Course, int, error) {
	list := make([]*Course, 0, len(r.courses))
	for _, courseDocument := range r.courses {
		list = append(list, courseDocument)
	}
	return list, len(list), nil
}

func (r *fakeRepository) Delete(_ context.Context, id string) error {
	if _, ok := r.courses[id]; !ok {
		return apperr.NotFound("Course")
	}
	delete(r.courses, id)
	return nil
}

// fakeUploader resolves every upload to a URL derived from its input, so a
// test can verify which item received which upload result.
type fakeUploader struct {
	mu          sync.Mutex
	streamCalls int
	uriCalls    int
	failWith    error
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
	u.uriCalls++
	return "https://cdn.tradeway.app/resolved/" + input[len(input)-8:], nil
}

func (u *fakeUploader) UploadStream(_ context.Context, reader io.Reader, _ int64, filename, _ string, _ media.AssetType) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failWith != nil {
		return "", u.failWith
	}
	u.streamCalls++
	_, _ = io.ReadAll(reader)
	return "https://cdn.tradeway.app/files/" + filename, nil
}

func newTestService(repo *fakeRepository, uploader *fakeUploader) *Service {
	return NewService(repo, uploader, slog.New(slog.DiscardHandler))
}

// # Tests

/*
TestCreateCourse_Aggregates verifies that both derived fields equal the exact
aggregate of the chapter tree: TotalVideos is the count of videos across all
chapters, and TotalDuration is the seconds-precise sum in "HH:MM:SS" form
(inputs "5:30" and "10:45" total 975 seconds, i.e. "00:16:15").
*/
func TestCreateCourse_Aggregates(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, &fakeUploader{})

	input := CreateCourseInput{
		Title: "Price Action Foundations",
		Chapters: []Chapter{
			{
				Title: "Getting Started",
				Videos: []Video{
					{Title: "Welcome", Duration: "5:30", URL: "https://cdn.tradeway.app/v/welcome.mp4"},
				},
			},
			{
				Title: "Candlesticks",
				Videos: []Video{
					{Title: "Reading Candles", Duration: "10:45", URL: "https://cdn.tradeway.app/v/candles.mp4"},
				},
			},
		},
	}

	courseDocument, err := service.CreateCourse(context.Background(), input, FileSet{})

	require.NoError(t, err)
	assert.Equal(t, 2, courseDocument.TotalVideos)
	assert.Equal(t, "00:16:15", courseDocument.TotalDuration)
	assert.Equal(t, StatusDraft, courseDocument.Status, "status defaults to draft")
	assert.Equal(t, 1, repo.createCalls)

	// Every item got an identity; orders follow input positions.
	require.Len(t, courseDocument.Chapters, 2)
	for chapterIndex, chapter := range courseDocument.Chapters {
		assert.NotEmpty(t, chapter.ID)
		assert.Equal(t, chapterIndex, chapter.Order)
		for _, video := range chapter.Videos {
			assert.NotEmpty(t, video.ID)
		}
	}
}

/*
TestCreateCourse_MalformedDuration verifies that a non-conforming duration
string rejects the write with a field-level validation error instead of
corrupting the aggregate, and that nothing is persisted.
*/
func TestCreateCourse_MalformedDuration(t *testing.T) {
	cases := []string{"", "90", "1:2:3:4", "ten minutes", "-5:30", "5:99"}

	for _, malformed := range cases {
		t.Run("duration "+malformed, func(t *testing.T) {
			repo := newFakeRepository()
			service := newTestService(repo, &fakeUploader{})

			_, err := service.CreateCourse(context.Background(), CreateCourseInput{
				Title: "Broken Course",
				Chapters: []Chapter{
					{Title: "Only Chapter", Videos: []Video{{Title: "Only Video", Duration: malformed}}},
				},
			}, FileSet{})

			require.Error(t, err)
			assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
			assert.Zero(t, repo.createCalls, "nothing may be persisted on a rejected write")
		})
	}
}

/*
TestCreateCourse_ResolvesFileRefs verifies the upload orchestration: file
parts named by fileRef keys are uploaded, each item receives exactly its own
resolved URL regardless of upload interleaving, the transit-only FileRef
field is cleared, and resources get a human-readable size.
*/
func TestCreateCourse_ResolvesFileRefs(t *testing.T) {
	repo := newFakeRepository()
	uploader := &fakeUploader{}
	service := newTestService(repo, uploader)

	files := FileSet{
		"vid-a": {Filename: "intro.mp4", Data: make([]byte, 2048)},
		"vid-b": {Filename: "setup.mp4", Data: make([]byte, 1024)},
		"res-a": {Filename: "workbook.pdf", Data: make([]byte, 4096)},
	}

	input := CreateCourseInput{
		Title: "Risk Management",
		Chapters: []Chapter{
			{
				Title: "Basics",
				Videos: []Video{
					{Title: "Intro", Duration: "1:00", FileRef: "vid-a"},
					{Title: "Setup", Duration: "2:00", FileRef: "vid-b"},
				},
				Resources: []Resource{
					{Title: "Workbook", Type: ResourcePDF, FileRef: "res-a"},
				},
			},
		},
	}

	courseDocument, err := service.CreateCourse(context.Background(), input, files)

	require.NoError(t, err)
	videos := courseDocument.Chapters[0].Videos
	assert.Equal(t, "https://cdn.tradeway.app/files/intro.mp4", videos[0].URL)
	assert.Equal(t, "https://cdn.tradeway.app/files/setup.mp4", videos[1].URL)
	for _, video := range videos {
		assert.Empty(t, video.FileRef, "raw file reference must never reach storage")
	}

	resource := courseDocument.Chapters[0].Resources[0]
	assert.Equal(t, "https://cdn.tradeway.app/files/workbook.pdf", resource.URL)
	assert.Empty(t, resource.FileRef)
	assert.NotEmpty(t, resource.Size)

	assert.Equal(t, 3, uploader.streamCalls)
}

/*
TestCreateCourse_UnknownFileRef verifies that a fileRef naming a missing part
is a validation failure, not a silent skip.
*/
func TestCreateCourse_UnknownFileRef(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, &fakeUploader{})

	_, err := service.CreateCourse(context.Background(), CreateCourseInput{
		Title: "Incomplete Upload",
		Chapters: []Chapter{
			{Title: "Only Chapter", Videos: []Video{{Title: "Missing", Duration: "1:00", FileRef: "ghost"}}},
		},
	}, FileSet{})

	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	assert.Zero(t, repo.createCalls)
}

/*
TestCreateCourse_UploadFailureAborts verifies that a single failed upload
aborts the whole operation with nothing persisted.
*/
func TestCreateCourse_UploadFailureAborts(t *testing.T) {
	repo := newFakeRepository()
	uploader := &fakeUploader{failWith: apperr.Upstream(errors.New("bucket unreachable"))}
	service := newTestService(repo, uploader)

	_, err := service.CreateCourse(context.Background(), CreateCourseInput{
		Title: "Doomed Course",
		Chapters: []Chapter{
			{Title: "Only Chapter", Videos: []Video{{Title: "Clip", Duration: "1:00", FileRef: "vid"}}},
		},
	}, FileSet{"vid": {Filename: "clip.mp4", Data: []byte("x")}})

	require.Error(t, err)
	assert.Equal(t, "UPSTREAM_ERROR", apperr.As(err).Code)
	assert.Zero(t, repo.createCalls, "no partial persistence after an upload failure")
}

/*
TestReplaceChapters verifies the full-replacement semantics: the new tree
overwrites the old one entirely, both aggregates are recomputed, existing
item IDs survive, and new items get fresh ones.
*/
func TestReplaceChapters(t *testing.T) {
	existing := &Course{
		ID:            "course-1",
		Title:         "Swing Trading",
		Status:        StatusPublished,
		Chapters:      []Chapter{{ID: "old-chapter", Title: "Old", Videos: []Video{{ID: "old-video", Title: "Old", Duration: "9:59"}}}},
		TotalVideos:   1,
		TotalDuration: "00:09:59",
	}
	repo := newFakeRepository(existing)
	service := newTestService(repo, &fakeUploader{})

	replacement := []Chapter{
		{
			ID:    "old-chapter",
			Title: "Reworked",
			Videos: []Video{
				{ID: "old-video", Title: "Kept", Duration: "5:30", URL: "https://cdn.tradeway.app/v/kept.mp4"},
				{Title: "Added", Duration: "10:45", URL: "https://cdn.tradeway.app/v/added.mp4"},
			},
		},
	}

	courseDocument, err := service.ReplaceChapters(context.Background(), "course-1", replacement, FileSet{})

	require.NoError(t, err)
	assert.Equal(t, 2, courseDocument.TotalVideos)
	assert.Equal(t, "00:16:15", courseDocument.TotalDuration)
	assert.Equal(t, "old-chapter", courseDocument.Chapters[0].ID)
	assert.Equal(t, "old-video", courseDocument.Chapters[0].Videos[0].ID)
	assert.NotEmpty(t, courseDocument.Chapters[0].Videos[1].ID)
	assert.Equal(t, 1, repo.replaceCalls)
}

/*
TestReplaceChapters_UnknownCourse verifies the NotFound contract.
*/
func TestReplaceChapters_UnknownCourse(t *testing.T) {
	service := newTestService(newFakeRepository(), &fakeUploader{})

	_, err := service.ReplaceChapters(context.Background(), "missing", []Chapter{}, FileSet{})

	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestUpdateCourse_MetadataOnly verifies that a metadata edit never touches the
chapter tree or the derived aggregates.
*/
func TestUpdateCourse_MetadataOnly(t *testing.T) {
	existing := &Course{
		ID:            "course-1",
		Title:         "Old Title",
		Status:        StatusDraft,
		Chapters:      []Chapter{{ID: "ch", Title: "Chapter", Videos: []Video{{ID: "v", Title: "Video", Duration: "3:00"}}}},
		TotalVideos:   1,
		TotalDuration: "00:03:00",
	}
	repo := newFakeRepository(existing)
	service := newTestService(repo, &fakeUploader{})

	newTitle := "New Title"
	newStatus := StatusPublished
	courseDocument, err := service.UpdateCourse(context.Background(), "course-1", UpdateCourseInput{
		Title:  &newTitle,
		Status: &newStatus,
	}, FileSet{})

	require.NoError(t, err)
	assert.Equal(t, "New Title", courseDocument.Title)
	assert.Equal(t, StatusPublished, courseDocument.Status)
	assert.Equal(t, 1, courseDocument.TotalVideos)
	assert.Equal(t, "00:03:00", courseDocument.TotalDuration)
	assert.Len(t, courseDocument.Chapters, 1)
}

/*
TestCreateCourse_AbsoluteURLsUntouched verifies that media already in
absolute http(s) form triggers no upload at all.
*/
func TestCreateCourse_AbsoluteURLsUntouched(t *testing.T) {
	uploader := &fakeUploader{}
	service := newTestService(newFakeRepository(), uploader)

	courseDocument, err := service.CreateCourse(context.Background(), CreateCourseInput{
		Title: "Prelinked Course",
		Chapters: []Chapter{
			{Title: "Only Chapter", Videos: []Video{
				{Title: "Hosted", Duration: "4:20", URL: "https://videos.example.com/hosted.mp4"},
			}},
		},
	}, FileSet{})

	require.NoError(t, err)
	assert.Equal(t, "https://videos.example.com/hosted.mp4", courseDocument.Chapters[0].Videos[0].URL)
	assert.Zero(t, uploader.streamCalls)
	assert.Zero(t, uploader.uriCalls)
}
