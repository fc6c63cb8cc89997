// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package course

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tradewayhq/tradeway/internal/platform/middleware"
	requestutil "github.com/tradewayhq/tradeway/internal/platform/request"
	"github.com/tradewayhq/tradeway/internal/platform/respond"
	"github.com/tradewayhq/tradeway/internal/platform/validate"
	"github.com/tradewayhq/tradeway/pkg/pagination"
)

// maxMultipartMemory is the in-memory buffer threshold for multipart parsing;
// larger parts spill to temp files before being read back.
const maxMultipartMemory = 64 << 20 // 64 MiB

// dataFieldName is the multipart field carrying the JSON half of a course
// submission. File parts are named by the fileRef keys inside that JSON,
// plus the reserved "thumbnail" part.
const dataFieldName = "data"

// Handler exposes the course endpoints over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates the course HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the course router: public reads, admin-gated mutations.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdmin)
		admin.Post("/", handler.create)
		admin.Patch("/{id}", handler.update)
		admin.Put("/{id}/chapters", handler.replaceChapters)
		admin.Delete("/{id}", handler.remove)
	})

	return router
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	status := Status(request.URL.Query().Get("status"))

	courses, total, err := handler.service.List(request.Context(), status, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, courses, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	courseDocument, err := handler.service.Get(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, courseDocument)
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	input := CreateCourseInput{}
	files, err := decodeSubmission(request, &input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	courseDocument, err := handler.service.CreateCourse(request.Context(), input, files)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, courseDocument)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	input := UpdateCourseInput{}
	files, err := decodeSubmission(request, &input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	courseDocument, err := handler.service.UpdateCourse(request.Context(),
		requestutil.Param(request, "id"), input, files)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, courseDocument)
}

// replaceChaptersRequest is the JSON half of a chapters-replace submission.
type replaceChaptersRequest struct {
	Chapters []Chapter `json:"chapters"`
}

func (handler *Handler) replaceChapters(writer http.ResponseWriter, request *http.Request) {
	input := replaceChaptersRequest{}
	files, err := decodeSubmission(request, &input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	courseDocument, err := handler.service.ReplaceChapters(request.Context(),
		requestutil.Param(request, "id"), input.Chapters, files)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, courseDocument)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// decodeSubmission reads a course submission in either of its two shapes:
//
//   - multipart/form-data: the "data" field holds the JSON payload, and every
//     file part is buffered into the returned [FileSet] under its part name.
//   - application/json: plain body, empty file set.
func decodeSubmission(request *http.Request, target any) (FileSet, error) {
	mediaType, _, _ := mime.ParseMediaType(request.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		if err := requestutil.DecodeJSON(request, target); err != nil {
			return nil, err
		}
		return FileSet{}, nil
	}

	if err := request.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, validate.ErrInvalidJSON
	}

	payload := request.FormValue(dataFieldName)
	if payload == "" {
		return nil, validate.RequiredError(dataFieldName, "Multipart submissions must include a JSON 'data' field")
	}
	if err := json.Unmarshal([]byte(payload), target); err != nil {
		return nil, validate.ErrInvalidJSON
	}

	files := FileSet{}
	for partName, headers := range request.MultipartForm.File {
		if len(headers) == 0 {
			continue
		}

		part, err := headers[0].Open()
		if err != nil {
			return nil, validate.RequiredError(partName, "Unreadable file part")
		}

		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, validate.RequiredError(partName, "Unreadable file part")
		}

		files[partName] = UploadedFile{Filename: headers[0].Filename, Data: data}
	}

	return files, nil
}
