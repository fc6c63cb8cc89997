// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package blog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tradewayhq/tradeway/internal/platform/middleware"
	requestutil "github.com/tradewayhq/tradeway/internal/platform/request"
	"github.com/tradewayhq/tradeway/internal/platform/respond"
	"github.com/tradewayhq/tradeway/pkg/pagination"
)

// Handler exposes the blog endpoints over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates the blog HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the blog router: public reads, admin-gated mutations.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/{idOrSlug}", handler.get)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdmin)
		admin.Post("/", handler.create)
		admin.Patch("/{id}", handler.update)
		admin.Delete("/{id}", handler.remove)
	})

	return router
}

// list supports the independently optional query filters `search`,
// `category`, `status`, and `tag`, ANDed when combined.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	query := request.URL.Query()

	filters := ListFilters{
		Search:   query.Get("search"),
		Category: Category(query.Get("category")),
		Status:   Status(query.Get("status")),
		Tag:      query.Get("tag"),
	}

	posts, total, err := handler.service.List(request.Context(), filters, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, posts, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	post, err := handler.service.Get(request.Context(), requestutil.Param(request, "idOrSlug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, post)
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	input := CreateInput{}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.service.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, post)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	input := UpdateInput{}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.service.Update(request.Context(), requestutil.Param(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, post)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
