// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package waitlist

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tradewayhq/tradeway/internal/platform/middleware"
	requestutil "github.com/tradewayhq/tradeway/internal/platform/request"
	"github.com/tradewayhq/tradeway/internal/platform/respond"
	"github.com/tradewayhq/tradeway/pkg/pagination"
)

// Handler exposes the waitlist endpoints over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates the waitlist HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the waitlist router: public signup, admin-gated listing.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.join)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdmin)
		admin.Get("/", handler.list)
	})

	return router
}

func (handler *Handler) join(writer http.ResponseWriter, request *http.Request) {
	input := JoinInput{}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.service.Join(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entry)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	entries, total, err := handler.service.List(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, entries, pagination.NewMeta(params.Page, params.Limit, total))
}
