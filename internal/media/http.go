// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package media

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/tradewayhq/tradeway/internal/platform/request"
	"github.com/tradewayhq/tradeway/internal/platform/respond"
	"github.com/tradewayhq/tradeway/internal/platform/validate"
	"github.com/tradewayhq/tradeway/pkg/uuidv7"
)

// maxImageUploadBytes caps standalone image uploads at 10 MiB.
const maxImageUploadBytes = 10 << 20

// Handler exposes the standalone image-upload endpoint.
//
// # Scope
//
// This endpoint exists so cover and dashboard images can be uploaded without
// creating any document. It is deliberately its own route — upload-only
// requests do not pass through blog or course creation.
type Handler struct {
	uploader Uploader
}

// NewHandler constructs a new [Handler] with its uploader dependency.
func NewHandler(uploader Uploader) *Handler {
	return &Handler{uploader: uploader}
}

// Routes returns a [chi.Router] for media endpoints.
//
// # Endpoints
//   - POST /images : Uploads a single image (multipart or data-URI JSON body).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/images", handler.uploadImage)

	return router
}

// uploadImageRequest is the JSON body form of the upload endpoint.
type uploadImageRequest struct {
	Image string `json:"image"` // base64 data-URI or already-resolved URL
	Type  string `json:"type"`  // optional asset type, defaults to "cover"
}

// uploadImage handles POST /api/v1/uploads/images requests.
//
// Accepts either a multipart form with a "file" part or a JSON body with a
// base64 data-URI. Responds with the stable retrieval URL.
func (handler *Handler) uploadImage(writer http.ResponseWriter, request *http.Request) {
	destinationID := uuidv7.New()

	// ── 1. Multipart Form ─────────────────────────────────────────────────

	contentType := request.Header.Get("Content-Type")
	if len(contentType) >= 19 && contentType[:19] == "multipart/form-data" {
		if err := request.ParseMultipartForm(maxImageUploadBytes); err != nil {
			respond.Error(writer, request, validate.RequiredError("file", "multipart form could not be parsed"))
			return
		}

		file, header, err := request.FormFile("file")
		if err != nil {
			respond.Error(writer, request, validate.RequiredError("file", "file part is required"))
			return
		}
		defer file.Close()

		assetType := assetTypeOrDefault(request.FormValue("type"))

		url, err := handler.uploader.UploadStream(request.Context(), file, header.Size, header.Filename, destinationID, assetType)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		respond.Created(writer, map[string]string{"url": url})
		return
	}

	// ── 2. JSON Data-URI Body ─────────────────────────────────────────────

	var input uploadImageRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.Image == "" {
		respond.Error(writer, request, validate.RequiredError("image", "is required"))
		return
	}

	url, err := handler.uploader.UploadDataURI(request.Context(), input.Image, destinationID, assetTypeOrDefault(input.Type))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]string{"url": url})
}

// assetTypeOrDefault maps a client-supplied type string to a known asset
// type, defaulting to cover for plain image uploads.
func assetTypeOrDefault(raw string) AssetType {
	switch AssetType(raw) {
	case AssetThumbnail, AssetCover, AssetContent, AssetVideo, AssetResource:
		return AssetType(raw)
	default:
		return AssetCover
	}
}
