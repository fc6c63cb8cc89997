// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

/*
Package media is the client for the object-storage service that backs every
image and video on the platform.

It accepts three input shapes and always answers with a stable retrieval URL:

  - An absolute http(s) URL — returned unchanged, with no upload side effect.
    This makes every upload call idempotent for already-resolved assets.
  - A base64 data-URI — decoded and stored.
  - Raw bytes from a multipart part — stored as-is.

Objects are namespaced by asset type and destination ID, so all assets of a
course or blog post live under one prefix and can be audited together.
*/
package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/tradewayhq/tradeway/internal/platform/apperr"
)

// AssetType selects the storage namespace and transformation profile for an
// uploaded object.
type AssetType string

const (
	// AssetThumbnail is a course thumbnail (fixed-aspect crop profile).
	AssetThumbnail AssetType = "thumbnail"
	// AssetCover is a blog cover image (fixed-aspect crop profile).
	AssetCover AssetType = "cover"
	// AssetContent is an inline blog content image (scale/quality profile).
	AssetContent AssetType = "content"
	// AssetVideo is a course lesson video (scale/quality profile).
	AssetVideo AssetType = "video"
	// AssetResource is a downloadable course attachment (stored verbatim).
	AssetResource AssetType = "resource"
)

// Uploader is the contract every media-producing service depends on.
//
// # Failure Semantics
//
// A failed upload surfaces as [apperr.Upstream]; callers abort their whole
// operation on the first failure, so no partially-resolved document is ever
// persisted.
type Uploader interface {
	// UploadDataURI resolves a string reference to a stable URL.
	// Absolute http(s) input is passed through unchanged.
	UploadDataURI(ctx context.Context, input, destinationID string, assetType AssetType) (string, error)

	// UploadStream stores raw bytes read from reader.
	UploadStream(ctx context.Context, reader io.Reader, size int64, filename, destinationID string, assetType AssetType) (string, error)
}

// dataURIPattern matches a base64 data-URI and captures the MIME subtype and payload.
var dataURIPattern = regexp.MustCompile(`^data:([a-z]+/[a-z0-9.+-]+);base64,([A-Za-z0-9+/=]+)$`)

// IsAbsoluteURL reports whether the input is already a resolved http(s) URL.
func IsAbsoluteURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// IsDataURI reports whether the input looks like a base64 data-URI.
func IsDataURI(input string) bool {
	return strings.HasPrefix(input, "data:")
}

// DecodeDataURI splits a base64 data-URI into its MIME type and raw bytes.
func DecodeDataURI(input string) (contentType string, payload []byte, err error) {
	match := dataURIPattern.FindStringSubmatch(input)
	if match == nil {
		return "", nil, apperr.ValidationError("Malformed data URI")
	}

	decoded, err := base64.StdEncoding.DecodeString(match[2])
	if err != nil {
		return "", nil, apperr.ValidationError("Data URI payload is not valid base64")
	}

	return match[1], decoded, nil
}

// extensionForContentType maps common MIME types to file extensions.
// Unknown types fall back to ".bin" rather than failing the upload.
func extensionForContentType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "application/pdf":
		return ".pdf"
	default:
		return ".bin"
	}
}

// objectName builds the storage key for an asset:
//
//	<type>s/<destinationID>/<uniqueID><ext>
func objectName(assetType AssetType, destinationID, uniqueID, extension string) string {
	return fmt.Sprintf("%ss/%s/%s%s", assetType, destinationID, uniqueID, extension)
}
