// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tradewayhq/tradeway/internal/platform/apperr"
	"github.com/tradewayhq/tradeway/internal/platform/config"
	"github.com/tradewayhq/tradeway/pkg/uuidv7"
)

// Store implements [Uploader] on top of a MinIO / S3-compatible bucket.
type Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    *slog.Logger
}

// NewStore connects to the object-storage endpoint and ensures the media
// bucket exists.
//
// # Parameters
//   - ctx: Context for the bucket existence check.
//   - cfg: Application configuration carrying endpoint and credentials.
//   - logger: Structured logger for storage events.
func NewStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	client, err := minio.New(cfg.MediaEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MediaAccessKey, cfg.MediaSecretKey, ""),
		Secure: cfg.MediaUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("media: failed to create client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MediaBucket)
	if err != nil {
		return nil, fmt.Errorf("media: bucket check failed: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MediaBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("media: failed to create bucket %q: %w", cfg.MediaBucket, err)
		}
	}

	logger.Info("media store connected",
		slog.String("endpoint", cfg.MediaEndpoint),
		slog.String("bucket", cfg.MediaBucket),
	)

	return &Store{
		client:    client,
		bucket:    cfg.MediaBucket,
		publicURL: strings.TrimSuffix(cfg.MediaPublicURL, "/"),
		logger:    logger,
	}, nil
}

// UploadDataURI resolves a string media reference to a stable URL.
//
// # Contract
//
//   - Absolute http(s) input is returned unchanged — the asset is already
//     resolved, and re-uploading would duplicate storage.
//   - A data-URI is decoded and stored under the destination namespace.
//   - Anything else is rejected as a validation error.
func (store *Store) UploadDataURI(ctx context.Context, input, destinationID string, assetType AssetType) (string, error) {
	if IsAbsoluteURL(input) {
		return input, nil
	}

	contentType, payload, err := DecodeDataURI(input)
	if err != nil {
		return "", err
	}

	extension := extensionForContentType(contentType)
	key := objectName(assetType, destinationID, uuidv7.New(), extension)

	_, err = store.client.PutObject(ctx, store.bucket, key,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"asset-type":     string(assetType),
				"destination-id": destinationID,
				"uploaded-at":    time.Now().Format(time.RFC3339),
			},
		})
	if err != nil {
		return "", apperr.Upstream(fmt.Errorf("media: put object %q: %w", key, err))
	}

	return store.urlFor(key), nil
}

// UploadStream stores raw bytes read from reader under the destination
// namespace and returns the public URL.
func (store *Store) UploadStream(ctx context.Context, reader io.Reader, size int64, filename, destinationID string, assetType AssetType) (string, error) {
	extension := strings.ToLower(filepath.Ext(filename))
	if extension == "" {
		extension = ".bin"
	}

	contentType := mime.TypeByExtension(extension)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := objectName(assetType, destinationID, uuidv7.New(), extension)

	_, err := store.client.PutObject(ctx, store.bucket, key, reader, size,
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"asset-type":        string(assetType),
				"destination-id":    destinationID,
				"original-filename": filename,
				"uploaded-at":       time.Now().Format(time.RFC3339),
			},
		})
	if err != nil {
		return "", apperr.Upstream(fmt.Errorf("media: put object %q: %w", key, err))
	}

	store.logger.Debug("media_object_stored",
		slog.String("key", key),
		slog.Int64("size", size),
	)

	return store.urlFor(key), nil
}

// urlFor builds the stable public retrieval URL for a stored object.
func (store *Store) urlFor(key string) string {
	return fmt.Sprintf("%s/%s/%s", store.publicURL, store.bucket, key)
}
