// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package media_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewayhq/tradeway/internal/media"
)

/*
TestIsAbsoluteURL distinguishes resolved URLs from everything else.
*/
func TestIsAbsoluteURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"https", "https://cdn.tradeway.app/media/x.png", true},
		{"http", "http://localhost:9000/media/x.png", true},
		{"data_uri", "data:image/png;base64,aGk=", false},
		{"relative_path", "/media/x.png", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, media.IsAbsoluteURL(tt.input))
		})
	}
}

/*
TestDecodeDataURI covers payload extraction and the rejection of malformed input.
*/
func TestDecodeDataURI(t *testing.T) {
	payload := []byte("fake image bytes")
	encoded := base64.StdEncoding.EncodeToString(payload)

	t.Run("valid_png", func(t *testing.T) {
		contentType, decoded, err := media.DecodeDataURI("data:image/png;base64," + encoded)
		require.NoError(t, err)
		assert.Equal(t, "image/png", contentType)
		assert.Equal(t, payload, decoded)
	})

	t.Run("valid_jpeg", func(t *testing.T) {
		contentType, _, err := media.DecodeDataURI("data:image/jpeg;base64," + encoded)
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", contentType)
	})

	t.Run("missing_scheme", func(t *testing.T) {
		_, _, err := media.DecodeDataURI("image/png;base64," + encoded)
		assert.Error(t, err)
	})

	t.Run("not_base64_marker", func(t *testing.T) {
		_, _, err := media.DecodeDataURI("data:image/png;utf8,hello")
		assert.Error(t, err)
	})

	t.Run("invalid_payload", func(t *testing.T) {
		_, _, err := media.DecodeDataURI("data:image/png;base64,!!notbase64!!")
		assert.Error(t, err)
	})
}
