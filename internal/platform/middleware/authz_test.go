// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewayhq/tradeway/internal/platform/ctxutil"
	"github.com/tradewayhq/tradeway/internal/platform/sec"
)

// gateRequest runs one request through PageGate("/admin") with the given
// session claims (nil for anonymous) and reports whether the inner handler
// was reached.
func gateRequest(t *testing.T, path string, claims *sec.SessionClaims) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	reached := false
	inner := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		reached = true
		writer.WriteHeader(http.StatusOK)
	})

	request := httptest.NewRequest(http.MethodGet, path, nil)
	if claims != nil {
		request = request.WithContext(ctxutil.WithSession(request.Context(), claims))
	}

	recorder := httptest.NewRecorder()
	PageGate("/admin")(inner).ServeHTTP(recorder, request)

	return recorder, reached
}

/*
TestPageGate covers the full gate contract: unprotected paths pass for
everyone; protected paths redirect anonymous visitors to sign-in with the
original path carried along, redirect non-admin sessions home, and render
only for admin sessions.
*/
func TestPageGate(t *testing.T) {
	t.Run("unprotected path passes for anonymous", func(t *testing.T) {
		recorder, reached := gateRequest(t, "/blog/some-post", nil)

		assert.True(t, reached)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("anonymous visitor redirected to sign-in with return path", func(t *testing.T) {
		recorder, reached := gateRequest(t, "/admin/courses", nil)

		assert.False(t, reached, "protected page must never render for anonymous")
		require.Equal(t, http.StatusSeeOther, recorder.Code)
		assert.Equal(t, "/signin?redirect=%2Fadmin%2Fcourses", recorder.Header().Get("Location"))
	})

	t.Run("non-admin session redirected home", func(t *testing.T) {
		claims := &sec.SessionClaims{UserID: "u1", Role: "user"}
		recorder, reached := gateRequest(t, "/admin/courses", claims)

		assert.False(t, reached, "protected page must never render for non-admin")
		require.Equal(t, http.StatusSeeOther, recorder.Code)
		assert.Equal(t, "/", recorder.Header().Get("Location"))
	})

	t.Run("session without role claim redirected home", func(t *testing.T) {
		claims := &sec.SessionClaims{UserID: "u1"}
		_, reached := gateRequest(t, "/admin", claims)

		assert.False(t, reached, "unset role is never treated as admin")
	})

	t.Run("admin session renders", func(t *testing.T) {
		claims := &sec.SessionClaims{UserID: "u1", Role: "admin"}
		recorder, reached := gateRequest(t, "/admin/courses", claims)

		assert.True(t, reached)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

/*
TestRequireAdmin verifies the API twin of the page gate: JSON 401 for
anonymous callers, JSON 403 for non-admin sessions, pass-through for admins.
Both forms decide from the same role claim, so they can never disagree.
*/
func TestRequireAdmin(t *testing.T) {
	run := func(claims *sec.SessionClaims) (*httptest.ResponseRecorder, bool) {
		reached := false
		inner := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			reached = true
			writer.WriteHeader(http.StatusOK)
		})

		request := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
		if claims != nil {
			request = request.WithContext(ctxutil.WithSession(request.Context(), claims))
		}

		recorder := httptest.NewRecorder()
		RequireAdmin(inner).ServeHTTP(recorder, request)
		return recorder, reached
	}

	t.Run("anonymous gets 401", func(t *testing.T) {
		recorder, reached := run(nil)

		assert.False(t, reached)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("non-admin gets 403 with human-readable message", func(t *testing.T) {
		recorder, reached := run(&sec.SessionClaims{UserID: "u1", Role: "user"})

		assert.False(t, reached)
		assert.Equal(t, http.StatusForbidden, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Admin access is required")
	})

	t.Run("admin passes", func(t *testing.T) {
		recorder, reached := run(&sec.SessionClaims{UserID: "u1", Role: "admin"})

		assert.True(t, reached)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}
