// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/tradewayhq/tradeway/internal/platform/apperr"
	"github.com/tradewayhq/tradeway/internal/platform/constants"
	"github.com/tradewayhq/tradeway/internal/platform/ctxutil"
	"github.com/tradewayhq/tradeway/internal/platform/respond"
	"github.com/tradewayhq/tradeway/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the token service
// implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.SessionClaims, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, parse and verify the JWT via [TokenVerifier].
//  4. Inject [*sec.SessionClaims] into the request context for downstream use.
//
// After this point the claims — including the role — are the only identity
// the request carries; no handler re-reads the role from the store.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyToken(parts[1])
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithSession(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetSession(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireAdmin blocks API requests whose session role is not admin.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It implies
// [RequireAuth], so the two never need to be mounted together.
//
// # Contract
//
// This is a pure predicate over the role claim carried by the token. It
// performs no store read: the token is authoritative between issuance and
// refresh. The denial message is human-readable because the dashboard
// surfaces it to the end user as a notification.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetSession(request.Context())

		// ── 1. Authentication Check ───────────────────────────────────────
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}

		// ── 2. Authorization Check ────────────────────────────────────────
		if !sec.Role(claims.Role).IsAdmin() {
			respond.Error(writer, request, apperr.Forbidden("Admin access is required to view this page"))
			return
		}

		next.ServeHTTP(writer, request)
	})
}

// PageGate protects browser-facing route prefixes with redirects instead of
// JSON errors.
//
// # Contract
//
//   - Path not under the protected prefix → pass through unchanged.
//   - No session → 303 See Other to the sign-in page, carrying the original
//     path in a redirect query parameter.
//   - Session with a non-admin role → 303 See Other to the public home page.
//   - Admin session → pass through unchanged.
//
// This is the page-load twin of [RequireAdmin]; both decide from the same
// role claim, so a session denied by one is always denied by the other.
func PageGate(protectedPrefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if !strings.HasPrefix(request.URL.Path, protectedPrefix) {
				next.ServeHTTP(writer, request)
				return
			}

			claims := ctxutil.GetSession(request.Context())

			if claims == nil {
				target := constants.SignInPath + "?" + constants.SignInRedirectParam +
					"=" + url.QueryEscape(request.URL.Path)
				http.Redirect(writer, request, target, http.StatusSeeOther)
				return
			}

			if !sec.Role(claims.Role).IsAdmin() {
				http.Redirect(writer, request, constants.DeniedRedirectPath, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
