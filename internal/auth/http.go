// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tradewayhq/tradeway/internal/platform/apperr"
	"github.com/tradewayhq/tradeway/internal/platform/constants"
	"github.com/tradewayhq/tradeway/internal/platform/middleware"
	requestutil "github.com/tradewayhq/tradeway/internal/platform/request"
	"github.com/tradewayhq/tradeway/internal/platform/respond"
	"github.com/tradewayhq/tradeway/internal/platform/sec"
	"github.com/tradewayhq/tradeway/pkg/pagination"
)

// Handler exposes the identity endpoints over HTTP.
type Handler struct {
	service      *Service
	oauth        *OAuthService
	secureCookie bool
}

// NewHandler creates the auth HTTP handler. secureCookie should be true in
// production so refresh cookies are HTTPS-only.
func NewHandler(service *Service, oauth *OAuthService, secureCookie bool) *Handler {
	return &Handler{service: service, oauth: oauth, secureCookie: secureCookie}
}

// Routes returns the public authentication router.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)

	router.Get("/oauth/google", handler.oauthBegin)
	router.Get("/oauth/google/callback", handler.oauthCallback)

	return router
}

// ProfileRoutes returns the owner-session profile router, mounted at
// /users.
func (handler *Handler) ProfileRoutes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireAuth)
	router.Get("/me", handler.me)
	router.Patch("/me", handler.updateProfile)

	return router
}

// AdminRoutes returns the admin-gated user administration router, mounted at
// /admin/users behind [middleware.RequireAdmin].
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listUsers)
	router.Patch("/{id}/role", handler.setRole)

	return router
}

// CheckAdmin implements the explicit access probe the dashboard calls before
// rendering. Mounted behind [middleware.Authenticate] only, so the 401/403
// distinction is made here rather than by the gate.
func (handler *Handler) CheckAdmin(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.service.AdminCheck(requestutil.Claims(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

// # Request / Response shapes

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	User        *User  `json:"user,omitempty"`
}

// # Handlers

func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	payload := registerRequest{}
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Register(request.Context(), RegisterInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	payload := loginRequest{}
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.Login(request.Context(), LoginInput{
		Email:     payload.Email,
		Password:  payload.Password,
		UserAgent: request.UserAgent(),
		IPAddress: request.RemoteAddr,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setRefreshCookie(writer, session)
	respond.OK(writer, sessionResponse{
		AccessToken: session.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(constants.AccessTokenTTL.Seconds()),
		User:        session.User,
	})
}

func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	refreshToken := handler.refreshTokenFrom(request)
	if refreshToken == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token"))
		return
	}

	session, err := handler.service.Refresh(request.Context(), refreshToken,
		request.UserAgent(), request.RemoteAddr)
	if err != nil {
		handler.clearRefreshCookie(writer)
		respond.Error(writer, request, err)
		return
	}

	handler.setRefreshCookie(writer, session)
	respond.OK(writer, sessionResponse{
		AccessToken: session.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(constants.AccessTokenTTL.Seconds()),
		User:        session.User,
	})
}

func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if refreshToken := handler.refreshTokenFrom(request); refreshToken != "" {
		if err := handler.service.Logout(request.Context(), refreshToken); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	handler.clearRefreshCookie(writer)
	respond.NoContent(writer)
}

func (handler *Handler) oauthBegin(writer http.ResponseWriter, request *http.Request) {
	authURL, err := handler.oauth.BeginFlow(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.Redirect(writer, request, authURL, http.StatusSeeOther)
}

// oauthCallback completes the provider round trip and issues a session. The
// browser ends up back on the home page with the refresh cookie set; the SPA
// then calls /refresh to obtain its access token.
func (handler *Handler) oauthCallback(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	identity, err := handler.oauth.CompleteFlow(request.Context(), query.Get("state"), query.Get("code"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.IssueSession(request.Context(), identity,
		request.UserAgent(), request.RemoteAddr)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setRefreshCookie(writer, session)
	http.Redirect(writer, request, constants.DeniedRedirectPath, http.StatusSeeOther)
}

func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.users.FindByID(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Image    *string `json:"image"`
	Bio      *string `json:"bio"`
	Location *string `json:"location"`
	Website  *string `json:"website"`
}

func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	payload := updateProfileRequest{}
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		Name:     payload.Name,
		Image:    payload.Image,
		Bio:      payload.Bio,
		Location: payload.Location,
		Website:  payload.Website,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, total, err := handler.service.ListUsers(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}

type setRoleRequest struct {
	Role string `json:"role"`
}

func (handler *Handler) setRole(writer http.ResponseWriter, request *http.Request) {
	payload := setRoleRequest{}
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID := requestutil.Param(request, "id")
	if err := handler.service.SetRole(request.Context(), userID, sec.Role(payload.Role)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Cookie plumbing

func (handler *Handler) setRefreshCookie(writer http.ResponseWriter, session *LoginSession) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    session.RefreshToken,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  session.RefreshTokenExpiresAt,
		HttpOnly: true,
		Secure:   handler.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (handler *Handler) clearRefreshCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   handler.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// refreshTokenFrom reads the refresh token from the scoped cookie, falling
// back to a JSON body field for non-browser clients.
func (handler *Handler) refreshTokenFrom(request *http.Request) string {
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	payload := struct {
		RefreshToken string `json:"refresh_token"`
	}{}
	if err := requestutil.DecodeJSON(request, &payload); err == nil {
		return payload.RefreshToken
	}

	return ""
}
