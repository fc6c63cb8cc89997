// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tradewayhq/tradeway/internal/platform/apperr"
	"github.com/tradewayhq/tradeway/internal/platform/constants"
	"github.com/tradewayhq/tradeway/internal/platform/sec"
	"github.com/tradewayhq/tradeway/internal/platform/validate"
	"github.com/tradewayhq/tradeway/pkg/uuidv7"
)

// ErrInvalidCredentials is the single error for every credential failure:
// missing fields, unknown email, password-less OAuth account, or a wrong
// password. One message for all four cases means a caller can never learn
// which half of the credential pair was wrong.
var ErrInvalidCredentials = apperr.Unauthorized("Invalid email or password")

// TokenProvider defines the contract for generating signed access tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string carrying the session
	// identity and role claims.
	GenerateAccessToken(userID, email, name, role string, timeToLive time.Duration) (string, error)
}

// Service implements the identity and session use cases.
//
// # Review Process
//
// This service is critical for security. Any change to hashing, sign-in, or
// token issuance logic needs a second reviewer.
type Service struct {
	users    UserRepository
	sessions SessionStore
	tokens   TokenProvider
	logger   *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(users UserRepository, sessions SessionStore, tokens TokenProvider, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register validates, hashes, and persists a brand new user account.
//
// # Business Rules
//   - Emails must be unique; the store's unique index is the authority and a
//     violation surfaces as [apperr.Conflict].
//   - Default role is always 'user'. There is no path to register as admin.
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	// ── 1. Validation ─────────────────────────────────────────────────────

	validator := &validate.Validator{}
	validator.Required("name", input.Name).MaxLen("name", input.Name, 120)
	validator.Required("email", input.Email)
	if input.Email != "" {
		validator.Email("email", input.Email)
	}
	validator.MinLen("password", input.Password, 8)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	// ── 2. Security ───────────────────────────────────────────────────────

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// ── 3. Entity Construction ────────────────────────────────────────────

	user := &User{
		ID:           uuidv7.New(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         sec.RoleUser,
	}

	// ── 4. Persistence ────────────────────────────────────────────────────

	// No existence pre-check: the unique index decides, race-free.
	if err := service.users.Create(ctx, user); err != nil {
		return nil, err
	}

	service.logger.Info("user_registered", slog.String("user_id", user.ID))

	return user, nil
}

// Authenticate validates an email/password pair and returns the matching
// account.
//
// # Failure Semantics
//
// Every failure path returns the identical [ErrInvalidCredentials]; which
// half of the pair failed is never disclosed. Authentication failure is
// terminal for the request — there is no retry or fallback.
func (service *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := service.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// Accounts created via OAuth have no password hash and cannot sign in
	// with credentials. Indistinguishable from a wrong password on purpose.
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	// Legacy records may predate the role column default.
	if user.Role == "" {
		user.Role = sec.RoleUser
	}

	return user, nil
}

// LoginInput defines a credential authentication attempt.
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

// Login validates credentials and issues the token pair.
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginSession, error) {
	user, err := service.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	// Credential identities carry the role straight from the record; no
	// second store read happens at issuance.
	identity := Identity{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	}

	session, err := service.IssueSession(ctx, identity, input.UserAgent, input.IPAddress)
	if err != nil {
		return nil, err
	}

	session.User = user
	return session, nil
}

// IssueSession produces the access/refresh token pair for an authenticated
// identity.
//
// # Lazy Role Resolution
//
// OAuth identities arrive without a role (the provider knows nothing about
// Tradeway roles). Only in that case is the role read from the store by
// email and attached to the token; identities that already carry a role
// cost no store round trip. A store failure during this lookup is logged
// and leaves the role unset — the token is still issued (fail-open here),
// and the authorization gate denies admin access for a role-less token
// (fail-closed where it matters).
func (service *Service) IssueSession(ctx context.Context, identity Identity, userAgent, ipAddress string) (*LoginSession, error) {
	// ── 1. Lazy Role Lookup ───────────────────────────────────────────────

	if identity.Role == "" {
		user, err := service.users.FindByEmail(ctx, identity.Email)
		switch {
		case err != nil:
			service.logger.Error("session_role_lookup_failed",
				slog.String("email", identity.Email),
				slog.Any("error", err),
			)
			// Role stays unset; the gate treats this session as non-admin.
		case user.Role != "":
			identity.Role = user.Role
		default:
			identity.Role = sec.RoleUser
		}
	}

	// ── 2. Access Token ───────────────────────────────────────────────────

	accessToken, err := service.tokens.GenerateAccessToken(
		identity.UserID, identity.Email, identity.Name, string(identity.Role),
		constants.AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	// ── 3. Refresh Session ────────────────────────────────────────────────

	refreshToken, err := sec.GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	expiresAt := time.Now().Add(constants.RefreshTokenTTL)
	session := &Session{
		ID:        uuidv7.New(),
		UserID:    identity.UserID,
		Email:     identity.Email,
		Name:      identity.Name,
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	if err := service.sessions.Save(ctx, sec.HashToken(refreshToken), session, constants.RefreshTokenTTL); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
	}, nil
}

// Refresh implements refresh-token rotation.
//
// The old session is revoked before new tokens are issued, so a stolen
// refresh token can be replayed at most zero times after its legitimate
// use. The role claim is re-read from the store at every refresh — this is
// the moment the cached role in the token is allowed to catch up with an
// administrative role change.
func (service *Service) Refresh(ctx context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {
	// ── 1. Find Existing Session ──────────────────────────────────────────

	tokenHash := sec.HashToken(refreshToken)
	session, err := service.sessions.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// ── 2. Rotation (Revoke Old Session) ──────────────────────────────────

	if err := service.sessions.Revoke(ctx, tokenHash); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	// ── 3. Load Current Account State ─────────────────────────────────────

	user, err := service.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("User not found or suspended")
	}

	// ── 4. Issue New Tokens ───────────────────────────────────────────────

	identity := Identity{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	}

	loginSession, err := service.IssueSession(ctx, identity, userAgent, ipAddress)
	if err != nil {
		return nil, err
	}

	loginSession.User = user
	return loginSession, nil
}

// Logout permanently revokes the session for the given refresh token.
// Unknown or already-revoked tokens succeed silently (idempotent).
func (service *Service) Logout(ctx context.Context, refreshToken string) error {
	return service.sessions.Revoke(ctx, sec.HashToken(refreshToken))
}

// # Authorization Check (explicit-request form)

// AdminCheckResult is the payload of the client-initiated access check.
type AdminCheckResult struct {
	Success bool     `json:"success"`
	Role    sec.Role `json:"role"`
}

// AdminCheck is the explicit-request twin of the route gate: given the
// session claims, it returns the caller's role and whether admin access is
// granted. Dashboard pages call this before rendering and redirect
// client-side on failure.
//
// Both this check and the gate middleware decide from the same role claim,
// so they can never disagree.
func (service *Service) AdminCheck(claims *sec.SessionClaims) (AdminCheckResult, error) {
	if claims == nil {
		return AdminCheckResult{}, apperr.Unauthorized("Authentication required")
	}

	role := sec.Role(claims.Role)
	if !role.IsAdmin() {
		return AdminCheckResult{Success: false, Role: role},
			apperr.Forbidden("Admin access is required to view this page")
	}

	return AdminCheckResult{Success: true, Role: role}, nil
}

// # User Administration

// ListUsers returns a page of accounts. Callers must be admin-gated at the
// route level; the service does not re-check.
func (service *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return service.users.List(ctx, limit, offset)
}

// UpdateProfileInput holds the owner-editable profile fields. Nil pointers
// mean "leave unchanged".
type UpdateProfileInput struct {
	Name     *string
	Image    *string
	Bio      *string
	Location *string
	Website  *string
}

// UpdateProfile applies a partial profile edit for the owning session.
//
// Role and email are not part of the input by construction: profile editing
// can never escalate privileges.
func (service *Service) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Image != nil {
		user.Image = *input.Image
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Location != nil {
		user.Location = *input.Location
	}
	if input.Website != nil {
		user.Website = *input.Website
	}

	validator := &validate.Validator{}
	validator.Required("name", user.Name).MaxLen("name", user.Name, 120)
	if user.Website != "" {
		validator.URL("website", user.Website)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SetRole performs the administrative role mutation.
//
// The new role takes effect in tokens only at the target's next issuance or
// refresh; in-flight access tokens keep their cached claim until expiry.
func (service *Service) SetRole(ctx context.Context, userID string, role sec.Role) error {
	if !role.Valid() {
		return validate.RequiredError("role", "must be 'user' or 'admin'")
	}

	if err := service.users.UpdateRole(ctx, userID, role); err != nil {
		return err
	}

	service.logger.Info("user_role_changed",
		slog.String("user_id", userID),
		slog.String("role", string(role)),
	)

	return nil
}
