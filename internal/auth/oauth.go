// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/tradewayhq/tradeway/internal/platform/apperr"
	"github.com/tradewayhq/tradeway/internal/platform/constants"
	"github.com/tradewayhq/tradeway/internal/platform/sec"
	"github.com/tradewayhq/tradeway/pkg/uuidv7"
)

// googleUserInfoURL returns the OpenID profile of the token's owner.
const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// userInfoTimeout bounds the profile fetch against a slow provider.
const userInfoTimeout = 10 * time.Second

// OAuthConfig holds the provider credentials for Google sign-in.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// OAuthService implements the Google authorization-code flow.
//
// # Flow
//
//  1. BeginFlow stores a single-use state nonce and returns the provider
//     authorization URL.
//  2. The provider redirects back with ?code and ?state.
//  3. CompleteFlow consumes the nonce, exchanges the code, fetches the
//     profile, and upserts the account by email.
//
// The resulting [Identity] carries no role; the session service resolves the
// role lazily at token issuance.
type OAuthService struct {
	config *oauth2.Config
	users  UserRepository
	states StateStore
	logger *slog.Logger
}

// NewOAuthService constructs the Google OAuth flow handler.
func NewOAuthService(cfg OAuthConfig, users UserRepository, states StateStore, logger *slog.Logger) *OAuthService {
	return &OAuthService{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		users:  users,
		states: states,
		logger: logger,
	}
}

// BeginFlow creates a state nonce and returns the provider URL to redirect
// the browser to.
func (service *OAuthService) BeginFlow(ctx context.Context) (string, error) {
	state, err := sec.GenerateSecureToken(16)
	if err != nil {
		return "", fmt.Errorf("oauth_state_generation_failed: %w", err)
	}

	if err := service.states.Save(ctx, state, constants.OAuthStateTTL); err != nil {
		return "", err
	}

	return service.config.AuthCodeURL(state), nil
}

// googleProfile is the subset of the userinfo response Tradeway consumes.
type googleProfile struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// CompleteFlow handles the provider callback: state check, code exchange,
// profile fetch, and account upsert.
//
// # State Handling
//
// The nonce is consumed before anything else. A replayed or forged callback
// finds no nonce and fails with 401 before any provider traffic happens.
func (service *OAuthService) CompleteFlow(ctx context.Context, state, code string) (Identity, error) {
	// ── 1. Consume State Nonce ────────────────────────────────────────────

	if state == "" || code == "" {
		return Identity{}, apperr.Unauthorized("Invalid OAuth callback")
	}

	taken, err := service.states.Take(ctx, state)
	if err != nil {
		return Identity{}, err
	}
	if !taken {
		return Identity{}, apperr.Unauthorized("Invalid or expired OAuth state")
	}

	// ── 2. Exchange Code ──────────────────────────────────────────────────

	token, err := service.config.Exchange(ctx, code)
	if err != nil {
		service.logger.Warn("oauth_code_exchange_failed", slog.Any("error", err))
		return Identity{}, apperr.Unauthorized("OAuth code exchange failed")
	}

	// ── 3. Fetch Profile ──────────────────────────────────────────────────

	profile, err := service.fetchProfile(ctx, token)
	if err != nil {
		return Identity{}, err
	}

	if profile.Email == "" || !profile.EmailVerified {
		return Identity{}, apperr.Unauthorized("OAuth account has no verified email")
	}

	// ── 4. Upsert Account ─────────────────────────────────────────────────

	user, err := service.upsertUser(ctx, profile)
	if err != nil {
		return Identity{}, err
	}

	// Role left empty on purpose: token issuance resolves it lazily.
	return Identity{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	}, nil
}

// fetchProfile retrieves the userinfo document with the provider token.
func (service *OAuthService) fetchProfile(ctx context.Context, token *oauth2.Token) (*googleProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, userInfoTimeout)
	defer cancel()

	client := service.config.Client(ctx, token)
	response, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, apperr.Upstream(fmt.Errorf("oauth_userinfo_request_failed: %w", err))
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return nil, apperr.Upstream(fmt.Errorf("oauth_userinfo_status_%d: %s", response.StatusCode, body))
	}

	profile := &googleProfile{}
	if err := json.NewDecoder(response.Body).Decode(profile); err != nil {
		return nil, apperr.Upstream(fmt.Errorf("oauth_userinfo_decode_failed: %w", err))
	}

	return profile, nil
}

// upsertUser finds the account by email or creates it on first sign-in.
//
// OAuth accounts are created without a password hash; they can never sign in
// with credentials unless a password is set through a separate flow.
func (service *OAuthService) upsertUser(ctx context.Context, profile *googleProfile) (*User, error) {
	existing, err := service.users.FindByEmail(ctx, profile.Email)
	if err == nil {
		return existing, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	user := &User{
		ID:    uuidv7.New(),
		Name:  profile.Name,
		Email: profile.Email,
		Image: profile.Picture,
		Role:  sec.RoleUser,
	}

	if err := service.users.Create(ctx, user); err != nil {
		// Concurrent first sign-in from two devices: the loser re-reads.
		if apperr.IsConflict(err) {
			return service.users.FindByEmail(ctx, profile.Email)
		}
		return nil, err
	}

	service.logger.Info("user_registered_oauth", slog.String("user_id", user.ID))

	return user, nil
}
