// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewayhq/tradeway/internal/platform/apperr"
	"github.com/tradewayhq/tradeway/internal/platform/sec"
)

// # Fakes

type fakeUserRepo struct {
	byEmail     map[string]*User
	byID        map[string]*User
	findErr     error
	createCalls int
}

func newFakeUserRepo(users ...*User) *fakeUserRepo {
	repo := &fakeUserRepo{byEmail: map[string]*User{}, byID: map[string]*User{}}
	for _, user := range users {
		repo.byEmail[user.Email] = user
		repo.byID[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if user, ok := r.byID[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if user, ok := r.byEmail[email]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) Create(_ context.Context, user *User) error {
	r.createCalls++
	if _, exists := r.byEmail[user.Email]; exists {
		return apperr.Conflict("Email is already registered")
	}
	r.byEmail[user.Email] = user
	r.byID[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, user *User) error {
	if _, ok := r.byID[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, userID string, role sec.Role) error {
	user, ok := r.byID[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.Role = role
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, _, _ int) ([]*User, int, error) {
	users := make([]*User, 0, len(r.byID))
	for _, user := range r.byID {
		users = append(users, user)
	}
	return users, len(users), nil
}

type fakeSessionStore struct {
	sessions map[string]*Session
	revoked  []string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]*Session{}}
}

func (s *fakeSessionStore) Save(_ context.Context, tokenHash string, session *Session, _ time.Duration) error {
	s.sessions[tokenHash] = session
	return nil
}

func (s *fakeSessionStore) FindByTokenHash(_ context.Context, tokenHash string) (*Session, error) {
	if session, ok := s.sessions[tokenHash]; ok {
		return session, nil
	}
	return nil, apperr.Unauthorized("Invalid or expired refresh token")
}

func (s *fakeSessionStore) Revoke(_ context.Context, tokenHash string) error {
	delete(s.sessions, tokenHash)
	s.revoked = append(s.revoked, tokenHash)
	return nil
}

// fakeTokens records the role passed at generation so tests can inspect the
// claim that would have been minted.
type fakeTokens struct {
	lastRole string
	calls    int
}

func (t *fakeTokens) GenerateAccessToken(_, _, _, role string, _ time.Duration) (string, error) {
	t.calls++
	t.lastRole = role
	return "token-" + role, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := sec.HashPassword(password)
	require.NoError(t, err)
	return hash
}

// # Tests

/*
TestAuthenticate_UniformFailureMessage verifies that every credential failure
shape produces the exact same error, so a caller can never tell whether the
email or the password was wrong.
*/
func TestAuthenticate_UniformFailureMessage(t *testing.T) {
	repo := newFakeUserRepo(
		&User{ID: "u1", Email: "member@example.com", PasswordHash: mustHash(t, "correct-horse"), Role: sec.RoleUser},
		&User{ID: "u2", Email: "oauth-only@example.com", PasswordHash: "", Role: sec.RoleUser},
	)
	service := NewService(repo, newFakeSessionStore(), &fakeTokens{}, discardLogger())

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{name: "missing email", email: "", password: "whatever"},
		{name: "missing password", email: "member@example.com", password: ""},
		{name: "unknown email", email: "nobody@example.com", password: "whatever"},
		{name: "account without password hash", email: "oauth-only@example.com", password: "whatever"},
		{name: "wrong password", email: "member@example.com", password: "wrong-horse"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user, err := service.Authenticate(context.Background(), tc.email, tc.password)

			assert.Nil(t, user)
			require.Error(t, err)
			assert.Equal(t, ErrInvalidCredentials.Error(), err.Error())
			assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
		})
	}
}

/*
TestAuthenticate_Success verifies the happy path and the legacy-record role
default.
*/
func TestAuthenticate_Success(t *testing.T) {
	repo := newFakeUserRepo(
		&User{ID: "u1", Email: "member@example.com", PasswordHash: mustHash(t, "correct-horse"), Role: ""},
	)
	service := NewService(repo, newFakeSessionStore(), &fakeTokens{}, discardLogger())

	user, err := service.Authenticate(context.Background(), "member@example.com", "correct-horse")

	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, sec.RoleUser, user.Role, "empty stored role must default to user")
}

/*
TestIssueSession_LazyRoleLookup covers the role resolution matrix at token
issuance:

  - identity already carries a role  → no store read
  - identity without a role          → role read from the store by email
  - store failure during the lookup  → token still issued, role left unset
*/
func TestIssueSession_LazyRoleLookup(t *testing.T) {
	t.Run("role present skips the store", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.findErr = errors.New("store must not be called")
		tokens := &fakeTokens{}
		service := NewService(repo, newFakeSessionStore(), tokens, discardLogger())

		identity := Identity{UserID: "u1", Email: "admin@example.com", Name: "Admin", Role: sec.RoleAdmin}
		session, err := service.IssueSession(context.Background(), identity, "ua", "ip")

		require.NoError(t, err)
		assert.Equal(t, "admin", tokens.lastRole)
		assert.NotEmpty(t, session.RefreshToken)
	})

	t.Run("missing role resolved from store", func(t *testing.T) {
		repo := newFakeUserRepo(&User{ID: "u1", Email: "admin@example.com", Role: sec.RoleAdmin})
		tokens := &fakeTokens{}
		service := NewService(repo, newFakeSessionStore(), tokens, discardLogger())

		identity := Identity{UserID: "u1", Email: "admin@example.com", Name: "Admin"}
		_, err := service.IssueSession(context.Background(), identity, "ua", "ip")

		require.NoError(t, err)
		assert.Equal(t, "admin", tokens.lastRole)
	})

	t.Run("store failure leaves role unset but issues the token", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.findErr = errors.New("connection refused")
		tokens := &fakeTokens{}
		service := NewService(repo, newFakeSessionStore(), tokens, discardLogger())

		identity := Identity{UserID: "u1", Email: "admin@example.com", Name: "Admin"}
		session, err := service.IssueSession(context.Background(), identity, "ua", "ip")

		require.NoError(t, err, "role lookup failure must not block sign-in")
		assert.Empty(t, tokens.lastRole, "unresolved role must stay unset, never guessed")
		assert.NotEmpty(t, session.AccessToken)
	})
}

/*
TestRefresh_RotatesSession verifies that a successful refresh revokes the old
session before issuing new tokens, so the consumed refresh token cannot be
replayed.
*/
func TestRefresh_RotatesSession(t *testing.T) {
	user := &User{ID: "u1", Email: "member@example.com", Name: "Member", Role: sec.RoleUser}
	repo := newFakeUserRepo(user)
	sessions := newFakeSessionStore()
	service := NewService(repo, sessions, &fakeTokens{}, discardLogger())

	identity := Identity{UserID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}
	first, err := service.IssueSession(context.Background(), identity, "ua", "ip")
	require.NoError(t, err)
	require.Len(t, sessions.sessions, 1)

	second, err := service.Refresh(context.Background(), first.RefreshToken, "ua", "ip")
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Len(t, sessions.sessions, 1, "exactly one live session after rotation")

	// Replaying the consumed token must fail.
	_, err = service.Refresh(context.Background(), first.RefreshToken, "ua", "ip")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

/*
TestRegister covers validation, persistence, and the duplicate-email conflict.
*/
func TestRegister(t *testing.T) {
	t.Run("creates a user with the default role", func(t *testing.T) {
		repo := newFakeUserRepo()
		service := NewService(repo, newFakeSessionStore(), &fakeTokens{}, discardLogger())

		user, err := service.Register(context.Background(), RegisterInput{
			Name:     "New Member",
			Email:    "new@example.com",
			Password: "long-enough-secret",
		})

		require.NoError(t, err)
		assert.Equal(t, sec.RoleUser, user.Role)
		assert.NotEmpty(t, user.ID)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "long-enough-secret", user.PasswordHash)
	})

	t.Run("rejects invalid input without touching the store", func(t *testing.T) {
		repo := newFakeUserRepo()
		service := NewService(repo, newFakeSessionStore(), &fakeTokens{}, discardLogger())

		_, err := service.Register(context.Background(), RegisterInput{
			Name:     "",
			Email:    "not-an-email",
			Password: "short",
		})

		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
		assert.Zero(t, repo.createCalls)
	})

	t.Run("duplicate email surfaces as conflict", func(t *testing.T) {
		repo := newFakeUserRepo(&User{ID: "u1", Email: "taken@example.com"})
		service := NewService(repo, newFakeSessionStore(), &fakeTokens{}, discardLogger())

		_, err := service.Register(context.Background(), RegisterInput{
			Name:     "Late Member",
			Email:    "taken@example.com",
			Password: "long-enough-secret",
		})

		require.Error(t, err)
		assert.True(t, apperr.IsConflict(err))
	})
}

/*
TestAdminCheck verifies the explicit access probe: the 401/403/200 decision is
made purely from the role claim.
*/
func TestAdminCheck(t *testing.T) {
	service := NewService(newFakeUserRepo(), newFakeSessionStore(), &fakeTokens{}, discardLogger())

	t.Run("no claims", func(t *testing.T) {
		_, err := service.AdminCheck(nil)
		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
	})

	t.Run("non-admin role", func(t *testing.T) {
		result, err := service.AdminCheck(&sec.SessionClaims{UserID: "u1", Role: "user"})
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
		assert.False(t, result.Success)
	})

	t.Run("role-less token is denied, not errored", func(t *testing.T) {
		_, err := service.AdminCheck(&sec.SessionClaims{UserID: "u1"})
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("admin role", func(t *testing.T) {
		result, err := service.AdminCheck(&sec.SessionClaims{UserID: "u1", Role: "admin"})
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, sec.RoleAdmin, result.Role)
	})
}

/*
TestSetRole verifies role validation and persistence.
*/
func TestSetRole(t *testing.T) {
	repo := newFakeUserRepo(&User{ID: "u1", Email: "member@example.com", Role: sec.RoleUser})
	service := NewService(repo, newFakeSessionStore(), &fakeTokens{}, discardLogger())

	require.NoError(t, service.SetRole(context.Background(), "u1", sec.RoleAdmin))
	assert.Equal(t, sec.RoleAdmin, repo.byID["u1"].Role)

	err := service.SetRole(context.Background(), "u1", sec.Role("superuser"))
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}
