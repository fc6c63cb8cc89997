// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tradewayhq/tradeway/internal/platform/apperr"
	"github.com/tradewayhq/tradeway/internal/platform/constants"
)

// RedisSessionStore implements [SessionStore] on Redis.
//
// # Why Redis?
//
// Sessions are pure expiring key/value data: the refresh-token hash is the
// key, the TTL is the session lifetime. Redis gives us expiry for free, so
// there is no sweeper job and no dead-session table growth in PostgreSQL.
type RedisSessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a Redis-backed [SessionStore].
func NewSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

// Save persists the session JSON under the refresh-token hash.
func (store *RedisSessionStore) Save(ctx context.Context, tokenHash string, session *Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("auth: failed to marshal session: %w", err)
	}

	key := constants.RedisPrefixSession + tokenHash
	if err := store.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return apperr.Internal(fmt.Errorf("auth: failed to save session: %w", err))
	}

	return nil
}

// FindByTokenHash returns the session stored under the hash.
func (store *RedisSessionStore) FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error) {
	key := constants.RedisPrefixSession + tokenHash

	payload, err := store.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.Unauthorized("Invalid or expired refresh token")
		}
		return nil, apperr.Internal(fmt.Errorf("auth: failed to load session: %w", err))
	}

	session := &Session{}
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth: failed to decode session: %w", err))
	}

	return session, nil
}

// Revoke deletes the session. Deleting an absent key is a no-op, which makes
// logout idempotent.
func (store *RedisSessionStore) Revoke(ctx context.Context, tokenHash string) error {
	key := constants.RedisPrefixSession + tokenHash
	if err := store.client.Del(ctx, key).Err(); err != nil {
		return apperr.Internal(fmt.Errorf("auth: failed to revoke session: %w", err))
	}

	return nil
}

// RedisStateStore implements [StateStore] on Redis.
type RedisStateStore struct {
	client *redis.Client
}

// NewStateStore creates a Redis-backed [StateStore].
func NewStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client}
}

// Save stores an OAuth state nonce with a TTL.
func (store *RedisStateStore) Save(ctx context.Context, state string, ttl time.Duration) error {
	key := constants.RedisPrefixOAuthState + state
	if err := store.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return apperr.Internal(fmt.Errorf("auth: failed to save oauth state: %w", err))
	}

	return nil
}

// Take consumes a nonce atomically via DEL's return count: the first caller
// gets true, every replay gets false.
func (store *RedisStateStore) Take(ctx context.Context, state string) (bool, error) {
	key := constants.RedisPrefixOAuthState + state

	removed, err := store.client.Del(ctx, key).Result()
	if err != nil {
		return false, apperr.Internal(fmt.Errorf("auth: failed to take oauth state: %w", err))
	}

	return removed > 0, nil
}
