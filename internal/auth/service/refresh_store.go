package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/marketplace/internal/cache"
)

// RefreshTokenStore persists hashed refresh tokens in redis.
//
// Keys follow the pattern refresh:<userId>:<tokenId> so a single grant can be
// revoked during rotation and a logout can revoke every grant for a user.
type RefreshTokenStore struct {
	cache *cache.Cache
}

// NewRefreshTokenStore creates a RefreshTokenStore.
func NewRefreshTokenStore(c *cache.Cache) *RefreshTokenStore {
	return &RefreshTokenStore{cache: c}
}

// Save stores the hash of a refresh token with the given TTL.
func (s *RefreshTokenStore) Save(ctx context.Context, userID, tokenID uuid.UUID, token string, ttl time.Duration) error {
	return s.cache.SetWithTTL(ctx, refreshKey(userID, tokenID), HashToken(token), ttl)
}

// Verify reports whether the presented token matches the stored hash.
// A missing key means the grant was revoked or rotated away.
func (s *RefreshTokenStore) Verify(ctx context.Context, userID, tokenID uuid.UUID, token string) (bool, error) {
	var storedHash string
	found, err := s.cache.Get(ctx, refreshKey(userID, tokenID), &storedHash)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	computed := HashToken(token)
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(computed)) == 1, nil
}

// Revoke removes a single refresh token grant.
func (s *RefreshTokenStore) Revoke(ctx context.Context, userID, tokenID uuid.UUID) error {
	return s.cache.Delete(ctx, refreshKey(userID, tokenID))
}

// RevokeAll removes every refresh token grant for a user.
func (s *RefreshTokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	return s.cache.DeleteByPattern(ctx, fmt.Sprintf("refresh:%s:*", userID))
}

// HashToken returns the hex-encoded SHA-256 digest of a token.
// Tokens are never stored in plaintext.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func refreshKey(userID, tokenID uuid.UUID) string {
	return fmt.Sprintf("refresh:%s:%s", userID, tokenID)
}
