// Package service provides token generation and verification for authentication.
package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/allisson/marketplace/internal/config"
	apperrors "github.com/allisson/marketplace/internal/errors"
)

// AccessClaims are the claims carried by an access token.
type AccessClaims struct {
	jwt.RegisteredClaims
}

// RefreshClaims are the claims carried by a refresh token. The ID (jti)
// identifies the stored token so rotation can revoke exactly one grant.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// JWTService issues and verifies HS256 signed access and refresh tokens.
type JWTService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWTService creates a JWTService from application configuration.
func NewJWTService(cfg *config.Config) *JWTService {
	return &JWTService{
		accessSecret:  []byte(cfg.JWTAccessSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     cfg.JWTAccessTTL,
		refreshTTL:    cfg.JWTRefreshTTL,
	}
}

// AccessTTL returns the access token lifetime.
func (s *JWTService) AccessTTL() time.Duration {
	return s.accessTTL
}

// RefreshTTL returns the refresh token lifetime.
func (s *JWTService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// GenerateAccessToken creates a signed access token for the user.
func (s *JWTService) GenerateAccessToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.accessSecret)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign access token")
	}
	return signed, nil
}

// GenerateRefreshToken creates a signed refresh token for the user with the
// given token id as the jti claim.
func (s *JWTService) GenerateRefreshToken(userID, tokenID uuid.UUID) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID.String(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.refreshSecret)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign refresh token")
	}
	return signed, nil
}

// ParseAccessToken verifies an access token and returns the user id.
func (s *JWTService) ParseAccessToken(tokenString string) (uuid.UUID, error) {
	claims := &AccessClaims{}
	if err := parseHS256(tokenString, s.accessSecret, claims); err != nil {
		return uuid.Nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apperrors.ErrUnauthorized
	}
	return userID, nil
}

// ParseRefreshToken verifies a refresh token and returns the user id and token id.
func (s *JWTService) ParseRefreshToken(tokenString string) (userID, tokenID uuid.UUID, err error) {
	claims := &RefreshClaims{}
	if err := parseHS256(tokenString, s.refreshSecret, claims); err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	userID, err = uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, uuid.Nil, apperrors.ErrUnauthorized
	}
	tokenID, err = uuid.Parse(claims.ID)
	if err != nil {
		return uuid.Nil, uuid.Nil, apperrors.ErrUnauthorized
	}
	return userID, tokenID, nil
}

// parseHS256 verifies the signature and expiry, filling the given claims.
func parseHS256(tokenString string, secret []byte, claims jwt.Claims) error {
	if tokenString == "" {
		return apperrors.ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrUnauthorized
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return apperrors.ErrUnauthorized
	}
	return nil
}
