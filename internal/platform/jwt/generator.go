// Package jwtmw provides JWT issuance, verification and the authentication
// middleware used by protected routes.
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"videotube_backend/internal/feature/user/domain/entity"
	"videotube_backend/internal/platform/config"
)

// ErrInvalidToken is returned for every verification failure. Expired,
// malformed and wrongly signed tokens are deliberately indistinguishable to
// callers so that signature details never leak to clients.
var ErrInvalidToken = errors.New("invalid token")

// TokenPair bundles a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AccessClaims carries the identity encoded in an access token.
type AccessClaims struct {
	UserID   uint
	Username string
	Email    string
	FullName string
}

// Service issues and verifies the two token classes. Access and refresh
// tokens are signed with distinct secrets so that compromise of one class
// cannot forge the other.
type Service struct {
	access  config.TokenConfig
	refresh config.TokenConfig
}

// NewService creates a Service from the two token configuration pairs.
func NewService(access, refresh config.TokenConfig) *Service {
	return &Service{access: access, refresh: refresh}
}

// IssuePair generates a signed access/refresh token pair for the given user.
// The access token encodes the user's profile claims with a short expiry; the
// refresh token encodes only the user ID with a long expiry.
func (s *Service) IssuePair(user *entity.User) (TokenPair, error) {
	now := time.Now()

	accessClaims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"email":    user.Email,
		"fullName": user.FullName,
		"iat":      now.Unix(),
		"exp":      now.Add(s.access.TTL).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).
		SignedString([]byte(s.access.Secret))
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshClaims := jwt.MapClaims{
		"sub": user.ID,
		"iat": now.Unix(),
		"exp": now.Add(s.refresh.TTL).Unix(),
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).
		SignedString([]byte(s.refresh.Secret))
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess validates an access token and returns its identity claims.
func (s *Service) VerifyAccess(tokenStr string) (AccessClaims, error) {
	claims, err := verify(tokenStr, s.access.Secret)
	if err != nil {
		return AccessClaims{}, err
	}

	sub, ok := claims["sub"].(float64) // JWT numbers are decoded as float64
	if !ok {
		return AccessClaims{}, ErrInvalidToken
	}
	out := AccessClaims{UserID: uint(sub)}
	out.Username, _ = claims["username"].(string)
	out.Email, _ = claims["email"].(string)
	out.FullName, _ = claims["fullName"].(string)
	return out, nil
}

// VerifyRefresh validates a refresh token and returns the embedded user ID.
func (s *Service) VerifyRefresh(tokenStr string) (uint, error) {
	claims, err := verify(tokenStr, s.refresh.Secret)
	if err != nil {
		return 0, err
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}
	return uint(sub), nil
}

// verify parses and validates a token against the given secret.
func verify(tokenStr, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// Check signing algorithm (only HMAC allowed)
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
