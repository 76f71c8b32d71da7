// Package session holds the credentials of the logged-in user. A Session is
// passed explicitly to the API client instead of being read from ambient
// storage, so tests can inject a fake store.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"

	"github.com/openkcm/taskmanager-client/internal/serviceerr"
	"github.com/openkcm/taskmanager-client/pkg/tokenstore"
)

// signatureAlgorithms lists the algorithms accepted when decoding an access
// token for display.
var signatureAlgorithms = []jose.SignatureAlgorithm{
	jose.HS256, jose.HS384, jose.HS512,
	jose.RS256, jose.RS384, jose.RS512,
	jose.ES256, jose.ES384, jose.ES512,
	jose.EdDSA,
}

type Session struct {
	store tokenstore.Store
}

func New(store tokenstore.Store) *Session {
	return &Session{store: store}
}

// AccessToken returns the stored access token, or an empty string when none
// is stored.
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, tokenstore.KeyAccessToken)
}

// RefreshToken returns the stored refresh token, or an empty string when none
// is stored.
func (s *Session) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, tokenstore.KeyRefreshToken)
}

// SetTokens persists a freshly issued token pair.
func (s *Session) SetTokens(ctx context.Context, access, refresh string) error {
	if err := s.SetAccessToken(ctx, access); err != nil {
		return err
	}

	return s.SetRefreshToken(ctx, refresh)
}

func (s *Session) SetAccessToken(ctx context.Context, access string) error {
	if err := s.store.Set(ctx, tokenstore.KeyAccessToken, access); err != nil {
		return fmt.Errorf("storing access token: %w", err)
	}

	return nil
}

func (s *Session) SetRefreshToken(ctx context.Context, refresh string) error {
	if err := s.store.Set(ctx, tokenstore.KeyRefreshToken, refresh); err != nil {
		return fmt.Errorf("storing refresh token: %w", err)
	}

	return nil
}

// Clear removes both tokens. Both deletions are attempted even if the first
// one fails.
func (s *Session) Clear(ctx context.Context) error {
	var errs []error
	if err := s.store.Delete(ctx, tokenstore.KeyAccessToken); err != nil {
		errs = append(errs, fmt.Errorf("deleting access token: %w", err))
	}
	if err := s.store.Delete(ctx, tokenstore.KeyRefreshToken); err != nil {
		errs = append(errs, fmt.Errorf("deleting refresh token: %w", err))
	}

	return errors.Join(errs...)
}

// LoggedIn reports whether an access token is stored.
func (s *Session) LoggedIn(ctx context.Context) (bool, error) {
	token, err := s.AccessToken(ctx)
	if err != nil {
		return false, err
	}

	return token != "", nil
}

// Claims decodes the stored access token without verifying it.
func (s *Session) Claims(ctx context.Context) (Claims, error) {
	token, err := s.AccessToken(ctx)
	if err != nil {
		return Claims{}, err
	}
	if token == "" {
		return Claims{}, serviceerr.ErrNotLoggedIn
	}

	return ParseClaims(token)
}

// ParseClaims decodes the claims of a JWT without verifying its signature.
func ParseClaims(token string) (Claims, error) {
	parsed, err := jwt.ParseSigned(token, signatureAlgorithms)
	if err != nil {
		return Claims{}, fmt.Errorf("parsing access token: %w", err)
	}

	type customClaims struct {
		TokenType string `json:"token_type"`
		UserID    any    `json:"user_id"`
	}

	var standard jwt.Claims
	var custom customClaims
	if err := parsed.UnsafeClaimsWithoutVerification(&standard, &custom); err != nil {
		return Claims{}, fmt.Errorf("decoding access token claims: %w", err)
	}

	claims := Claims{
		TokenType: custom.TokenType,
		Subject:   standard.Subject,
		TokenID:   standard.ID,
	}
	if custom.UserID != nil {
		claims.UserID = fmt.Sprint(custom.UserID)
	}
	if standard.IssuedAt != nil {
		claims.IssuedAt = standard.IssuedAt.Time()
	}
	if standard.Expiry != nil {
		claims.Expiry = standard.Expiry.Time()
	}

	return claims, nil
}

func (s *Session) get(ctx context.Context, key string) (string, error) {
	value, err := s.store.Get(ctx, key)
	if errors.Is(err, tokenstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading %s: %w", key, err)
	}

	return value, nil
}
