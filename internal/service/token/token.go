package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pawsomemeals/storefront/internal/models"
	"github.com/pawsomemeals/storefront/internal/storage"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid token")

// Service mints and rotates the access/refresh token pair. Refresh
// tokens are persisted and single-use: rotation revokes the old row.
type Service struct {
	Store         storage.Store
	JWTSecret     []byte
	RefreshSecret []byte
}

func NewService(store storage.Store, jwtSecret, refreshSecret []byte) *Service {
	return &Service{Store: store, JWTSecret: jwtSecret, RefreshSecret: refreshSecret}
}

// Issue signs a fresh access/refresh pair for the user and stores the
// refresh token.
func (s *Service) Issue(ctx context.Context, userID uint, role string) (access, refresh string, err error) {
	access, err = signAccessToken(userID, role, s.JWTSecret)
	if err != nil {
		return "", "", fmt.Errorf("sign access token: %w", err)
	}
	refresh, err = signRefreshToken(userID, role, s.RefreshSecret)
	if err != nil {
		return "", "", fmt.Errorf("sign refresh token: %w", err)
	}
	err = s.Store.CreateRefreshToken(ctx, &models.RefreshToken{
		Token:     refresh,
		UserID:    userID,
		Role:      role,
		ExpiresAt: time.Now().Add(RefreshTTL),
	})
	if err != nil {
		return "", "", fmt.Errorf("save refresh token: %w", err)
	}
	return access, refresh, nil
}

// Rotate exchanges a valid refresh token for a new pair, revoking the
// old token so it cannot be replayed.
func (s *Service) Rotate(ctx context.Context, rawToken string) (access, refresh string, err error) {
	claims, err := s.validateRefresh(ctx, rawToken)
	if err != nil {
		return "", "", err
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return "", "", fmt.Errorf("%w: malformed subject claim", ErrInvalidToken)
	}
	userID := uint(sub)
	role, _ := claims["role"].(string)

	access, refresh, err = s.Issue(ctx, userID, role)
	if err != nil {
		return "", "", err
	}
	if err := s.Store.RevokeRefreshToken(ctx, rawToken); err != nil {
		return "", "", fmt.Errorf("revoke refresh token: %w", err)
	}
	return access, refresh, nil
}

// Revoke marks a refresh token unusable. Revoking an unknown token is
// not an error.
func (s *Service) Revoke(ctx context.Context, rawToken string) error {
	return s.Store.RevokeRefreshToken(ctx, rawToken)
}

// ParseAccess validates an access token and returns its claims.
func (s *Service) ParseAccess(rawToken string) (jwt.MapClaims, error) {
	return parseHMAC(rawToken, s.JWTSecret)
}

func (s *Service) validateRefresh(ctx context.Context, rawToken string) (jwt.MapClaims, error) {
	claims, err := parseHMAC(rawToken, s.RefreshSecret)
	if err != nil {
		return nil, err
	}
	if typ, ok := claims["typ"]; !ok || typ != "refresh" {
		return nil, fmt.Errorf("%w: not a refresh token", ErrInvalidToken)
	}

	stored, err := s.Store.RefreshToken(ctx, rawToken)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown refresh token", ErrInvalidToken)
		}
		return nil, fmt.Errorf("load refresh token: %w", err)
	}
	if stored.Revoked {
		return nil, fmt.Errorf("%w: refresh token revoked", ErrInvalidToken)
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, fmt.Errorf("%w: refresh token expired", ErrInvalidToken)
	}
	return claims, nil
}

func parseHMAC(rawToken string, secret []byte) (jwt.MapClaims, error) {
	t, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, jwt.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok || !t.Valid {
		return nil, fmt.Errorf("%w: cannot parse claims", ErrInvalidToken)
	}
	return claims, nil
}

func signAccessToken(userID uint, role string, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(AccessTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func signRefreshToken(userID uint, role string, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(RefreshTTL).Unix(),
		"typ":  "refresh",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
