package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

const DefaultTokenTTL = time.Hour

type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 identity tokens. A nil revocation
// list makes tokens valid until they expire.
type TokenService struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationList
	now     func() time.Time
}

func NewTokenService(secret string, ttl time.Duration, revoked RevocationList) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
	}, nil
}

func (s *TokenService) Issue(username string) (string, error) {
	if username == "" {
		return "", errors.New("username is required")
	}

	issuedAt := s.now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns ErrInvalidToken for every token it refuses. The underlying
// parse error is wrapped for logging.
func (s *TokenService) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Username == "" {
		return nil, fmt.Errorf("%w: missing username", ErrInvalidToken)
	}

	if s.revoked != nil && claims.ID != "" {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: revoked", ErrInvalidToken)
		}
	}

	return claims, nil
}

// Revoke records the token id until the token would have expired anyway.
// Without a revocation list it does nothing.
func (s *TokenService) Revoke(ctx context.Context, claims *Claims) error {
	if s.revoked == nil || claims == nil || claims.ID == "" {
		return nil
	}

	until := s.now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if !until.After(s.now()) {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, until)
}

// Revocable reports whether logout has any effect.
func (s *TokenService) Revocable() bool {
	return s.revoked != nil
}
