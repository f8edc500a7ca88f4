package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-0123456789"

func newTestTokenService(t *testing.T, revoked RevocationList) (*TokenService, *time.Time) {
	t.Helper()

	service, err := NewTokenService(testSecret, time.Hour, revoked)
	if err != nil {
		t.Fatalf("NewTokenService failed: %v", err)
	}
	clock := time.Unix(1700000000, 0)
	service.now = func() time.Time { return clock }
	return service, &clock
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	if _, err := NewTokenService("  ", time.Hour, nil); err == nil {
		t.Fatal("expected error for empty secret")
	}

	service, err := NewTokenService(testSecret, 0, nil)
	if err != nil {
		t.Fatalf("NewTokenService failed: %v", err)
	}
	if service.ttl != DefaultTokenTTL {
		t.Fatalf("expected default ttl, got %v", service.ttl)
	}
}

func TestIssueAndVerify(t *testing.T) {
	service, _ := newTestTokenService(t, nil)

	token, err := service.Issue("alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := service.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Username != "alice" {
		t.Fatalf("expected alice, got %q", claims.Username)
	}
	if claims.ID == "" {
		t.Fatal("expected token id to be set")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Fatalf("expected 1h lifetime, got %v", got)
	}

	other, _ := service.Issue("alice")
	otherClaims, err := service.Verify(context.Background(), other)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if otherClaims.ID == claims.ID {
		t.Fatal("expected distinct token ids")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	service, clock := newTestTokenService(t, nil)

	token, err := service.Issue("alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	*clock = clock.Add(2 * time.Hour)
	if _, err := service.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	service, clock := newTestTokenService(t, nil)

	valid, err := service.Issue("alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	otherIssuer, err := NewTokenService("another-secret-0123456789", time.Hour, nil)
	if err != nil {
		t.Fatalf("NewTokenService failed: %v", err)
	}
	otherIssuer.now = service.now
	foreign, _ := otherIssuer.Issue("alice")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(clock.Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	anonymous, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(clock.Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign anonymous token: %v", err)
	}

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Username: "alice"}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token without expiry: %v", err)
	}

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-token"},
		{name: "tampered payload", token: tampered},
		{name: "wrong secret", token: foreign},
		{name: "none algorithm", token: unsigned},
		{name: "missing username", token: anonymous},
		{name: "missing expiry", token: noExpiry},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.Verify(context.Background(), tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestRevokeWithoutListIsNoop(t *testing.T) {
	service, _ := newTestTokenService(t, nil)

	token, _ := service.Issue("alice")
	claims, err := service.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if err := service.Revoke(context.Background(), claims); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if service.Revocable() {
		t.Fatal("expected service without list to report not revocable")
	}
	if _, err := service.Verify(context.Background(), token); err != nil {
		t.Fatalf("expected token to stay valid, got %v", err)
	}
}

func TestRevokeRejectsTokenUntilExpiry(t *testing.T) {
	list := NewMemoryRevocationList()
	service, clock := newTestTokenService(t, list)
	list.now = service.now

	token, _ := service.Issue("alice")
	claims, err := service.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if err := service.Revoke(context.Background(), claims); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if _, err := service.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}

	fresh, _ := service.Issue("alice")
	if _, err := service.Verify(context.Background(), fresh); err != nil {
		t.Fatalf("expected other token to stay valid, got %v", err)
	}

	*clock = clock.Add(2 * time.Hour)
	if err := list.Revoke(context.Background(), "other", clock.Add(time.Minute)); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if list.Len() != 1 {
		t.Fatalf("expected expired entry to be swept, got %d entries", list.Len())
	}
}
