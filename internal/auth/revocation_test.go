package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeRedis struct {
	redis.Cmdable

	keys    map[string]time.Duration
	failing error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{keys: make(map[string]time.Duration)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.failing != nil {
		return redis.NewStatusResult("", f.failing)
	}
	f.keys[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	if f.failing != nil {
		return redis.NewIntResult(0, f.failing)
	}
	var count int64
	for _, key := range keys {
		if _, ok := f.keys[key]; ok {
			count++
		}
	}
	return redis.NewIntResult(count, nil)
}

func TestMemoryRevocationList(t *testing.T) {
	list := NewMemoryRevocationList()
	clock := time.Unix(1700000000, 0)
	list.now = func() time.Time { return clock }
	ctx := context.Background()

	if revoked, _ := list.IsRevoked(ctx, "jti-1"); revoked {
		t.Fatal("expected unknown id to be valid")
	}

	if err := list.Revoke(ctx, "jti-1", clock.Add(time.Minute)); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if revoked, _ := list.IsRevoked(ctx, "jti-1"); !revoked {
		t.Fatal("expected id to be revoked")
	}

	clock = clock.Add(time.Minute)
	if revoked, _ := list.IsRevoked(ctx, "jti-1"); revoked {
		t.Fatal("expected entry to expire")
	}
	if list.Len() != 0 {
		t.Fatalf("expected expired entry removed, got %d", list.Len())
	}
}

func TestRedisRevocationList(t *testing.T) {
	client := newFakeRedis()
	list := NewRedisRevocationList(client)
	clock := time.Unix(1700000000, 0)
	list.now = func() time.Time { return clock }
	ctx := context.Background()

	if err := list.Revoke(ctx, "jti-1", clock.Add(30*time.Minute)); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if ttl := client.keys["quiz:revoked:jti-1"]; ttl != 30*time.Minute {
		t.Fatalf("expected key ttl 30m, got %v", ttl)
	}

	revoked, err := list.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("expected revoked, got %v %v", revoked, err)
	}
	revoked, err = list.IsRevoked(ctx, "jti-2")
	if err != nil || revoked {
		t.Fatalf("expected not revoked, got %v %v", revoked, err)
	}

	if err := list.Revoke(ctx, "jti-old", clock.Add(-time.Second)); err != nil {
		t.Fatalf("Revoke of expired token failed: %v", err)
	}
	if _, ok := client.keys["quiz:revoked:jti-old"]; ok {
		t.Fatal("expected already expired token to be skipped")
	}
}

func TestRedisRevocationListPropagatesErrors(t *testing.T) {
	client := newFakeRedis()
	client.failing = errors.New("connection refused")
	list := NewRedisRevocationList(client)

	if err := list.Revoke(context.Background(), "jti-1", time.Now().Add(time.Hour)); err == nil {
		t.Fatal("expected Revoke error")
	}
	if _, err := list.IsRevoked(context.Background(), "jti-1"); err == nil {
		t.Fatal("expected IsRevoked error")
	}

	service, err := NewTokenService(testSecret, time.Hour, list)
	if err != nil {
		t.Fatalf("NewTokenService failed: %v", err)
	}
	token, _ := service.Issue("alice")
	_, err = service.Verify(context.Background(), token)
	if err == nil || errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected backend error distinct from ErrInvalidToken, got %v", err)
	}
}
