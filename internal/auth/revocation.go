package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevocationList keeps revoked ids in process memory. Expired entries
// are dropped whenever the list is written.
type MemoryRevocationList struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (l *MemoryRevocationList) Revoke(_ context.Context, tokenID string, until time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for id, expiry := range l.entries {
		if !expiry.After(now) {
			delete(l.entries, id)
		}
	}
	l.entries[tokenID] = until
	return nil
}

func (l *MemoryRevocationList) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	expiry, ok := l.entries[tokenID]
	if !ok {
		return false, nil
	}
	if !expiry.After(l.now()) {
		delete(l.entries, tokenID)
		return false, nil
	}
	return true, nil
}

func (l *MemoryRevocationList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

const redisKeyPrefix = "quiz:revoked:"

// RedisRevocationList stores each revoked id as a key that expires with the
// token, so Redis does the cleanup.
type RedisRevocationList struct {
	client redis.Cmdable
	now    func() time.Time
}

func NewRedisRevocationList(client redis.Cmdable) *RedisRevocationList {
	return &RedisRevocationList{client: client, now: time.Now}
}

func (l *RedisRevocationList) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(l.now())
	if ttl <= 0 {
		return nil
	}
	return l.client.Set(ctx, redisKeyPrefix+tokenID, 1, ttl).Err()
}

func (l *RedisRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	count, err := l.client.Exists(ctx, redisKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
