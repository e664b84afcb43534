// AngelaMos | 2026
// revocation.go

package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList remembers logged-out session token ids until the token
// would have expired anyway.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

const blacklistPrefix = "blacklist:"

type redisRevocationList struct {
	client *redis.Client
}

func NewRedisRevocationList(client *redis.Client) RevocationList {
	return &redisRevocationList{client: client}
}

func (l *redisRevocationList) Revoke(
	ctx context.Context,
	tokenID string,
	until time.Time,
) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}

	if err := l.client.Set(ctx, blacklistPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

func (l *redisRevocationList) IsRevoked(
	ctx context.Context,
	tokenID string,
) (bool, error) {
	exists, err := l.client.Exists(ctx, blacklistPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}

	return exists > 0, nil
}

// MemoryRevocationList is the single-process stand-in used when Redis is
// not configured. Entries are dropped lazily once past their expiry.
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

func (l *MemoryRevocationList) Revoke(
	_ context.Context,
	tokenID string,
	until time.Time,
) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if !until.After(now) {
		return nil
	}

	for id, exp := range l.entries {
		if !exp.After(now) {
			delete(l.entries, id)
		}
	}

	l.entries[tokenID] = until
	return nil
}

func (l *MemoryRevocationList) IsRevoked(
	_ context.Context,
	tokenID string,
) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	exp, ok := l.entries[tokenID]
	if !ok {
		return false, nil
	}

	if !exp.After(l.now()) {
		delete(l.entries, tokenID)
		return false, nil
	}

	return true, nil
}
