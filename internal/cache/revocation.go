// Package cache holds Redis-backed state shared between API instances.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:"

// NewClient connects to the Redis instance at url and verifies it with a ping.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis parse url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

// RevocationStore is a token denylist whose entries expire with the tokens themselves.
type RevocationStore struct {
	rdb *redis.Client
	now func() time.Time
}

// Option configures a RevocationStore.
type Option func(*RevocationStore)

// WithClock replaces the wall clock used to compute entry TTLs.
func WithClock(now func() time.Time) Option {
	return func(s *RevocationStore) { s.now = now }
}

// NewRevocationStore returns a new RevocationStore.
func NewRevocationStore(rdb *redis.Client, opts ...Option) *RevocationStore {
	s := &RevocationStore{rdb: rdb, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Revoke denies jti until the given time. Already-expired entries are not stored.
func (s *RevocationStore) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, revokedKey(jti), "1", ttl).Err()
}

// IsRevoked reports whether jti is on the denylist.
func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func revokedKey(jti string) string {
	return revokedKeyPrefix + jti
}
