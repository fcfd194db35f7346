package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRevocations keeps the revocation list in Redis.  Each revoked token is a
// key that expires together with the token, so no pruning is needed.
type RedisRevocations struct {
	RDB    *redis.Client
	Prefix string
}

func NewRedisRevocations(rdb *redis.Client, prefix string) *RedisRevocations {
	if prefix == "" {
		prefix = "booklend:revoked"
	}
	return &RedisRevocations{RDB: rdb, Prefix: prefix}
}

func (r *RedisRevocations) key(tokenID string) string { return r.Prefix + ":" + tokenID }

// Revoke stores tokenID until exp.  Already expired tokens are kept for one
// second so a racing request still sees them.
func (r *RedisRevocations) Revoke(ctx context.Context, tokenID string, userID uint64, exp time.Time) error {
	ttl := time.Until(exp)
	if ttl < time.Second {
		ttl = time.Second
	}
	return r.RDB.Set(ctx, r.key(tokenID), userID, ttl).Err()
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.RDB.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteExpired is a no-op; Redis expires keys on its own.
func (r *RedisRevocations) DeleteExpired(context.Context, time.Time) (int64, error) { return 0, nil }
