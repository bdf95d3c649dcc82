package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRepo keeps a Redis denylist of revoked access-token IDs. Entries
// expire together with the token they revoke.
type TokenRepo struct {
	RDB    *redis.Client
	Prefix string
}

func NewTokenRepo(rdb *redis.Client) *TokenRepo { return &TokenRepo{RDB: rdb, Prefix: "revoked"} }

func (r *TokenRepo) key(jti string) string { return r.Prefix + ":" + jti }

// Revoke denies jti until exp. Tokens that already expired are ignored.
func (r *TokenRepo) Revoke(ctx context.Context, jti string, exp time.Time) error {
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	return r.RDB.Set(ctx, r.key(jti), 1, ttl).Err()
}

// IsRevoked reports whether jti was revoked.
func (r *TokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.RDB.Exists(ctx, r.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
