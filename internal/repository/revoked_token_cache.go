package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const revokedKeyPrefix = "revoked:jti:"

// cachedRevokedTokenRepository fronts the Postgres ledger with a Redis
// positive-entry cache. Postgres stays the source of truth and is written
// first, so a revocation is durable before the caller's response completes.
// Only positive entries are cached; a record never leaves Postgres before
// the token's natural expiry, so the cache cannot return a stale
// "not revoked".
type cachedRevokedTokenRepository struct {
	base   RevokedTokenRepository
	client *redis.Client
	logger *zap.Logger
}

// NewCachedRevokedTokenRepository decorates a ledger with a Redis fast path.
func NewCachedRevokedTokenRepository(base RevokedTokenRepository, client *redis.Client, logger *zap.Logger) RevokedTokenRepository {
	return &cachedRevokedTokenRepository{base: base, client: client, logger: logger}
}

func (r *cachedRevokedTokenRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if err := r.base.Revoke(ctx, tokenID, expiresAt); err != nil {
		return err
	}
	r.cache(ctx, tokenID, expiresAt)
	return nil
}

func (r *cachedRevokedTokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	exists, err := r.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err == nil && exists > 0 {
		return true, nil
	}
	if err != nil {
		r.logger.Warn("revocation cache lookup failed", zap.Error(err))
	}

	revoked, err := r.base.IsRevoked(ctx, tokenID)
	if err != nil {
		return false, err
	}
	if revoked {
		r.cache(ctx, tokenID, time.Now().Add(time.Hour))
	}
	return revoked, nil
}

func (r *cachedRevokedTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	// Cached entries carry their own TTL; Redis expires them unaided.
	return r.base.DeleteExpired(ctx, now)
}

func (r *cachedRevokedTokenRepository) cache(ctx context.Context, tokenID string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if err := r.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		r.logger.Warn("revocation cache write failed", zap.Error(err))
	}
}
