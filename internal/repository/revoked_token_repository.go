package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RevokedTokenRepository is the durable revocation ledger: an append-only
// set of token ids invalidated before their natural expiry.
type RevokedTokenRepository interface {
	// Revoke records a token id. Revoking an already-revoked id is a no-op.
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	// IsRevoked is a membership test.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// DeleteExpired prunes records whose original token has already expired.
	// Such tokens fail verification on their own, so removal is unobservable.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type revokedTokenRepository struct {
	pool *pgxpool.Pool
}

// NewRevokedTokenRepository returns a Postgres-backed ledger.
func NewRevokedTokenRepository(pool *pgxpool.Pool) RevokedTokenRepository {
	return &revokedTokenRepository{pool: pool}
}

func (r *revokedTokenRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	const query = `
        INSERT INTO revoked_tokens (token_id, expires_at)
        VALUES ($1, $2)
        ON CONFLICT (token_id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query, tokenID, expiresAt)
	return err
}

func (r *revokedTokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_id=$1)`

	var revoked bool
	if err := r.pool.QueryRow(ctx, query, tokenID).Scan(&revoked); err != nil {
		return false, err
	}
	return revoked, nil
}

func (r *revokedTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM revoked_tokens WHERE expires_at < $1`

	cmd, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
