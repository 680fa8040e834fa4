package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/article-platform/internal/domain"
)

// VoteRepository encapsulates vote persistence.
type VoteRepository interface {
	Get(ctx context.Context, userID, articleID string) (*domain.Vote, error)
	Create(ctx context.Context, vote *domain.Vote) error
	Delete(ctx context.Context, id int64) error
}

type voteRepository struct {
	pool *pgxpool.Pool
}

// NewVoteRepository instantiates repository.
func NewVoteRepository(pool *pgxpool.Pool) VoteRepository {
	return &voteRepository{pool: pool}
}

func (r *voteRepository) Get(ctx context.Context, userID, articleID string) (*domain.Vote, error) {
	const query = `
        SELECT id, user_id, article_id, created_at
        FROM votes WHERE user_id=$1 AND article_id=$2`

	var vote domain.Vote
	err := r.pool.QueryRow(ctx, query, userID, articleID).Scan(
		&vote.ID,
		&vote.UserID,
		&vote.ArticleID,
		&vote.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &vote, nil
}

func (r *voteRepository) Create(ctx context.Context, vote *domain.Vote) error {
	const query = `
        INSERT INTO votes (user_id, article_id)
        VALUES ($1, $2)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query, vote.UserID, vote.ArticleID).Scan(&vote.ID, &vote.CreatedAt)
}

func (r *voteRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM votes WHERE id=$1`

	_, err := r.pool.Exec(ctx, query, id)
	return err
}
