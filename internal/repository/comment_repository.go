package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/article-platform/internal/domain"
)

// CommentRepository encapsulates comment persistence.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	// GetOwned returns the comment only when it belongs to userID.
	GetOwned(ctx context.Context, id int64, userID string) (*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id int64) error
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository instantiates repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (user_id, article_id, comment)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		comment.UserID,
		comment.ArticleID,
		comment.Comment,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) GetOwned(ctx context.Context, id int64, userID string) (*domain.Comment, error) {
	const query = `
        SELECT id, user_id, article_id, comment, created_at, updated_at
        FROM comments WHERE id=$1 AND user_id=$2`

	var comment domain.Comment
	if err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&comment.ID,
		&comment.UserID,
		&comment.ArticleID,
		&comment.Comment,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	const query = `UPDATE comments SET comment=$1, updated_at=NOW() WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, comment.Comment, comment.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM comments WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
