package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/article-platform/internal/domain"
)

// TagRepository encapsulates tag persistence.
type TagRepository interface {
	Create(ctx context.Context, tag *domain.Tag) error
	GetByID(ctx context.Context, id int64) (*domain.Tag, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type tagRepository struct {
	pool *pgxpool.Pool
}

// NewTagRepository instantiates repository.
func NewTagRepository(pool *pgxpool.Pool) TagRepository {
	return &tagRepository{pool: pool}
}

func (r *tagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	const query = `
        INSERT INTO tags (parent_id, name)
        VALUES ($1, $2)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query, tag.ParentID, tag.Name).Scan(&tag.ID, &tag.CreatedAt)
}

func (r *tagRepository) GetByID(ctx context.Context, id int64) (*domain.Tag, error) {
	const query = `SELECT id, parent_id, name, created_at FROM tags WHERE id=$1`

	var tag domain.Tag
	if err := r.pool.QueryRow(ctx, query, id).Scan(&tag.ID, &tag.ParentID, &tag.Name, &tag.CreatedAt); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM tags WHERE name=$1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *tagRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM tags WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
