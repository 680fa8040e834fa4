package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/article-platform/internal/domain"
)

// ArticleRepository encapsulates article persistence including the tag
// association table.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article, tagIDs []int64) error
	Update(ctx context.Context, article *domain.Article, tagIDs []int64) error
	GetByID(ctx context.Context, id string) (*domain.Article, error)
	ListByTagName(ctx context.Context, tagName string) ([]domain.Article, error)
	ExistsByTitle(ctx context.Context, title string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type articleRepository struct {
	pool *pgxpool.Pool
}

// NewArticleRepository instantiates repository.
func NewArticleRepository(pool *pgxpool.Pool) ArticleRepository {
	return &articleRepository{pool: pool}
}

func (r *articleRepository) Create(ctx context.Context, article *domain.Article, tagIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO articles (id, title, article_img_url, description, content)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at`

	if err := tx.QueryRow(ctx, query,
		article.ID,
		article.Title,
		article.ImageURL,
		article.Description,
		article.Content,
	).Scan(&article.CreatedAt); err != nil {
		return err
	}

	if err := replaceTags(ctx, tx, article.ID, tagIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *articleRepository) Update(ctx context.Context, article *domain.Article, tagIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        UPDATE articles SET title=$1, article_img_url=$2, description=$3, content=$4, updated_at=NOW()
        WHERE id=$5`

	cmd, err := tx.Exec(ctx, query,
		article.Title,
		article.ImageURL,
		article.Description,
		article.Content,
		article.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if tagIDs != nil {
		if err := replaceTags(ctx, tx, article.ID, tagIDs); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func replaceTags(ctx context.Context, tx pgx.Tx, articleID string, tagIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM article_tags WHERE article_id=$1`, articleID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2)`, articleID, tagID); err != nil {
			return err
		}
	}
	return nil
}

func (r *articleRepository) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	const query = `
        SELECT id, title, article_img_url, description, content, created_at, updated_at
        FROM articles WHERE id=$1`

	var article domain.Article
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&article.ID,
		&article.Title,
		&article.ImageURL,
		&article.Description,
		&article.Content,
		&article.CreatedAt,
		&article.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := r.loadAssociations(ctx, &article); err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) ListByTagName(ctx context.Context, tagName string) ([]domain.Article, error) {
	const query = `
        SELECT a.id, a.title, a.article_img_url, a.description, a.content, a.created_at, a.updated_at
        FROM articles a
        JOIN article_tags at ON at.article_id = a.id
        JOIN tags t ON t.id = at.tag_id
        WHERE t.name=$1
        ORDER BY a.created_at DESC`

	rows, err := r.pool.Query(ctx, query, tagName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var article domain.Article
		if err := rows.Scan(
			&article.ID,
			&article.Title,
			&article.ImageURL,
			&article.Description,
			&article.Content,
			&article.CreatedAt,
			&article.UpdatedAt,
		); err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range articles {
		if err := r.loadAssociations(ctx, &articles[i]); err != nil {
			return nil, err
		}
	}
	return articles, nil
}

func (r *articleRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM articles WHERE title=$1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, title).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *articleRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM articles WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *articleRepository) loadAssociations(ctx context.Context, article *domain.Article) error {
	const tagQuery = `
        SELECT t.id, t.parent_id, t.name, t.created_at
        FROM tags t
        JOIN article_tags at ON at.tag_id = t.id
        WHERE at.article_id=$1
        ORDER BY t.name`

	rows, err := r.pool.Query(ctx, tagQuery, article.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	article.Tags = nil
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.ParentID, &tag.Name, &tag.CreatedAt); err != nil {
			return err
		}
		article.Tags = append(article.Tags, tag)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	const commentQuery = `
        SELECT id, user_id, article_id, comment, created_at, updated_at
        FROM comments WHERE article_id=$1 ORDER BY created_at`

	commentRows, err := r.pool.Query(ctx, commentQuery, article.ID)
	if err != nil {
		return err
	}
	defer commentRows.Close()

	article.Comments = nil
	for commentRows.Next() {
		var comment domain.Comment
		if err := commentRows.Scan(
			&comment.ID,
			&comment.UserID,
			&comment.ArticleID,
			&comment.Comment,
			&comment.CreatedAt,
			&comment.UpdatedAt,
		); err != nil {
			return err
		}
		article.Comments = append(article.Comments, comment)
	}
	if err := commentRows.Err(); err != nil {
		return err
	}

	const voteQuery = `SELECT COUNT(*) FROM votes WHERE article_id=$1`
	return r.pool.QueryRow(ctx, voteQuery, article.ID).Scan(&article.VoteCount)
}
