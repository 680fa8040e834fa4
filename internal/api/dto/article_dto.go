package dto

import (
	"time"

	"github.com/spec-kit/article-platform/internal/domain"
)

// ArticleCreateRequest payload.
type ArticleCreateRequest struct {
	Title       string  `json:"title"`
	ImageURL    string  `json:"article_img_url"`
	Description string  `json:"description"`
	Content     string  `json:"content"`
	Tags        []int64 `json:"tags"`
}

// ArticleUpdateRequest payload; nil fields keep their value, a nil Tags
// slice keeps the current tag set.
type ArticleUpdateRequest struct {
	Title       *string `json:"title"`
	ImageURL    *string `json:"article_img_url"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
	Tags        []int64 `json:"tags"`
}

// ArticleResponse is the public article shape.
type ArticleResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	ImageURL    string            `json:"article_img_url"`
	Description string            `json:"description"`
	Content     string            `json:"content"`
	Tags        []TagResponse     `json:"tags"`
	Comments    []CommentResponse `json:"comments"`
	VoteCount   int               `json:"vote_count"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   *time.Time        `json:"updated_at,omitempty"`
}

// NewArticleResponse maps a domain article.
func NewArticleResponse(article *domain.Article) ArticleResponse {
	resp := ArticleResponse{
		ID:          article.ID,
		Title:       article.Title,
		ImageURL:    article.ImageURL,
		Description: article.Description,
		Content:     article.Content,
		Tags:        make([]TagResponse, 0, len(article.Tags)),
		Comments:    make([]CommentResponse, 0, len(article.Comments)),
		VoteCount:   article.VoteCount,
		CreatedAt:   article.CreatedAt,
		UpdatedAt:   article.UpdatedAt,
	}
	for i := range article.Tags {
		resp.Tags = append(resp.Tags, NewTagResponse(&article.Tags[i]))
	}
	for i := range article.Comments {
		resp.Comments = append(resp.Comments, NewCommentResponse(&article.Comments[i]))
	}
	return resp
}

// NewArticleListResponse maps a slice of domain articles.
func NewArticleListResponse(articles []domain.Article) []ArticleResponse {
	out := make([]ArticleResponse, 0, len(articles))
	for i := range articles {
		out = append(out, NewArticleResponse(&articles[i]))
	}
	return out
}
