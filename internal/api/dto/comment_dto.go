package dto

import (
	"time"

	"github.com/spec-kit/article-platform/internal/domain"
)

// CommentRequest payload for create and update.
type CommentRequest struct {
	Comment string `json:"comment"`
}

// CommentResponse is the public comment shape.
type CommentResponse struct {
	ID        int64      `json:"id"`
	UserID    string     `json:"user_id"`
	ArticleID string     `json:"article_id"`
	Comment   string     `json:"comment"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// NewCommentResponse maps a domain comment.
func NewCommentResponse(comment *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		UserID:    comment.UserID,
		ArticleID: comment.ArticleID,
		Comment:   comment.Comment,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}
