package dto

import (
	"time"

	"github.com/spec-kit/article-platform/internal/domain"
)

// TagCreateRequest payload.
type TagCreateRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

// TagResponse is the public tag shape.
type TagResponse struct {
	ID        int64     `json:"id"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTagResponse maps a domain tag.
func NewTagResponse(tag *domain.Tag) TagResponse {
	return TagResponse{
		ID:        tag.ID,
		ParentID:  tag.ParentID,
		Name:      tag.Name,
		CreatedAt: tag.CreatedAt,
	}
}
