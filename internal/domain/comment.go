package domain

import "time"

// Comment is a user remark attached to an article.
type Comment struct {
	ID        int64
	UserID    string
	ArticleID string
	Comment   string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
