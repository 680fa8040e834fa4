package domain

import "time"

// Vote marks that a user liked an article. At most one vote exists per
// (user, article) pair; voting again removes it.
type Vote struct {
	ID        int64
	UserID    string
	ArticleID string
	CreatedAt time.Time
}
