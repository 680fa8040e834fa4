package domain

import "time"

// Article is the aggregate for published content. Articles are keyed by a
// slug string derived from the title plus a random suffix.
type Article struct {
	ID          string
	Title       string
	ImageURL    string
	Description string
	Content     string
	Tags        []Tag
	Comments    []Comment
	VoteCount   int
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
