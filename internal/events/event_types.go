package events

import (
	"time"

	"github.com/spec-kit/article-platform/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventUserLoggedIn   EventType = "user_logged_in"
	EventTokenRevoked   EventType = "token_revoked"
	EventArticleCreated EventType = "article_created"
	EventArticleVoted   EventType = "article_voted"
	EventCommentAdded   EventType = "comment_added"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// TokenRevokedPayload payload.
type TokenRevokedPayload struct {
	TokenID   string           `json:"token_id"`
	Kind      domain.TokenKind `json:"kind"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// ArticleCreatedPayload payload.
type ArticleCreatedPayload struct {
	ArticleID string `json:"article_id"`
	Title     string `json:"title"`
}

// ArticleVotedPayload payload.
type ArticleVotedPayload struct {
	ArticleID string `json:"article_id"`
	Liked     bool   `json:"liked"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	ArticleID string `json:"article_id"`
	CommentID int64  `json:"comment_id"`
}
