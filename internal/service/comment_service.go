package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/article-platform/internal/domain"
	"github.com/spec-kit/article-platform/internal/events"
	"github.com/spec-kit/article-platform/internal/repository"
	apperrors "github.com/spec-kit/article-platform/pkg/util"
)

// CommentService covers comment creation and owner-only mutation.
type CommentService struct {
	comments   repository.CommentRepository
	articles   repository.ArticleRepository
	dispatcher events.Dispatcher
}

// NewCommentService builds the service.
func NewCommentService(comments repository.CommentRepository, articles repository.ArticleRepository, dispatcher events.Dispatcher) *CommentService {
	return &CommentService{comments: comments, articles: articles, dispatcher: dispatcher}
}

// Create attaches a comment to an existing article.
func (s *CommentService) Create(ctx context.Context, userID, articleID, text string) (*domain.Comment, error) {
	if _, err := s.articles.GetByID(ctx, articleID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("article", nil)
		}
		return nil, err
	}

	comment := &domain.Comment{UserID: userID, ArticleID: articleID, Comment: text}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:      events.EventCommentAdded,
			SubjectID: userID,
			Payload:   events.CommentAddedPayload{ArticleID: articleID, CommentID: comment.ID},
		})
	}

	return comment, nil
}

// Update edits a comment. Callers may only edit their own comments; a
// mismatch surfaces as forbidden rather than not-found.
func (s *CommentService) Update(ctx context.Context, userID string, commentID int64, text string) (*domain.Comment, error) {
	comment, err := s.comments.GetOwned(ctx, commentID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewForbidden("operation cannot be completed")
		}
		return nil, err
	}

	comment.Comment = text
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes a caller-owned comment.
func (s *CommentService) Delete(ctx context.Context, userID string, commentID int64) error {
	comment, err := s.comments.GetOwned(ctx, commentID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewForbidden("operation cannot be completed")
		}
		return err
	}
	return s.comments.Delete(ctx, comment.ID)
}
