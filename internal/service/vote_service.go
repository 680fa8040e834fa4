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

// VoteService toggles likes on articles.
type VoteService struct {
	votes      repository.VoteRepository
	articles   repository.ArticleRepository
	dispatcher events.Dispatcher
}

// NewVoteService builds the service.
func NewVoteService(votes repository.VoteRepository, articles repository.ArticleRepository, dispatcher events.Dispatcher) *VoteService {
	return &VoteService{votes: votes, articles: articles, dispatcher: dispatcher}
}

// Toggle adds a vote for (user, article), or removes an existing one.
// Returns true when the article ends up liked.
func (s *VoteService) Toggle(ctx context.Context, userID, articleID string) (bool, error) {
	if _, err := s.articles.GetByID(ctx, articleID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.NewNotFound("article", nil)
		}
		return false, err
	}

	existing, err := s.votes.Get(ctx, userID, articleID)
	if err != nil {
		return false, err
	}

	liked := existing == nil
	if liked {
		if err := s.votes.Create(ctx, &domain.Vote{UserID: userID, ArticleID: articleID}); err != nil {
			return false, err
		}
	} else {
		if err := s.votes.Delete(ctx, existing.ID); err != nil {
			return false, err
		}
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:      events.EventArticleVoted,
			SubjectID: userID,
			Payload:   events.ArticleVotedPayload{ArticleID: articleID, Liked: liked},
		})
	}

	return liked, nil
}
