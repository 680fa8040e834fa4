package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/article-platform/internal/domain"
	"github.com/spec-kit/article-platform/internal/events"
	"github.com/spec-kit/article-platform/internal/repository"
	apperrors "github.com/spec-kit/article-platform/pkg/util"
)

// ArticleInput carries the writable article fields.
type ArticleInput struct {
	Title       string
	ImageURL    string
	Description string
	Content     string
	TagIDs      []int64
}

// ArticleService covers article CRUD. Mutations are admin gated by the
// handler layer.
type ArticleService struct {
	articles   repository.ArticleRepository
	dispatcher events.Dispatcher
}

// NewArticleService builds the service.
func NewArticleService(articles repository.ArticleRepository, dispatcher events.Dispatcher) *ArticleService {
	return &ArticleService{articles: articles, dispatcher: dispatcher}
}

// Create persists a new article under a slug id derived from the title.
func (s *ArticleService) Create(ctx context.Context, actorID string, input ArticleInput) (*domain.Article, error) {
	exists, err := s.articles.ExistsByTitle(ctx, input.Title)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflict("article already exists", map[string]any{"field": "title"})
	}

	id, err := articleSlug(input.Title)
	if err != nil {
		return nil, err
	}

	article := &domain.Article{
		ID:          id,
		Title:       input.Title,
		ImageURL:    input.ImageURL,
		Description: input.Description,
		Content:     input.Content,
	}
	if err := s.articles.Create(ctx, article, input.TagIDs); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:      events.EventArticleCreated,
			SubjectID: actorID,
			Payload:   events.ArticleCreatedPayload{ArticleID: article.ID, Title: article.Title},
		})
	}

	return s.articles.GetByID(ctx, article.ID)
}

// Get loads an article with its tags, comments and vote count.
func (s *ArticleService) Get(ctx context.Context, id string) (*domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("article", nil)
		}
		return nil, err
	}
	return article, nil
}

// Update applies set fields; a nil TagIDs leaves the tag set untouched.
func (s *ArticleService) Update(ctx context.Context, id string, title, imageURL, description, content *string, tagIDs []int64) (*domain.Article, error) {
	article, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if title != nil {
		article.Title = *title
	}
	if imageURL != nil {
		article.ImageURL = *imageURL
	}
	if description != nil {
		article.Description = *description
	}
	if content != nil {
		article.Content = *content
	}

	if err := s.articles.Update(ctx, article, tagIDs); err != nil {
		return nil, err
	}
	return s.articles.GetByID(ctx, id)
}

// Delete removes an article and its associations.
func (s *ArticleService) Delete(ctx context.Context, id string) error {
	if err := s.articles.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("article", nil)
		}
		return err
	}
	return nil
}

// ListByTag returns all articles labeled with the named tag.
func (s *ArticleService) ListByTag(ctx context.Context, tagName string) ([]domain.Article, error) {
	articles, err := s.articles.ListByTagName(ctx, tagName)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, apperrors.NewNotFound("articles", nil)
	}
	return articles, nil
}

func articleSlug(title string) (string, error) {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	slug := strings.ToLower(strings.Join(strings.Fields(title), "-"))
	return fmt.Sprintf("%s-%s", slug, hex.EncodeToString(buf)), nil
}
