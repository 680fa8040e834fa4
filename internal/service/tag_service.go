package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/article-platform/internal/domain"
	"github.com/spec-kit/article-platform/internal/repository"
	apperrors "github.com/spec-kit/article-platform/pkg/util"
)

// TagService covers tag management. Admin gated by the handler layer.
type TagService struct {
	tags repository.TagRepository
}

// NewTagService builds the service.
func NewTagService(tags repository.TagRepository) *TagService {
	return &TagService{tags: tags}
}

// Create inserts a new tag after a name-uniqueness check.
func (s *TagService) Create(ctx context.Context, name string, parentID *int64) (*domain.Tag, error) {
	tag := &domain.Tag{Name: name, ParentID: parentID}
	tag.Slugify()

	exists, err := s.tags.ExistsByName(ctx, tag.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflict("tag already exists", map[string]any{"field": "name"})
	}

	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// Delete removes a tag.
func (s *TagService) Delete(ctx context.Context, id int64) error {
	if err := s.tags.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("tag", nil)
		}
		return err
	}
	return nil
}
