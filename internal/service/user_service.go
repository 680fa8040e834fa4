package service

import (
	"context"
	"strings"

	"github.com/spec-kit/article-platform/internal/auth"
	"github.com/spec-kit/article-platform/internal/domain"
	"github.com/spec-kit/article-platform/internal/repository"
	apperrors "github.com/spec-kit/article-platform/pkg/util"
)

// UserService covers profile operations for authenticated accounts.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

// Get returns the account for the given id.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateEmail changes the account email after a uniqueness check.
func (s *UserService) UpdateEmail(ctx context.Context, id, email string) (*domain.User, error) {
	email = strings.ToLower(email)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflict("user already exists", map[string]any{"field": "email"})
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Email = email
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdatePassword verifies the current password before storing a new hash.
func (s *UserService) UpdatePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, oldPassword); err != nil {
		return apperrors.NewValidationError("invalid current password", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

// UpdateProfile changes name fields; unset fields keep their value.
func (s *UserService) UpdateProfile(ctx context.Context, id string, firstName, lastName *string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if firstName != nil {
		user.FirstName = *firstName
	}
	if lastName != nil {
		user.LastName = *lastName
	}
	user.Slugify()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// List returns accounts whose email contains the query. Admin only; the
// handler enforces the role.
func (s *UserService) List(ctx context.Context, emailQuery string) ([]domain.User, error) {
	return s.users.Search(ctx, emailQuery)
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}
