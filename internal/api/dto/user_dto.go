package dto

import (
	"time"

	"github.com/spec-kit/article-platform/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LogoutRequest optionally carries the caller's current access token so it
// can be revoked alongside the refresh cookie.
type LogoutRequest struct {
	AccessToken string `json:"access_token"`
}

// AuthResponse is the standard body for register, login and refresh.
type AuthResponse struct {
	ID          string      `json:"id"`
	AccessToken string      `json:"access_token"`
	Role        domain.Role `json:"role"`
	AuthType    string      `json:"auth_type"`
}

// EmailUpdateRequest payload.
type EmailUpdateRequest struct {
	Email string `json:"email"`
}

// PasswordUpdateRequest payload.
type PasswordUpdateRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ProfileUpdateRequest payload; nil fields keep their value.
type ProfileUpdateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// UserResponse is the public account shape.
type UserResponse struct {
	ID        string      `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	LastLogin *time.Time  `json:"last_login,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
	}
}
