package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/article-platform/internal/api/dto"
	"github.com/spec-kit/article-platform/internal/auth"
	"github.com/spec-kit/article-platform/internal/service"
	apperrors "github.com/spec-kit/article-platform/pkg/util"
)

// refreshCookieName carries the refresh token between browser and server.
const refreshCookieName = "_rt"

// UsersHandler exposes the session lifecycle and profile endpoints.
type UsersHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, userService *service.UserService) *UsersHandler {
	return &UsersHandler{auth: authService, users: userService}
}

// Register handles POST /user/register. Registration logs the account in
// immediately: both tokens are issued and the refresh cookie is set.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("first_name, last_name, email, password required", nil)
	}

	session, err := h.auth.Register(c.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, session.RefreshToken, session.RefreshExpiresAt)
	return c.Status(http.StatusCreated).JSON(dto.AuthResponse{
		ID:          session.UserID,
		AccessToken: session.AccessToken,
		Role:        session.Role,
		AuthType:    "Bearer",
	})
}

// Login handles POST /user/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	session, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, session.RefreshToken, session.RefreshExpiresAt)
	return c.Status(http.StatusCreated).JSON(dto.AuthResponse{
		ID:          session.UserID,
		AccessToken: session.AccessToken,
		Role:        session.Role,
		AuthType:    "Bearer",
	})
}

// Refresh handles GET /user/refresh. A missing cookie is a 404 signal to
// sign in; an expired refresh token additionally clears the cookie.
func (h *UsersHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies(refreshCookieName)
	if refreshToken == "" {
		return apperrors.NewDomainError("NOT_FOUND", "sign in to continue", http.StatusNotFound, nil)
	}

	session, err := h.auth.Refresh(c.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, service.ErrRefreshExpired) {
			h.clearRefreshCookie(c)
			return apperrors.NewUnauthorized("could not validate credentials")
		}
		return err
	}

	if session.RefreshToken != "" {
		h.setRefreshCookie(c, session.RefreshToken, session.RefreshExpiresAt)
	}
	return c.JSON(dto.AuthResponse{
		ID:          session.UserID,
		AccessToken: session.AccessToken,
		Role:        session.Role,
		AuthType:    "Bearer",
	})
}

// Logout handles POST /user/logout. Both the bearer access token (header or
// body) and the refresh cookie are revoked when present and verifiable; the
// cookie is always cleared. Revocation is committed before the response so
// a client retry cannot race a still-valid token past logout.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	_ = c.BodyParser(&req)

	accessToken := req.AccessToken
	if accessToken == "" {
		accessToken = bearerToken(c)
	}
	refreshToken := c.Cookies(refreshCookieName)

	if err := h.auth.Logout(c.Context(), accessToken, refreshToken); err != nil {
		return err
	}

	h.clearRefreshCookie(c)
	return c.SendStatus(http.StatusNoContent)
}

// CurrentUser handles GET /user/current_user.
func (h *UsersHandler) CurrentUser(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate credentials")
	}

	user, err := h.users.Get(c.Context(), principal.SubjectID)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(dto.NewUserResponse(user))
}

// UpdateEmail handles PATCH /user/email/update.
func (h *UsersHandler) UpdateEmail(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate credentials")
	}

	var req dto.EmailUpdateRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	user, err := h.users.UpdateEmail(c.Context(), principal.SubjectID, req.Email)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(dto.NewUserResponse(user))
}

// UpdatePassword handles PATCH /user/password/update.
func (h *UsersHandler) UpdatePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate credentials")
	}

	var req dto.PasswordUpdateRequest
	if err := c.BodyParser(&req); err != nil || req.OldPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("old_password and new_password required", nil)
	}

	if err := h.users.UpdatePassword(c.Context(), principal.SubjectID, req.OldPassword, req.NewPassword); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"message": "password updated successfully"})
}

// UpdateProfile handles PUT /user/update.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate credentials")
	}

	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.users.UpdateProfile(c.Context(), principal.SubjectID, req.FirstName, req.LastName)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(dto.NewUserResponse(user))
}

// DeleteSelf handles DELETE /user/delete.
func (h *UsersHandler) DeleteSelf(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate credentials")
	}

	if err := h.users.Delete(c.Context(), principal.SubjectID); err != nil {
		return apperrors.MapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// List handles GET /user/users. Admin only.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.Context(), c.Query("query"))
	if err != nil {
		return apperrors.MapError(err)
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(out)
}

// AdminDelete handles DELETE /user/:user_id/delete. Admin only.
func (h *UsersHandler) AdminDelete(c *fiber.Ctx) error {
	if err := h.users.Delete(c.Context(), c.Params("user_id")); err != nil {
		return apperrors.MapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *UsersHandler) setRefreshCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		Secure:   true,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *UsersHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		Secure:   true,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
