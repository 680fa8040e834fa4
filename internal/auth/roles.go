package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/article-platform/internal/domain"
	apperrors "github.com/spec-kit/article-platform/pkg/util"
)

// RequireAdmin gates privileged routes. Failing the role check is a 403,
// distinct from the 401 returned for missing or invalid authentication.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("could not validate credentials")
		}
		if principal.Role != domain.RoleAdmin {
			return apperrors.NewForbidden("you do not have permission to access this page")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a principal was attached by the middleware.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("could not validate credentials")
		}
		return c.Next()
	}
}
