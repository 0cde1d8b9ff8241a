package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sales-crm/internal/domain"
	apperrors "github.com/spec-kit/sales-crm/pkg/util"
)

// RequireRole ensures the signed-in user ranks at least min.
func RequireRole(min domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.User.Role.AtLeast(min) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireManagerial ensures the signed-in user holds a role with subordinates.
func RequireManagerial() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.User.Role.Managerial() {
			return apperrors.NewForbidden("managerial role required")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a principal was loaded.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
