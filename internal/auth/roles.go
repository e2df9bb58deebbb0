package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/petition-service/internal/domain"
	apperrors "github.com/civicdesk/petition-service/pkg/util"
)

// RequireCitizen ensures a citizen is authenticated.
func RequireCitizen() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.SubjectType != domain.SubjectTypeCitizen || principal.User == nil {
			return apperrors.NewForbidden("citizen account required")
		}
		return c.Next()
	}
}

// RequireDepartment ensures a department is authenticated.
func RequireDepartment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.SubjectType != domain.SubjectTypeDepartment || principal.Department == nil {
			return apperrors.NewForbidden("department account required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures an administrator is authenticated.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.SubjectType != domain.SubjectTypeAdmin || principal.Admin == nil {
			return apperrors.NewForbidden("admin account required")
		}
		return c.Next()
	}
}

// RequireAny ensures the caller is authenticated as any subject type.
func RequireAny() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
