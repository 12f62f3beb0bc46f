package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/scantrack/attendance-api/internal/models"
	"github.com/scantrack/attendance-api/internal/utils"
)

// RequireRole ensures that the authenticated caller holds one of the allowed
// roles. It must run after JWTProtected.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		role, ok := RoleFromContext(c)
		if !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
