package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/scantrack/attendance-api/internal/models"
	"github.com/scantrack/attendance-api/internal/utils"
)

// Locals keys populated by JWTProtected.
const (
	LocalsUserID   = "user_id"
	LocalsUserRole = "user_role"
)

// JWTProtected returns a middleware that validates JWT bearer tokens and
// stores the caller's id and role in request locals.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		userID := extractUserIDFromClaims(claims)
		if userID == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token subject")
		}
		c.Locals(LocalsUserID, userID)

		if role, ok := extractRoleFromClaims(claims); ok {
			c.Locals(LocalsUserRole, role)
		}

		return c.Next()
	}
}

// UserIDFromContext returns the authenticated caller's id, empty when the
// request never passed JWTProtected.
func UserIDFromContext(c *fiber.Ctx) string {
	if v := c.Locals(LocalsUserID); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// RoleFromContext returns the authenticated caller's role.
func RoleFromContext(c *fiber.Ctx) (models.Role, bool) {
	if v := c.Locals(LocalsUserRole); v != nil {
		if role, ok := v.(models.Role); ok {
			return role, true
		}
	}
	return "", false
}

func extractUserIDFromClaims(claims jwt.MapClaims) string {
	keys := []string{"sub", "user_id", "id"}
	for _, key := range keys {
		value, ok := claims[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case float64:
			if v >= 0 {
				return strconv.FormatUint(uint64(v), 10)
			}
		}
	}
	return ""
}

func extractRoleFromClaims(claims jwt.MapClaims) (models.Role, bool) {
	candidates := []string{"role", "roles"}
	for _, key := range candidates {
		value, ok := claims[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if role, err := models.ParseRole(v); err == nil {
				return role, true
			}
		case []interface{}:
			for _, item := range v {
				str, ok := item.(string)
				if !ok {
					continue
				}
				if role, err := models.ParseRole(str); err == nil {
					return role, true
				}
			}
		}
	}
	return "", false
}
