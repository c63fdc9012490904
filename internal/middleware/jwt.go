package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/scholarship-api/internal/auth"
	"github.com/noah-isme/scholarship-api/internal/utils"
)

// Locals keys populated by JWTProtected.
const (
	LocalUserID             = "user_id"
	LocalUserRole           = "user_role"
	LocalMustChangePassword = "must_change_password"
)

// TokenParser validates access tokens.
type TokenParser interface {
	ParseAccess(raw string) (auth.Claims, error)
}

// JWTProtected returns a middleware that validates bearer access tokens.
func JWTProtected(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get(fiber.HeaderAuthorization)
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, err := parser.ParseAccess(tokenString)
		if err != nil || claims.UserID == 0 {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUserRole, strings.ToLower(strings.TrimSpace(claims.Role)))
		c.Locals(LocalMustChangePassword, claims.MustChangePassword)

		return c.Next()
	}
}

// RequirePasswordChanged blocks tokens issued to accounts that still carry a
// temporary password.
func RequirePasswordChanged() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if mustChange, ok := c.Locals(LocalMustChangePassword).(bool); ok && mustChange {
			return utils.SendError(c, fiber.StatusForbidden, "password change required")
		}
		return c.Next()
	}
}
