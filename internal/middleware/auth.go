package middleware

import (
	"strings"

	"github.com/ItsBlendi/Hackathon-projekt/internal/security"
	"github.com/gofiber/fiber/v2"
)

// Locals keys set by Auth for downstream handlers.
const (
	LocalUserID  = "user_id"
	LocalHouseID = "house_id"
)

// Auth validates the bearer session token and exposes the caller's
// identity to handlers. The scoring core never sees a request without it.
func Auth(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "authentication required",
			})
		}

		claims, err := security.ValidateJWT(strings.TrimPrefix(header, "Bearer "), jwtSecret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "invalid or expired session",
			})
		}

		c.Locals(LocalUserID, claims.UserID)
		if claims.HouseID != nil {
			c.Locals(LocalHouseID, *claims.HouseID)
		}

		return c.Next()
	}
}

// UserID reads the authenticated user id set by Auth. ok is false when
// the middleware did not run, which is a routing bug.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	return id, ok
}
