package handlers

import (
	"github.com/ItsBlendi/Hackathon-projekt/internal/middleware"
	"github.com/ItsBlendi/Hackathon-projekt/internal/services"
	"github.com/ItsBlendi/Hackathon-projekt/pkg/errors"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	leaderboard *services.LeaderboardService
}

func NewUserHandler(leaderboard *services.LeaderboardService) *UserHandler {
	return &UserHandler{leaderboard: leaderboard}
}

// GetProgress handles GET /api/users/me/progress for the dashboard.
func (h *UserHandler) GetProgress(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "authentication required",
		})
	}

	progress, err := h.leaderboard.Progress(userID)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "player not found",
			})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"message": "failed to load progress",
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"progress": progress,
	})
}
