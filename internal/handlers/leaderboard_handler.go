package handlers

import (
	"github.com/ItsBlendi/Hackathon-projekt/internal/services"
	"github.com/gofiber/fiber/v2"
)

type LeaderboardHandler struct {
	leaderboard  *services.LeaderboardService
	defaultLimit int
}

func NewLeaderboardHandler(leaderboard *services.LeaderboardService, defaultLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboard:  leaderboard,
		defaultLimit: defaultLimit,
	}
}

// GetLeaderboard handles GET /api/leaderboard.
func (h *LeaderboardHandler) GetLeaderboard(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", h.defaultLimit)
	if limit <= 0 || limit > h.defaultLimit {
		limit = h.defaultLimit
	}

	players, err := h.leaderboard.TopPlayers(limit)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"message": "failed to load leaderboard",
		})
	}

	houses, err := h.leaderboard.HouseRankings()
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"message": "failed to load leaderboard",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"players": players,
		"houses":  houses,
	})
}
