package handlers

import (
	"github.com/ItsBlendi/Hackathon-projekt/internal/config"
	"github.com/ItsBlendi/Hackathon-projekt/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes wires the HTTP surface. The leaderboard is public; score
// submission and progress require a session.
func SetupRoutes(
	app *fiber.App,
	cfg *config.Config,
	scores *ScoreHandler,
	leaderboard *LeaderboardHandler,
	users *UserHandler,
	limiter *middleware.RateLimiter,
) {
	api := app.Group("/api")

	api.Get("/leaderboard", limiter.Handler(), leaderboard.GetLeaderboard)

	secured := api.Group("/", middleware.Auth(cfg.JWTSecret), limiter.Handler())
	secured.Post("/scores", scores.SubmitScore)
	secured.Post("/games/:slug/scores", scores.SubmitScore)
	secured.Get("/users/me/progress", users.GetProgress)
}
