package handlers

import (
	"github.com/ItsBlendi/Hackathon-projekt/internal/middleware"
	"github.com/ItsBlendi/Hackathon-projekt/internal/services"
	"github.com/ItsBlendi/Hackathon-projekt/pkg/errors"
	"github.com/gofiber/fiber/v2"
)

type ScoreHandler struct {
	scoring *services.ScoringService
}

func NewScoreHandler(scoring *services.ScoringService) *ScoreHandler {
	return &ScoreHandler{scoring: scoring}
}

type submitScoreRequest struct {
	Game           string `json:"game"`
	Score          *int64 `json:"score"`
	IdempotencyKey string `json:"idempotency_key"`
}

// SubmitScore handles POST /api/scores and POST /api/games/:slug/scores.
// The game slug comes from the path when present, otherwise from the
// body, matching the wire shape the mini-games already send.
func (h *ScoreHandler) SubmitScore(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "authentication required",
		})
	}

	var req submitScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
		})
	}

	gameSlug := c.Params("slug")
	if gameSlug == "" {
		gameSlug = req.Game
	}
	if gameSlug == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "game is required",
		})
	}

	if req.Score == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "score is required",
		})
	}

	result, err := h.scoring.Submit(c.UserContext(), userID, gameSlug, *req.Score, req.IdempotencyKey)
	if err != nil {
		return submissionError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"xp_earned":      result.XPEarned,
		"new_xp":         result.NewTotalXP,
		"level":          result.NewLevel,
		"new_high_score": result.IsNewHighScore,
		"duplicate":      result.Duplicate,
	})
}

func submissionError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "an error occurred while saving your score"

	switch errors.Code(err) {
	case errors.ErrCodeUnknownGame:
		status = fiber.StatusNotFound
		message = "unknown game"
	case errors.ErrCodeInvalidScore:
		status = fiber.StatusBadRequest
		message = "invalid score"
	case errors.ErrCodeValidationFailed:
		status = fiber.StatusBadRequest
		message = "invalid submission"
	case errors.ErrCodeNotFound:
		status = fiber.StatusNotFound
		message = "player not found"
	case errors.ErrCodeDuplicateSubmission:
		status = fiber.StatusConflict
		message = "score already submitted"
	case errors.ErrCodeStorageError:
		// Transient; nothing was written, the caller can retry the same
		// submission safely.
		status = fiber.StatusServiceUnavailable
		message = "failed to save score, please try again"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
