// handlers/leaderboard.go
package handlers

import (
	"strconv"

	"skillpath-backend/middleware"
	"skillpath-backend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeaderboardRoutes(app *fiber.App, leaderboardService *services.LeaderboardService) {
	lb := app.Group("/api/leaderboard")

	// Current week, generated on first read, live-ranked on every read
	lb.Get("/", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "10"))

		views, err := leaderboardService.GetWeekly(limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load leaderboard",
				"cause": err.Error(),
			})
		}
		return c.JSON(views)
	})

	lb.Get("/top3", func(c *fiber.Ctx) error {
		views, err := leaderboardService.GetTop3()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load top 3",
				"cause": err.Error(),
			})
		}
		return c.JSON(views)
	})

	// Persisted rank, not the live re-sorted one. No entry is not an error.
	lb.Get("/my-rank", middleware.Protect(), func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		entry, err := leaderboardService.GetUserRank(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to look up rank",
				"cause": err.Error(),
			})
		}
		if entry == nil {
			return c.JSON(fiber.Map{
				"rank":    nil,
				"message": "No ranking for this week yet",
			})
		}
		return c.JSON(entry)
	})

	// Manual regeneration: purge + rebuild. Bonus points are re-awarded on
	// top of earlier generations.
	lb.Post("/generate", middleware.Protect(), func(c *fiber.Ctx) error {
		entries, err := leaderboardService.Regenerate()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to generate leaderboard",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"message":     "Leaderboard generated",
			"leaderboard": entries,
		})
	})
}
