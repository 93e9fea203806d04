// handlers/activity.go
package handlers

import (
	"time"

	"skillpath-backend/middleware"
	"skillpath-backend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupActivityRoutes(app *fiber.App, activityService *services.ActivityService) {
	activity := app.Group("/api/activity", middleware.Protect())

	// Discrete elapsed-seconds deltas from the client timer. The service
	// handles week rollover; the handler only validates shape.
	activity.Post("/track-time", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Seconds   int64  `json:"seconds"`
			Timestamp string `json:"timestamp"` // RFC3339, optional
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.Seconds <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "seconds must be a positive integer",
			})
		}

		var timestamp time.Time
		if req.Timestamp != "" {
			parsed, err := time.Parse(time.RFC3339, req.Timestamp)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "invalid timestamp (use RFC3339)",
				})
			}
			timestamp = parsed
		}

		result, err := activityService.TrackTime(userID, req.Seconds, timestamp)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to track time",
				"cause": err.Error(),
			})
		}
		return c.JSON(result)
	})

	activity.Get("/stats", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		stats, err := activityService.Stats(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load stats",
				"cause": err.Error(),
			})
		}
		return c.JSON(stats)
	})
}
