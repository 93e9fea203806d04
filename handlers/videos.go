// handlers/videos.go
package handlers

import (
	"skillpath-backend/middleware"
	"skillpath-backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupVideoRoutes(app *fiber.App, videoService *services.VideoService) {
	videos := app.Group("/api/videos")

	videos.Get("/", func(c *fiber.Ctx) error {
		filter := services.VideoFilter{
			TopicID:    c.Query("topicId"),
			Subject:    c.Query("subject"),
			Difficulty: c.Query("difficulty"),
		}

		list, err := videoService.List(filter)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load videos",
				"cause": err.Error(),
			})
		}
		return c.JSON(list)
	})

	videos.Get("/topic/:topicId", func(c *fiber.Ctx) error {
		list, err := videoService.ByTopic(c.Params("topicId"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load topic videos",
				"cause": err.Error(),
			})
		}
		return c.JSON(list)
	})

	videos.Get("/:id", func(c *fiber.Ctx) error {
		video, err := videoService.Get(c.Params("id"))
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "video not found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load video",
				"cause": err.Error(),
			})
		}
		return c.JSON(video)
	})

	videos.Post("/:id/progress", middleware.Protect(), func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			WatchedDuration int64 `json:"watched_duration"`
			TotalDuration   int64 `json:"total_duration"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		result, err := videoService.UpdateProgress(userID, c.Params("id"), req.WatchedDuration, req.TotalDuration)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "video not found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to update progress",
				"cause": err.Error(),
			})
		}
		return c.JSON(result)
	})
}
