// handlers/learning_paths.go
package handlers

import (
	"skillpath-backend/middleware"
	"skillpath-backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupLearningPathRoutes(app *fiber.App, pathService *services.LearningPathService) {
	paths := app.Group("/api/learning-paths", middleware.Protect())

	paths.Post("/generate", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		path, err := pathService.Generate(userID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(path)
	})

	paths.Get("/:userId", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		if c.Params("userId") != userID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "not authorized",
			})
		}

		path, err := pathService.GetByUser(userID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "Learning path not found. Please generate one first.",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load learning path",
				"cause": err.Error(),
			})
		}
		return c.JSON(path)
	})

	paths.Put("/:id/topic/:topicId", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Completed *bool `json:"completed"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		path, err := pathService.SetTopicCompleted(userID, c.Params("id"), c.Params("topicId"), req.Completed)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "topic not found",
				})
			}
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.JSON(path)
	})

	paths.Get("/:id/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		path, completed, err := pathService.Progress(userID, c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "learning path not found",
			})
		}

		return c.JSON(fiber.Map{
			"progress": fiber.Map{
				"completed_topics": path.CompletedTopics,
				"total_topics":     path.TotalTopics,
				"percentage":       path.Percentage,
			},
			"completed_topics": completed,
		})
	})
}
