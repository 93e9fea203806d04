// handlers/reviews.go
package handlers

import (
	"skillpath-backend/middleware"
	"skillpath-backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupReviewRoutes(app *fiber.App, reviewService *services.ReviewService) {
	reviews := app.Group("/api/reviews")

	reviews.Get("/", func(c *fiber.Ctx) error {
		list, err := reviewService.List(c.Query("type"), c.Query("targetId"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load reviews",
				"cause": err.Error(),
			})
		}
		return c.JSON(list)
	})

	reviews.Post("/", middleware.Protect(), func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Type     string `json:"type"`
			TargetID string `json:"target_id"`
			Rating   int    `json:"rating"`
			Comment  string `json:"comment"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		review, err := reviewService.Create(userID, req.Type, req.TargetID, req.Rating, req.Comment)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(review)
	})

	reviews.Put("/:id", middleware.Protect(), func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Rating  int     `json:"rating"`
			Comment *string `json:"comment"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		review, err := reviewService.Update(userID, c.Params("id"), req.Rating, req.Comment)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "review not found",
				})
			}
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.JSON(review)
	})

	reviews.Post("/:id/helpful", middleware.Protect(), func(c *fiber.Ctx) error {
		review, err := reviewService.MarkHelpful(c.Params("id"))
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "review not found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to mark review helpful",
				"cause": err.Error(),
			})
		}
		return c.JSON(review)
	})
}
