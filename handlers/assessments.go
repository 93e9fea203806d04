// handlers/assessments.go
package handlers

import (
	"skillpath-backend/middleware"
	"skillpath-backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupAssessmentRoutes(app *fiber.App, assessmentService *services.AssessmentService) {
	assessments := app.Group("/api/assessments")

	assessments.Get("/", func(c *fiber.Ctx) error {
		list, err := assessmentService.List()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load assessments",
				"cause": err.Error(),
			})
		}
		return c.JSON(list)
	})

	assessments.Post("/submit", middleware.Protect(), func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			AssessmentID string                     `json:"assessment_id"`
			Answers      []services.SubmittedAnswer `json:"answers"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		outcome, err := assessmentService.Submit(userID, req.AssessmentID, req.Answers)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "assessment not found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to submit assessment",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"score":           outcome.Score,
			"level":           outcome.Level,
			"correct_count":   outcome.CorrectCount,
			"total_questions": outcome.TotalQuestions,
			"message":         "Assessment submitted successfully",
		})
	})

	// Registered before /:id so "results" isn't swallowed by the wildcard.
	assessments.Get("/results", middleware.Protect(), func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		results, err := assessmentService.ResultsForUser(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load results",
				"cause": err.Error(),
			})
		}
		return c.JSON(results)
	})

	assessments.Get("/:id", func(c *fiber.Ctx) error {
		assessment, err := assessmentService.Get(c.Params("id"))
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "assessment not found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load assessment",
				"cause": err.Error(),
			})
		}
		return c.JSON(assessment)
	})
}
