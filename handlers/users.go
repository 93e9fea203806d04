// handlers/users.go
package handlers

import (
	"fmt"
	"path/filepath"

	"skillpath-backend/middleware"
	"skillpath-backend/models"
	"skillpath-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func SetupUserRoutes(app *fiber.App, db *gorm.DB) {
	users := app.Group("/api/users", middleware.Protect())

	// Own profile only; the ID in the path must match the token subject.
	users.Get("/:id", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		if c.Params("id") != userID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "not authorized",
			})
		}

		var user models.User
		err := db.Preload("VideoProgress").
			Preload("AssessmentResults").
			Preload("AssessmentResults.Assessment").
			First(&user, "id = ?", userID).Error
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "user not found",
			})
		}
		return c.JSON(user)
	})

	users.Post("/:id/avatar", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		if c.Params("id") != userID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "not authorized",
			})
		}
		if !utils.StorageEnabled() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "avatar storage not configured",
			})
		}

		fileHeader, err := c.FormFile("avatar")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "avatar file is required",
			})
		}

		key := fmt.Sprintf("avatars/%s%s", uuid.NewString(), filepath.Ext(fileHeader.Filename))
		url, err := utils.UploadFile(fileHeader, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to upload avatar",
				"cause": err.Error(),
			})
		}

		if err := db.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("avatar_url", url).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to save avatar URL",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{"avatar_url": url})
	})
}
