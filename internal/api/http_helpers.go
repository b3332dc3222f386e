package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bitebuddy/internal/models"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func currentProfile(c *fiber.Ctx) (*models.Profile, bool) {
	profile, ok := c.Locals(contextProfileKey).(*models.Profile)
	return profile, ok && profile != nil
}

func currentLanguage(c *fiber.Ctx) string {
	language, _ := c.Locals(contextLanguageKey).(string)
	return language
}
