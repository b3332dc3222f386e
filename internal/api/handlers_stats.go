package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bitebuddy/internal/services"
)

// GetMonthStats summarizes ?month=YYYY-MM, defaulting to the current month.
func (handler *Handler) GetMonthStats(c *fiber.Ctx) error {
	monthStart, err := services.ParseMonth(c.Query("month"), handler.now(), handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid month")
	}

	profile, err := handler.settingsService.LoadProfile()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load profile")
	}

	stats, err := handler.statsService.BuildMonthStats(monthStart, profile)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build stats")
	}
	return c.JSON(stats)
}
