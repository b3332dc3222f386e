package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bitebuddy/internal/services"
)

func (handler *Handler) GetSettings(c *fiber.Ctx) error {
	profile, err := handler.settingsService.LoadProfile()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load settings")
	}
	return c.JSON(profile)
}

// UpdateSettings applies a partial profile update. Omitted fields keep their
// stored values.
func (handler *Handler) UpdateSettings(c *fiber.Ctx) error {
	update := services.ProfileUpdate{}
	if err := c.BodyParser(&update); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	profile, err := handler.settingsService.UpdateProfile(update)
	if err != nil {
		status, message := settingsErrorResponse(err)
		if status == fiber.StatusInternalServerError {
			handler.logger.WithError(err).Error("settings update failed")
		}
		return apiError(c, status, message)
	}

	if update.Language != nil {
		handler.setLanguageCookie(c, profile.Language)
	}
	return c.JSON(profile)
}

func (handler *Handler) GetPersonas(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"personas": services.Personas()})
}

func (handler *Handler) GetLanguages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"default":   handler.i18n.DefaultLanguage(),
		"languages": handler.i18n.SupportedLanguages(),
	})
}

func (handler *Handler) GetModels(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"current": handler.modelName,
		"models":  handler.catalogue.Models(),
	})
}

func settingsErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrSettingsNameTooLong):
		return fiber.StatusBadRequest, "name is too long"
	case errors.Is(err, services.ErrSettingsGoalOutOfRange):
		return fiber.StatusBadRequest, "daily goal out of range"
	case errors.Is(err, services.ErrSettingsWaterGoalRange):
		return fiber.StatusBadRequest, "water goal out of range"
	case errors.Is(err, services.ErrSettingsPersonaUnknown):
		return fiber.StatusBadRequest, "unknown persona"
	case errors.Is(err, services.ErrSettingsGoalTypeUnknown):
		return fiber.StatusBadRequest, "unknown goal type"
	case errors.Is(err, services.ErrSettingsProfileNotCreated):
		return fiber.StatusConflict, "owner not set up"
	default:
		return fiber.StatusInternalServerError, "failed to update settings"
	}
}
