package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bitebuddy/internal/services"
)

// OnboardingRequired keeps chat closed until the owner has picked a persona.
func (handler *Handler) OnboardingRequired(c *fiber.Ctx) error {
	profile, ok := currentProfile(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !profile.OnboardingCompleted {
		return apiError(c, fiber.StatusConflict, "onboarding required")
	}
	return c.Next()
}

func (handler *Handler) GetOnboarding(c *fiber.Ctx) error {
	required, err := handler.onboardingService.Required()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load onboarding")
	}
	return c.JSON(fiber.Map{
		"completed": !required,
		"personas":  services.Personas(),
	})
}

func (handler *Handler) CompleteOnboarding(c *fiber.Ctx) error {
	update := services.ProfileUpdate{}
	if err := c.BodyParser(&update); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	profile, err := handler.onboardingService.Complete(update)
	switch {
	case errors.Is(err, services.ErrOnboardingPersonaRequired):
		return apiError(c, fiber.StatusBadRequest, "persona is required")
	case errors.Is(err, services.ErrOnboardingAlreadyCompleted):
		return apiError(c, fiber.StatusConflict, "onboarding already completed")
	case err != nil:
		status, message := settingsErrorResponse(err)
		return apiError(c, status, message)
	}

	if update.Language != nil {
		handler.setLanguageCookie(c, profile.Language)
	}
	return c.JSON(profile)
}
