package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bitebuddy/internal/services"
)

func (handler *Handler) SetupStatus(c *fiber.Ctx) error {
	required, err := handler.authService.RequiresInitialSetup()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load setup status")
	}
	return c.JSON(fiber.Map{"setup_required": required})
}

// Setup creates the single owner profile on first launch and signs it in.
func (handler *Handler) Setup(c *fiber.Ctx) error {
	input := credentialsInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	profile, err := handler.authService.SetupOwner(input.Email, input.Password, input.Name)
	switch {
	case errors.Is(err, services.ErrAuthCredentialsInvalid):
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	case errors.Is(err, services.ErrWeakPassword):
		return apiError(c, fiber.StatusBadRequest, "weak password")
	case errors.Is(err, services.ErrOwnerExists):
		return apiError(c, fiber.StatusConflict, "owner already exists")
	case err != nil:
		return apiError(c, fiber.StatusInternalServerError, "failed to create owner")
	}

	token, err := handler.setAuthCookie(c, &profile, true)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "token": token, "profile": profile})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	limiterKey := requestLimiterKey(c)
	if handler.loginLimiter.blocked(limiterKey, handler.now()) {
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts")
	}

	input := credentialsInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	profile, err := handler.authService.Authenticate(input.Email, input.Password)
	if errors.Is(err, services.ErrAuthCredentialsInvalid) {
		handler.loginLimiter.recordFailure(limiterKey, handler.now())
		return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to sign in")
	}
	handler.loginLimiter.reset(limiterKey)

	token, err := handler.setAuthCookie(c, &profile, input.RememberMe)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(fiber.Map{
		"ok":                   true,
		"token":                token,
		"must_change_password": profile.MustChangePassword,
	})
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	profile, ok := currentProfile(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(profile)
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	profile, ok := currentProfile(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input := changePasswordInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	err := handler.authService.ChangePassword(profile.ID, input.CurrentPassword, input.NewPassword, input.ConfirmPassword)
	if status, message, failed := changePasswordErrorResponse(err); failed {
		return apiError(c, status, message)
	}

	profile.MustChangePassword = false
	if _, err := handler.setAuthCookie(c, profile, false); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(fiber.Map{"ok": true})
}

func changePasswordErrorResponse(err error) (int, string, bool) {
	switch {
	case err == nil:
		return 0, "", false
	case errors.Is(err, services.ErrPasswordChangeInvalidInput):
		return fiber.StatusBadRequest, "invalid input", true
	case errors.Is(err, services.ErrPasswordMismatch):
		return fiber.StatusBadRequest, "password mismatch", true
	case errors.Is(err, services.ErrInvalidCurrentPassword):
		return fiber.StatusUnauthorized, "invalid current password", true
	case errors.Is(err, services.ErrNewPasswordMustDiffer):
		return fiber.StatusBadRequest, "new password must differ", true
	case errors.Is(err, services.ErrWeakPassword):
		return fiber.StatusBadRequest, "weak password", true
	default:
		return fiber.StatusInternalServerError, "failed to update password", true
	}
}
