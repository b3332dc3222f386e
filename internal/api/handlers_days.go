package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/terraincognita07/bitebuddy/internal/services"
)

const defaultDaysRange = 30

func (handler *Handler) GetDay(c *fiber.Ctx) error {
	day, err := services.ParseDayParam(c.Params("date"), handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	dailyLog, err := handler.ledgerService.FetchDay(day)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load day")
	}
	return c.JSON(dailyLog)
}

// GetDays lists stored days in [from, to]. Missing bounds default to the
// last 30 days ending today.
func (handler *Handler) GetDays(c *fiber.Ctx) error {
	dateRange, rangeError := handler.queryDateRange(c)
	if rangeError != "" {
		return apiError(c, fiber.StatusBadRequest, rangeError)
	}

	today := services.DateAtLocation(handler.now(), handler.location)
	rangeFrom, rangeTo, err := dateRange.Window(today, defaultDaysRange)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, dateRangeErrorMessage(err))
	}

	days, err := handler.ledgerService.FetchRange(rangeFrom, rangeTo)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load days")
	}
	return c.JSON(fiber.Map{
		"from": rangeFrom.Format(services.DateLayout),
		"to":   rangeTo.Format(services.DateLayout),
		"days": days,
	})
}

func (handler *Handler) DeleteMeal(c *fiber.Ctx) error {
	entryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid meal id")
	}

	outcome, err := handler.ledgerService.DeleteMeal(entryID)
	switch {
	case errors.Is(err, services.ErrMealEntryNotFound):
		return apiError(c, fiber.StatusNotFound, "meal not found")
	case err != nil:
		return apiError(c, fiber.StatusInternalServerError, "failed to delete meal")
	}
	return c.JSON(fiber.Map{"ok": true, "removed": outcome.Removed, "day": outcome.Day})
}

func (handler *Handler) LogWater(c *fiber.Ctx) error {
	input := waterInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	day, err := handler.chatService.LogWater(input.AmountML)
	switch {
	case errors.Is(err, services.ErrInvalidWaterAmount):
		return apiError(c, fiber.StatusBadRequest, "invalid water amount")
	case err != nil:
		return apiError(c, fiber.StatusInternalServerError, "failed to log water")
	}

	streak, err := handler.streakService.Current()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load streak")
	}
	return c.JSON(fiber.Map{"ok": true, "day": day, "streak": streak})
}

func (handler *Handler) GetStreak(c *fiber.Ctx) error {
	streak, err := handler.streakService.Current()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load streak")
	}
	return c.JSON(streak)
}
