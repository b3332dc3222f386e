package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bitebuddy/internal/services"
)

// queryDateRange reads the from/to query parameters. The returned message is
// empty when the range is usable.
func (handler *Handler) queryDateRange(c *fiber.Ctx) (services.DateRange, string) {
	dateRange, err := services.ParseDateRange(c.Query("from"), c.Query("to"), handler.location)
	if err == nil {
		return dateRange, ""
	}
	return services.DateRange{}, dateRangeErrorMessage(err)
}

func dateRangeErrorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrRangeFromInvalid):
		return "invalid from date"
	case errors.Is(err, services.ErrRangeToInvalid):
		return "invalid to date"
	default:
		return "invalid range"
	}
}
