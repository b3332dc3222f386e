package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bitebuddy/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (handler *Handler) ExportSummary(c *fiber.Ctx) error {
	days, _, status, message := handler.exportDays(c)
	if status != 0 {
		return apiError(c, status, message)
	}
	return c.JSON(handler.exportService.BuildSummary(days))
}

func (handler *Handler) ExportCSV(c *fiber.Ctx) error {
	days, now, status, message := handler.exportDays(c)
	if status != 0 {
		return apiError(c, status, message)
	}

	var output bytes.Buffer
	if err := handler.exportService.WriteCSV(&output, days, handler.exportLanguage(c)); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}

	setAttachmentHeaders(c, "text/csv", exportFilename(now, "csv"))
	return c.Send(output.Bytes())
}

func (handler *Handler) ExportJSON(c *fiber.Ctx) error {
	days, now, status, message := handler.exportDays(c)
	if status != 0 {
		return apiError(c, status, message)
	}

	payload := fiber.Map{
		"exported_at": now.Format(time.RFC3339),
		"summary":     handler.exportService.BuildSummary(days),
		"days":        days,
	}
	serialized, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}

	setAttachmentHeaders(c, fiber.MIMEApplicationJSON, exportFilename(now, "json"))
	return c.Send(serialized)
}

func (handler *Handler) ExportXLSX(c *fiber.Ctx) error {
	days, now, status, message := handler.exportDays(c)
	if status != 0 {
		return apiError(c, status, message)
	}

	var output bytes.Buffer
	if err := handler.exportService.WriteXLSX(&output, days, handler.exportLanguage(c)); err != nil {
		handler.logger.WithError(err).Error("xlsx export failed")
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}

	setAttachmentHeaders(c, xlsxContentType, exportFilename(now, "xlsx"))
	return c.Send(output.Bytes())
}

// exportDays loads the export rows for the request's range.
func (handler *Handler) exportDays(c *fiber.Ctx) ([]services.ExportDay, time.Time, int, string) {
	dateRange, rangeError := handler.queryDateRange(c)
	if rangeError != "" {
		return nil, time.Time{}, fiber.StatusBadRequest, rangeError
	}

	now := handler.now().In(handler.location)
	days, err := handler.exportService.BuildDays(dateRange, now)
	if err != nil {
		handler.logger.WithError(err).Error("export days could not be loaded")
		return nil, now, fiber.StatusInternalServerError, "failed to fetch days"
	}
	return days, now, 0, ""
}

func exportFilename(now time.Time, extension string) string {
	return fmt.Sprintf("bitebuddy-export-%s.%s", now.Format(services.DateLayout), extension)
}

func setAttachmentHeaders(c *fiber.Ctx, contentType string, filename string) {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
}
