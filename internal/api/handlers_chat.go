package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bitebuddy/internal/services"
)

// GetMessages returns today's conversation, greeting first on a new day.
func (handler *Handler) GetMessages(c *fiber.Ctx) error {
	messages, err := handler.chatService.TodayMessages()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load messages")
	}
	return c.JSON(fiber.Map{"messages": messages})
}

func (handler *Handler) SendMessage(c *fiber.Ctx) error {
	input := chatMessageInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	result, err := handler.chatService.SendMessage(c.UserContext(), input.Content, c.Get(idempotencyKeyHeader))
	switch {
	case errors.Is(err, services.ErrEmptyMessage):
		return apiError(c, fiber.StatusBadRequest, "message content is required")
	case errors.Is(err, services.ErrMessageStoreFailed):
		return apiError(c, fiber.StatusInternalServerError, "failed to store message")
	case errors.Is(err, services.ErrLedgerLoadFailed), errors.Is(err, services.ErrLedgerSaveFailed):
		handler.logger.WithError(err).Error("chat turn could not update the ledger")
		return apiError(c, fiber.StatusInternalServerError, "failed to update ledger")
	case err != nil:
		handler.logger.WithError(err).Error("chat turn failed")
		return apiError(c, fiber.StatusInternalServerError, "failed to process message")
	}
	return c.JSON(result)
}
