package handlers

import (
	"net/http"

	"github.com/agamariel/songorders/internal/services"
	"github.com/agamariel/songorders/internal/validation"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// MessageHandler обрабатывает переписку по заказу.
type MessageHandler struct {
	messageService services.MessageService
	log            *zap.Logger
}

func NewMessageHandler(messageService services.MessageService, log *zap.Logger) *MessageHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MessageHandler{messageService: messageService, log: log}
}

// CreateMessage обрабатывает POST /api/orders/:id/messages.
func (h *MessageHandler) CreateMessage(c echo.Context) error {
	orderID, err := parseID(c, "id", "order")
	if err != nil {
		return err
	}

	var req validation.CreateMessageRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	msg, err := h.messageService.CreateMessage(c.Request().Context(), orderID, &req)
	if err != nil {
		return toHTTPError(h.log, "create message", err)
	}

	return c.JSON(http.StatusCreated, msg)
}

// ListMessages обрабатывает GET /api/orders/:id/messages.
func (h *MessageHandler) ListMessages(c echo.Context) error {
	orderID, err := parseID(c, "id", "order")
	if err != nil {
		return err
	}

	messages, err := h.messageService.ListMessages(c.Request().Context(), orderID)
	if err != nil {
		return toHTTPError(h.log, "list messages", err)
	}

	return c.JSON(http.StatusOK, messages)
}

// MarkRead обрабатывает POST /api/messages/:id/read.
func (h *MessageHandler) MarkRead(c echo.Context) error {
	id, err := parseID(c, "id", "message")
	if err != nil {
		return err
	}

	msg, err := h.messageService.MarkRead(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(h.log, "mark message read", err)
	}

	return c.JSON(http.StatusOK, msg)
}
