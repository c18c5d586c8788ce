package handlers

import (
	"net/http"

	"github.com/agamariel/songorders/internal/services"
	"github.com/agamariel/songorders/internal/validation"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PaymentHandler обрабатывает запросы по платежам.
type PaymentHandler struct {
	paymentService services.PaymentService
	log            *zap.Logger
}

func NewPaymentHandler(paymentService services.PaymentService, log *zap.Logger) *PaymentHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentHandler{paymentService: paymentService, log: log}
}

// CreatePayment обрабатывает POST /api/orders/:id/payments.
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	orderID, err := parseID(c, "id", "order")
	if err != nil {
		return err
	}

	var req validation.CreatePaymentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	payment, err := h.paymentService.CreatePayment(c.Request().Context(), orderID, &req)
	if err != nil {
		return toHTTPError(h.log, "create payment", err)
	}

	return c.JSON(http.StatusCreated, payment)
}

// UpdatePayment обрабатывает PATCH /api/payments/:id.
func (h *PaymentHandler) UpdatePayment(c echo.Context) error {
	id, err := parseID(c, "id", "payment")
	if err != nil {
		return err
	}

	var req validation.UpdatePaymentRequest
	if err := bindStrict(c, &req); err != nil {
		return err
	}

	payment, err := h.paymentService.UpdatePayment(c.Request().Context(), id, &req)
	if err != nil {
		return toHTTPError(h.log, "update payment", err)
	}

	return c.JSON(http.StatusOK, payment)
}
