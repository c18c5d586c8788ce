package handlers

import (
	"net/http"

	"github.com/agamariel/songorders/internal/services"
	"github.com/agamariel/songorders/internal/validation"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// OrderHandler обрабатывает запросы, связанные с заказами.
type OrderHandler struct {
	orderService services.OrderService
	log          *zap.Logger
}

func NewOrderHandler(orderService services.OrderService, log *zap.Logger) *OrderHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderHandler{orderService: orderService, log: log}
}

// CreateOrder обрабатывает POST /api/orders.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req validation.CreateOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.CreateOrder(c.Request().Context(), &req)
	if err != nil {
		return toHTTPError(h.log, "create order", err)
	}

	return c.JSON(http.StatusCreated, order)
}

// ListOrders обрабатывает GET /api/orders.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	filter, err := validation.ParseOrderFilter(c.QueryParams())
	if err != nil {
		return toHTTPError(h.log, "list orders", err)
	}

	orders, err := h.orderService.ListOrders(c.Request().Context(), filter)
	if err != nil {
		return toHTTPError(h.log, "list orders", err)
	}

	return c.JSON(http.StatusOK, orders)
}

// GetOrder обрабатывает GET /api/orders/:id.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := parseID(c, "id", "order")
	if err != nil {
		return err
	}

	order, err := h.orderService.GetOrder(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(h.log, "get order", err)
	}

	return c.JSON(http.StatusOK, order)
}

// UpdateOrder обрабатывает PATCH /api/orders/:id. Неизвестные поля в теле отклоняются.
func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	id, err := parseID(c, "id", "order")
	if err != nil {
		return err
	}

	var req validation.UpdateOrderRequest
	if err := bindStrict(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.UpdateOrder(c.Request().Context(), id, &req)
	if err != nil {
		return toHTTPError(h.log, "update order", err)
	}

	return c.JSON(http.StatusOK, order)
}
