package models

import (
	"time"

	"github.com/google/uuid"
)

// Типы событий заказа, которые читает бот уведомлений.
const (
	OrderEventCreated       = "order.created"
	OrderEventStatusChanged = "order.status.changed"
)

// OrderEvent - запись outbox о событии заказа.
type OrderEvent struct {
	ID             uuid.UUID    `db:"id" json:"id"`
	Type           string       `db:"type" json:"type"`
	OrderID        uuid.UUID    `db:"order_id" json:"orderId"`
	OrderNumber    string       `db:"order_number" json:"orderNumber"`
	PreviousStatus *OrderStatus `db:"previous_status" json:"previousStatus,omitempty"`
	Status         OrderStatus  `db:"status" json:"status"`
	TelegramUserID *string      `db:"telegram_user_id" json:"telegramUserId,omitempty"`
	OccurredAt     time.Time    `db:"occurred_at" json:"occurredAt"`
	PublishedAt    *time.Time   `db:"published_at" json:"-"`
}

// NewOrderEvent собирает событие по текущему состоянию заказа.
func NewOrderEvent(eventType string, order *Order, previous *OrderStatus) *OrderEvent {
	return &OrderEvent{
		ID:             uuid.New(),
		Type:           eventType,
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		PreviousStatus: previous,
		Status:         order.Status,
		TelegramUserID: order.TelegramUserID,
		OccurredAt:     order.UpdatedAt,
	}
}
