package services

import (
	"context"
	"time"

	"github.com/agamariel/songorders/internal/models"
	"github.com/google/uuid"
)

// OrderStorage определяет интерфейс для работы с заказами.
// Create сам выдаёт номер заказа, Update проверяет версию записи.
type OrderStorage interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) ([]*models.Order, int, error)
	Update(ctx context.Context, order *models.Order, expectedVersion int64, event *models.OrderEvent) error
	CountByStatus(ctx context.Context) (map[models.OrderStatus]int, error)
}

// MessageStorage определяет интерфейс для работы с перепиской.
type MessageStorage interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*models.Message, error)
	MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (*models.Message, error)
}

// PaymentStorage определяет интерфейс для работы с платежами.
type PaymentStorage interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
}

// AdminStorage определяет интерфейс для работы с сотрудниками.
type AdminStorage interface {
	Create(ctx context.Context, admin *models.AdminUser) error
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// EventStorage - outbox событий заказов.
type EventStorage interface {
	GetPending(ctx context.Context, limit int) ([]*models.OrderEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error
}

// EventPublisher отправляет событие во внешнюю шину.
type EventPublisher interface {
	Publish(ctx context.Context, event *models.OrderEvent) error
}

// OrderMetrics собирает счётчики по заказам. nil-реализация допустима.
type OrderMetrics interface {
	OrderCreated()
	OrderTransitioned(from, to models.OrderStatus)
	OrderConflict()
	EventPublished(eventType string, ok bool)
}

type noopMetrics struct{}

func (noopMetrics) OrderCreated()                                 {}
func (noopMetrics) OrderTransitioned(from, to models.OrderStatus) {}
func (noopMetrics) OrderConflict()                                {}
func (noopMetrics) EventPublished(eventType string, ok bool)      {}
