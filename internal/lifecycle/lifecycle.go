// Package lifecycle описывает конечный автомат статусов заказа.
package lifecycle

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/agamariel/songorders/internal/models"
)

var (
	// ErrInvalidTransition - переход не разрешён из текущего статуса.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrTimelineOrder - даты готовности, оплаты и завершения идут не по порядку.
	ErrTimelineOrder = errors.New("lifecycle timestamps out of order")
)

// transitions: текущий статус -> допустимые следующие. COMPLETED терминальный.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusNew:        {models.OrderStatusInProgress},
	models.OrderStatusInProgress: {models.OrderStatusReady, models.OrderStatusNew},
	models.OrderStatusReady:      {models.OrderStatusPaid, models.OrderStatusInProgress},
	models.OrderStatusPaid:       {models.OrderStatusCompleted},
	models.OrderStatusCompleted:  {},
}

// InvalidTransitionError называет исходный и запрошенный статус.
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("Cannot transition from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Initial - статус нового заказа.
func Initial() models.OrderStatus {
	return models.OrderStatusNew
}

// Allowed возвращает статусы, в которые можно перейти из from.
func Allowed(from models.OrderStatus) []models.OrderStatus {
	return slices.Clone(transitions[from])
}

// CanTransition проверяет пару по таблице. Переход в тот же статус не разрешён.
func CanTransition(from, to models.OrderStatus) bool {
	return slices.Contains(transitions[from], to)
}

// IsTerminal сообщает, что из статуса нет переходов.
func IsTerminal(status models.OrderStatus) bool {
	next, ok := transitions[status]
	return ok && len(next) == 0
}

// Transition переводит заказ в статус to. При ошибке заказ не меняется.
// Время достижения READY, PAID и COMPLETED проставляется автоматически.
func Transition(order *models.Order, to models.OrderStatus, now time.Time) error {
	if !CanTransition(order.Status, to) {
		return &InvalidTransitionError{From: order.Status, To: to}
	}

	order.Status = to
	order.UpdatedAt = now
	stamp(order, to, now)
	return nil
}

func stamp(order *models.Order, status models.OrderStatus, now time.Time) {
	at := now
	switch status {
	case models.OrderStatusReady:
		order.ReadyAt = &at
	case models.OrderStatusPaid:
		order.PaidAt = &at
	case models.OrderStatusCompleted:
		order.CompletedAt = &at
	}
}

// TimelineError - дата Field раньше даты Earlier.
type TimelineError struct {
	Field   string
	Earlier string
}

func (e *TimelineError) Error() string {
	return fmt.Sprintf("%s: %s is before %s", ErrTimelineOrder, e.Field, e.Earlier)
}

func (e *TimelineError) Unwrap() error {
	return ErrTimelineOrder
}

// CheckTimeline проверяет readyAt <= paidAt <= completedAt для заданных дат.
func CheckTimeline(order *models.Order) error {
	stamps := []struct {
		name string
		at   *time.Time
	}{
		{"readyAt", order.ReadyAt},
		{"paidAt", order.PaidAt},
		{"completedAt", order.CompletedAt},
	}

	var prevName string
	var prev *time.Time
	for _, s := range stamps {
		if s.at == nil {
			continue
		}
		if prev != nil && s.at.Before(*prev) {
			return &TimelineError{Field: s.name, Earlier: prevName}
		}
		prev, prevName = s.at, s.name
	}
	return nil
}
