package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agamariel/songorders/internal/lifecycle"
	"github.com/agamariel/songorders/internal/models"
	"github.com/agamariel/songorders/internal/numbering"
	"github.com/agamariel/songorders/internal/storage"
	"github.com/agamariel/songorders/internal/validation"
	"github.com/google/uuid"
)

// ErrConcurrentUpdate возвращается, если заказ менялся параллельно при каждой попытке записи.
var ErrConcurrentUpdate = errors.New("order was modified concurrently")

// maxWriteAttempts - попытки записи при конфликте номера или версии.
const maxWriteAttempts = 3

// OrderService определяет интерфейс работы с заказами.
type OrderService interface {
	CreateOrder(ctx context.Context, req *validation.CreateOrderRequest) (*models.OrderResponse, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.OrderDetailResponse, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) (*models.OrderListResponse, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, req *validation.UpdateOrderRequest) (*models.OrderResponse, error)
	Dashboard(ctx context.Context) (*models.DashboardResponse, error)
}

// OrderServiceImpl реализует OrderService.
type OrderServiceImpl struct {
	orders   OrderStorage
	messages MessageStorage
	payments PaymentStorage
	metrics  OrderMetrics
	clock    func() time.Time
}

// OrderServiceOption настраивает OrderServiceImpl.
type OrderServiceOption func(*OrderServiceImpl)

// WithClock подменяет источник времени.
func WithClock(clock func() time.Time) OrderServiceOption {
	return func(s *OrderServiceImpl) { s.clock = clock }
}

// WithMetrics подключает счётчики заказов.
func WithMetrics(m OrderMetrics) OrderServiceOption {
	return func(s *OrderServiceImpl) { s.metrics = m }
}

// NewOrderService создаёт новый сервис заказов.
func NewOrderService(orders OrderStorage, messages MessageStorage, payments PaymentStorage, opts ...OrderServiceOption) *OrderServiceImpl {
	s := &OrderServiceImpl{
		orders:   orders,
		messages: messages,
		payments: payments,
		metrics:  noopMetrics{},
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *OrderServiceImpl) now() time.Time {
	return s.clock().UTC()
}

// CreateOrder проверяет форму и сохраняет заказ в статусе NEW с новым номером.
func (s *OrderServiceImpl) CreateOrder(ctx context.Context, req *validation.CreateOrderRequest) (*models.OrderResponse, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	now := s.now()
	order := &models.Order{
		Status:          lifecycle.Initial(),
		RecipientName:   req.RecipientName,
		Relationship:    req.Relationship,
		Occasion:        req.Occasion,
		MusicalStyle:    req.MusicalStyle,
		SpecialRequests: req.SpecialRequests,
		Mood:            req.Mood,
		Tempo:           req.Tempo,
		PhoneNumber:     req.PhoneNumber,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var err error
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		err = s.orders.Create(ctx, order)
		if !errors.Is(err, storage.ErrOrderNumberTaken) {
			break
		}
	}
	if err != nil {
		switch {
		case errors.Is(err, numbering.ErrGeneration):
			return nil, err
		case errors.Is(err, storage.ErrOrderNumberTaken):
			return nil, &numbering.GenerationError{Err: err}
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.metrics.OrderCreated()
	return models.NewOrderResponse(order), nil
}

// GetOrder возвращает заказ вместе с перепиской и платежами.
func (s *OrderServiceImpl) GetOrder(ctx context.Context, id uuid.UUID) (*models.OrderDetailResponse, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	messages, err := s.messages.GetByOrderID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order messages: %w", err)
	}

	payments, err := s.payments.GetByOrderID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order payments: %w", err)
	}

	return &models.OrderDetailResponse{
		OrderResponse: *models.NewOrderResponse(order),
		Messages:      models.NewMessageResponses(messages),
		Payments:      models.NewPaymentResponses(payments),
	}, nil
}

// ListOrders возвращает страницу заказов по фильтру.
func (s *OrderServiceImpl) ListOrders(ctx context.Context, filter models.OrderFilter) (*models.OrderListResponse, error) {
	if filter.Page < 1 {
		filter.Page = validation.DefaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = validation.DefaultLimit
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	resp := &models.OrderListResponse{
		Orders:     make([]*models.OrderResponse, 0, len(orders)),
		Pagination: models.NewPagination(filter.Page, filter.Limit, total),
	}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, models.NewOrderResponse(o))
	}

	return resp, nil
}

// UpdateOrder применяет частичное обновление. Смена статуса проходит через
// таблицу переходов и проверяется против версии, прочитанной из хранилища.
func (s *OrderServiceImpl) UpdateOrder(ctx context.Context, id uuid.UUID, req *validation.UpdateOrderRequest) (*models.OrderResponse, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		order, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get order: %w", err)
		}

		expected := order.Version
		previous := order.Status
		now := s.now()

		if req.HasStatusChange() {
			if err := lifecycle.Transition(order, *req.Status, now); err != nil {
				return nil, err
			}
		}
		applyOrderUpdate(order, req)
		order.UpdatedAt = now

		if err := lifecycle.CheckTimeline(order); err != nil {
			var terr *lifecycle.TimelineError
			if errors.As(err, &terr) {
				return nil, validation.NewFieldError(terr.Field, "must not be before "+terr.Earlier)
			}
			return nil, err
		}

		var event *models.OrderEvent
		if order.Status != previous {
			event = models.NewOrderEvent(models.OrderEventStatusChanged, order, &previous)
		}

		err = s.orders.Update(ctx, order, expected, event)
		if err == nil {
			if event != nil {
				s.metrics.OrderTransitioned(previous, order.Status)
			}
			return models.NewOrderResponse(order), nil
		}
		if !errors.Is(err, storage.ErrOrderVersionConflict) {
			return nil, fmt.Errorf("update order: %w", err)
		}

		s.metrics.OrderConflict()
		if attempt >= maxWriteAttempts {
			return nil, ErrConcurrentUpdate
		}
	}
}

// Dashboard считает заказы по статусам. Отсутствующие статусы выводятся с нулём.
func (s *OrderServiceImpl) Dashboard(ctx context.Context) (*models.DashboardResponse, error) {
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	resp := &models.DashboardResponse{ByStatus: make(map[models.OrderStatus]int, len(models.OrderStatuses))}
	for _, status := range models.OrderStatuses {
		resp.ByStatus[status] = counts[status]
		resp.Total += counts[status]
	}
	return resp, nil
}

// applyOrderUpdate переносит в заказ переданные поля, кроме статуса.
// Явно переданные даты перекрывают проставленные при переходе.
func applyOrderUpdate(order *models.Order, req *validation.UpdateOrderRequest) {
	if req.PhoneNumber != nil {
		order.PhoneNumber = *req.PhoneNumber
	}
	if req.TelegramUserID != nil {
		order.TelegramUserID = emptyToNil(req.TelegramUserID)
	}
	if req.TelegramUsername != nil {
		order.TelegramUsername = emptyToNil(req.TelegramUsername)
	}
	if req.SelectedTier != nil {
		tier := *req.SelectedTier
		order.SelectedTier = &tier
	}
	if req.SongFileURL != nil {
		order.SongFileURL = emptyToNil(req.SongFileURL)
	}
	if req.SongFileName != nil {
		order.SongFileName = emptyToNil(req.SongFileName)
	}
	if req.ReadyAt != nil {
		at := req.ReadyAt.UTC()
		order.ReadyAt = &at
	}
	if req.PaidAt != nil {
		at := req.PaidAt.UTC()
		order.PaidAt = &at
	}
	if req.CompletedAt != nil {
		at := req.CompletedAt.UTC()
		order.CompletedAt = &at
	}
}

// emptyToNil: пустая строка в запросе очищает поле.
func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
