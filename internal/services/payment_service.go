package services

import (
	"context"
	"fmt"
	"time"

	"github.com/agamariel/songorders/internal/models"
	"github.com/agamariel/songorders/internal/validation"
	"github.com/google/uuid"
)

// PaymentService определяет интерфейс учёта платежей. Сами платежи
// проводятся вне системы, здесь только сохраняется их состояние.
type PaymentService interface {
	CreatePayment(ctx context.Context, orderID uuid.UUID, req *validation.CreatePaymentRequest) (*models.PaymentResponse, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, req *validation.UpdatePaymentRequest) (*models.PaymentResponse, error)
}

// PaymentServiceImpl реализует PaymentService.
type PaymentServiceImpl struct {
	orders   OrderStorage
	payments PaymentStorage
	clock    func() time.Time
}

// NewPaymentService создаёт сервис платежей.
func NewPaymentService(orders OrderStorage, payments PaymentStorage) *PaymentServiceImpl {
	return &PaymentServiceImpl{orders: orders, payments: payments, clock: time.Now}
}

// CreatePayment регистрирует платёж по заказу в статусе PENDING.
func (s *PaymentServiceImpl) CreatePayment(ctx context.Context, orderID uuid.UUID, req *validation.CreatePaymentRequest) (*models.PaymentResponse, error) {
	req.OrderID = orderID.String()
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	payment := &models.Payment{
		ID:        uuid.New(),
		OrderID:   orderID,
		Amount:    req.Amount.Round(2),
		Currency:  req.Currency,
		Tier:      req.Tier,
		Status:    models.PaymentStatusPending,
		CreatedAt: s.clock().UTC(),
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	return models.NewPaymentResponse(payment), nil
}

// UpdatePayment меняет статус, идентификатор у процессинга и дату оплаты.
func (s *PaymentServiceImpl) UpdatePayment(ctx context.Context, id uuid.UUID, req *validation.UpdatePaymentRequest) (*models.PaymentResponse, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}

	if req.Status != nil {
		payment.Status = *req.Status
	}
	if req.PaymentIntentID != nil {
		payment.PaymentIntentID = emptyToNil(req.PaymentIntentID)
	}
	if req.PaidAt != nil {
		at := req.PaidAt.UTC()
		payment.PaidAt = &at
	}

	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}

	return models.NewPaymentResponse(payment), nil
}
