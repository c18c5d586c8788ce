package services

import (
	"context"
	"fmt"
	"time"

	"github.com/agamariel/songorders/internal/models"
	"github.com/agamariel/songorders/internal/validation"
	"github.com/google/uuid"
)

// MessageService определяет интерфейс переписки по заказу.
type MessageService interface {
	CreateMessage(ctx context.Context, orderID uuid.UUID, req *validation.CreateMessageRequest) (*models.MessageResponse, error)
	ListMessages(ctx context.Context, orderID uuid.UUID) ([]*models.MessageResponse, error)
	MarkRead(ctx context.Context, id uuid.UUID) (*models.MessageResponse, error)
}

// MessageServiceImpl реализует MessageService.
type MessageServiceImpl struct {
	orders   OrderStorage
	messages MessageStorage
	clock    func() time.Time
}

// NewMessageService создаёт сервис переписки.
func NewMessageService(orders OrderStorage, messages MessageStorage) *MessageServiceImpl {
	return &MessageServiceImpl{orders: orders, messages: messages, clock: time.Now}
}

// CreateMessage добавляет сообщение к заказу.
func (s *MessageServiceImpl) CreateMessage(ctx context.Context, orderID uuid.UUID, req *validation.CreateMessageRequest) (*models.MessageResponse, error) {
	req.OrderID = orderID.String()
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	msg := &models.Message{
		ID:        uuid.New(),
		OrderID:   orderID,
		Sender:    req.Sender,
		Content:   req.Content,
		CreatedAt: s.clock().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	return models.NewMessageResponse(msg), nil
}

// ListMessages возвращает переписку по заказу.
func (s *MessageServiceImpl) ListMessages(ctx context.Context, orderID uuid.UUID) ([]*models.MessageResponse, error) {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	messages, err := s.messages.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	return models.NewMessageResponses(messages), nil
}

// MarkRead отмечает сообщение прочитанным. Повторный вызов время не меняет.
func (s *MessageServiceImpl) MarkRead(ctx context.Context, id uuid.UUID) (*models.MessageResponse, error) {
	msg, err := s.messages.MarkRead(ctx, id, s.clock().UTC())
	if err != nil {
		return nil, fmt.Errorf("mark message read: %w", err)
	}
	return models.NewMessageResponse(msg), nil
}
