package storage

import (
	"context"
	"time"

	"github.com/agamariel/songorders/internal/models"
	"github.com/google/uuid"
)

// MockMessageStorage - мок для тестов.
type MockMessageStorage struct {
	CreateFunc       func(ctx context.Context, msg *models.Message) error
	GetByOrderIDFunc func(ctx context.Context, orderID uuid.UUID) ([]*models.Message, error)
	MarkReadFunc     func(ctx context.Context, id uuid.UUID, at time.Time) (*models.Message, error)
}

func (m *MockMessageStorage) Create(ctx context.Context, msg *models.Message) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, msg)
	}
	return nil
}

func (m *MockMessageStorage) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*models.Message, error) {
	if m.GetByOrderIDFunc != nil {
		return m.GetByOrderIDFunc(ctx, orderID)
	}
	return []*models.Message{}, nil
}

func (m *MockMessageStorage) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (*models.Message, error) {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, id, at)
	}
	return nil, ErrMessageNotFound
}
