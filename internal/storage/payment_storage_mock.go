package storage

import (
	"context"

	"github.com/agamariel/songorders/internal/models"
	"github.com/google/uuid"
)

// MockPaymentStorage - мок для тестов.
type MockPaymentStorage struct {
	CreateFunc       func(ctx context.Context, p *models.Payment) error
	GetByIDFunc      func(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetByOrderIDFunc func(ctx context.Context, orderID uuid.UUID) ([]*models.Payment, error)
	UpdateFunc       func(ctx context.Context, p *models.Payment) error
}

func (m *MockPaymentStorage) Create(ctx context.Context, p *models.Payment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	return nil
}

func (m *MockPaymentStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrPaymentNotFound
}

func (m *MockPaymentStorage) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*models.Payment, error) {
	if m.GetByOrderIDFunc != nil {
		return m.GetByOrderIDFunc(ctx, orderID)
	}
	return []*models.Payment{}, nil
}

func (m *MockPaymentStorage) Update(ctx context.Context, p *models.Payment) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, p)
	}
	return nil
}
