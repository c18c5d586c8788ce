package storage

import (
	"context"
	"time"

	"github.com/agamariel/songorders/internal/models"
	"github.com/google/uuid"
)

// MockAdminStorage - мок для тестирования (экспортируемый для использования в других пакетах)
type MockAdminStorage struct {
	CreateFunc         func(ctx context.Context, admin *models.AdminUser) error
	GetByEmailFunc     func(ctx context.Context, email string) (*models.AdminUser, error)
	GetByIDFunc        func(ctx context.Context, id uuid.UUID) (*models.AdminUser, error)
	TouchLastLoginFunc func(ctx context.Context, id uuid.UUID, at time.Time) error
}

func (m *MockAdminStorage) Create(ctx context.Context, admin *models.AdminUser) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, admin)
	}
	return nil
}

func (m *MockAdminStorage) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, ErrAdminNotFound
}

func (m *MockAdminStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrAdminNotFound
}

func (m *MockAdminStorage) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if m.TouchLastLoginFunc != nil {
		return m.TouchLastLoginFunc(ctx, id, at)
	}
	return nil
}
