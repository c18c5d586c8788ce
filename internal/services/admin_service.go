package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agamariel/songorders/internal/auth"
	"github.com/agamariel/songorders/internal/models"
	"github.com/agamariel/songorders/internal/storage"
	"github.com/agamariel/songorders/internal/validation"
	"github.com/google/uuid"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AdminService определяет интерфейс работы с сотрудниками.
type AdminService interface {
	CreateAdmin(ctx context.Context, req *validation.CreateAdminRequest) (*models.AdminUserResponse, error)
	Login(ctx context.Context, req *validation.LoginRequest) (*models.LoginResponse, error)
	GetAdmin(ctx context.Context, id uuid.UUID) (*models.AdminUserResponse, error)
}

// AdminServiceImpl реализует AdminService.
type AdminServiceImpl struct {
	admins          AdminStorage
	jwtSecret       string
	tokenExpiration time.Duration
	clock           func() time.Time
}

// NewAdminService создаёт новый экземпляр AdminService.
func NewAdminService(admins AdminStorage, jwtSecret string, tokenExpiration time.Duration) *AdminServiceImpl {
	return &AdminServiceImpl{
		admins:          admins,
		jwtSecret:       jwtSecret,
		tokenExpiration: tokenExpiration,
		clock:           time.Now,
	}
}

// CreateAdmin создаёт сотрудника с хешированным паролем.
func (s *AdminServiceImpl) CreateAdmin(ctx context.Context, req *validation.CreateAdminRequest) (*models.AdminUserResponse, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.AdminUser{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Role:         req.Role,
	}

	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, storage.ErrAdminEmailExists) {
			return nil, storage.ErrAdminEmailExists
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	return models.NewAdminUserResponse(admin), nil
}

// Login проверяет пароль и выдаёт токен.
func (s *AdminServiceImpl) Login(ctx context.Context, req *validation.LoginRequest) (*models.LoginResponse, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	admin, err := s.admins.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrAdminNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}

	if !auth.CheckPassword(req.Password, admin.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := s.clock().UTC()
	if err := s.admins.TouchLastLogin(ctx, admin.ID, now); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	admin.LastLoginAt = &now

	token, err := s.generateToken(admin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.LoginResponse{Token: token, Admin: models.NewAdminUserResponse(admin)}, nil
}

// GetAdmin возвращает профиль сотрудника.
func (s *AdminServiceImpl) GetAdmin(ctx context.Context, id uuid.UUID) (*models.AdminUserResponse, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrAdminNotFound) {
			return nil, storage.ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return models.NewAdminUserResponse(admin), nil
}

// generateToken генерирует JWT токен для сотрудника.
func (s *AdminServiceImpl) generateToken(admin *models.AdminUser) (string, error) {
	exp := s.tokenExpiration
	if exp <= 0 {
		exp = 24 * time.Hour
	}
	return auth.GenerateToken(admin, s.jwtSecret, exp)
}
