package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agamariel/songorders/internal/auth"
	"github.com/agamariel/songorders/internal/models"
	"github.com/agamariel/songorders/internal/storage"
	"github.com/agamariel/songorders/internal/validation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminServiceImpl_CreateAdmin(t *testing.T) {
	ctx := context.Background()
	secret := "test-secret"

	tests := []struct {
		name        string
		req         validation.CreateAdminRequest
		mockStorage *storage.MockAdminStorage
		wantErr     bool
		errType     error
	}{
		{
			name: "successful creation",
			req:  validation.CreateAdminRequest{Email: " Admin@Example.com ", Password: "Secret123", Name: "Admin", Role: models.AdminRoleAdmin},
			mockStorage: &storage.MockAdminStorage{
				CreateFunc: func(ctx context.Context, admin *models.AdminUser) error {
					if admin.Email != "admin@example.com" {
						return errors.New("email not normalized")
					}
					if !auth.CheckPassword("Secret123", admin.PasswordHash) {
						return errors.New("password not hashed")
					}
					return nil
				},
			},
		},
		{
			name:        "weak password",
			req:         validation.CreateAdminRequest{Email: "admin@example.com", Password: "password", Name: "Admin", Role: models.AdminRoleAdmin},
			mockStorage: &storage.MockAdminStorage{},
			wantErr:     true,
			errType:     validation.ErrValidation,
		},
		{
			name:        "unknown role",
			req:         validation.CreateAdminRequest{Email: "admin@example.com", Password: "Secret123", Name: "Admin", Role: "OWNER"},
			mockStorage: &storage.MockAdminStorage{},
			wantErr:     true,
			errType:     validation.ErrValidation,
		},
		{
			name: "email already exists",
			req:  validation.CreateAdminRequest{Email: "admin@example.com", Password: "Secret123", Name: "Admin", Role: models.AdminRoleAdmin},
			mockStorage: &storage.MockAdminStorage{
				CreateFunc: func(ctx context.Context, admin *models.AdminUser) error {
					return storage.ErrAdminEmailExists
				},
			},
			wantErr: true,
			errType: storage.ErrAdminEmailExists,
		},
		{
			name: "storage error",
			req:  validation.CreateAdminRequest{Email: "admin@example.com", Password: "Secret123", Name: "Admin", Role: models.AdminRoleAdmin},
			mockStorage: &storage.MockAdminStorage{
				CreateFunc: func(ctx context.Context, admin *models.AdminUser) error {
					return errors.New("database error")
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewAdminService(tt.mockStorage, secret, time.Hour)
			req := tt.req

			resp, err := service.CreateAdmin(ctx, &req)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errType != nil {
					assert.ErrorIs(t, err, tt.errType)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "admin@example.com", resp.Email)
			assert.NotEqual(t, uuid.Nil, resp.ID)
		})
	}
}

func TestAdminServiceImpl_Login(t *testing.T) {
	ctx := context.Background()
	secret := "test-secret"

	hash, err := auth.HashPassword("Secret123")
	require.NoError(t, err)
	admin := &models.AdminUser{
		ID:           uuid.New(),
		Email:        "admin@example.com",
		PasswordHash: hash,
		Name:         "Admin",
		Role:         models.AdminRoleSuperAdmin,
	}

	var touched *time.Time
	store := &storage.MockAdminStorage{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.AdminUser, error) {
			if email == admin.Email {
				copied := *admin
				return &copied, nil
			}
			return nil, storage.ErrAdminNotFound
		},
		TouchLastLoginFunc: func(ctx context.Context, id uuid.UUID, at time.Time) error {
			touched = &at
			return nil
		},
	}
	service := NewAdminService(store, secret, time.Hour)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := service.Login(ctx, &validation.LoginRequest{Email: "ADMIN@example.com", Password: "Secret123"})
		require.NoError(t, err)
		require.NotNil(t, touched)
		assert.Equal(t, touched, resp.Admin.LastLoginAt)

		claims, err := auth.ValidateToken(resp.Token, secret)
		require.NoError(t, err)
		assert.Equal(t, admin.ID, claims.AdminID)
		assert.Equal(t, models.AdminRoleSuperAdmin, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Login(ctx, &validation.LoginRequest{Email: admin.Email, Password: "Wrong123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := service.Login(ctx, &validation.LoginRequest{Email: "ghost@example.com", Password: "Secret123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("empty credentials", func(t *testing.T) {
		_, err := service.Login(ctx, &validation.LoginRequest{})
		assert.ErrorIs(t, err, validation.ErrValidation)
	})
}

func TestAdminServiceImpl_LongPasswordRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "100 ascii characters", password: "Aa1" + strings.Repeat("x", 97)},
		{name: "multibyte over 72 bytes", password: "Aa1" + strings.Repeat("ж", 40)},
		{name: "101 characters", password: "Aa1" + strings.Repeat("x", 98), wantErr: validation.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			var stored *models.AdminUser
			store := &storage.MockAdminStorage{
				CreateFunc: func(ctx context.Context, admin *models.AdminUser) error {
					stored = admin
					return nil
				},
				GetByEmailFunc: func(ctx context.Context, email string) (*models.AdminUser, error) {
					if stored == nil || stored.Email != email {
						return nil, storage.ErrAdminNotFound
					}
					copied := *stored
					return &copied, nil
				},
			}
			service := NewAdminService(store, "test-secret", time.Hour)

			_, err := service.CreateAdmin(ctx, &validation.CreateAdminRequest{
				Email: "long@example.com", Password: tt.password, Name: "Long", Role: models.AdminRoleAdmin,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, stored)
				return
			}
			require.NoError(t, err)

			_, err = service.Login(ctx, &validation.LoginRequest{Email: "long@example.com", Password: tt.password})
			require.NoError(t, err)

			_, err = service.Login(ctx, &validation.LoginRequest{Email: "long@example.com", Password: tt.password + "x"})
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestAdminServiceImpl_GetAdmin(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	service := NewAdminService(&storage.MockAdminStorage{
		GetByIDFunc: func(ctx context.Context, got uuid.UUID) (*models.AdminUser, error) {
			if got != id {
				return nil, storage.ErrAdminNotFound
			}
			return &models.AdminUser{ID: id, Email: "admin@example.com", PasswordHash: "secret-hash"}, nil
		},
	}, "secret", time.Hour)

	resp, err := service.GetAdmin(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, resp.ID)

	_, err = service.GetAdmin(ctx, uuid.New())
	assert.ErrorIs(t, err, storage.ErrAdminNotFound)
}
