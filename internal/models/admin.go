package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminRole - роль сотрудника в админке.
type AdminRole string

const (
	AdminRoleAdmin      AdminRole = "ADMIN"
	AdminRoleSuperAdmin AdminRole = "SUPER_ADMIN"
)

// AdminUser представляет сотрудника, работающего с заказами.
type AdminUser struct {
	ID           uuid.UUID  `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Name         string     `db:"name"`
	Role         AdminRole  `db:"role"`
	CreatedAt    time.Time  `db:"created_at"`
	LastLoginAt  *time.Time `db:"last_login_at"`
}

// AdminUserResponse - ответ без хеша пароля.
type AdminUserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        AdminRole  `json:"role"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
}

func NewAdminUserResponse(u *AdminUser) *AdminUserResponse {
	return &AdminUserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

// LoginResponse - ответ на успешный вход.
type LoginResponse struct {
	Token string             `json:"token"`
	Admin *AdminUserResponse `json:"admin"`
}
