package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agamariel/songorders/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrAdminNotFound    = errors.New("admin user not found")
	ErrAdminEmailExists = errors.New("admin email already exists")
)

// PostgresAdminStorage реализует хранилище сотрудников для PostgreSQL.
type PostgresAdminStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresAdminStorage создаёт новый экземпляр PostgresAdminStorage.
func NewPostgresAdminStorage(pool *pgxpool.Pool) *PostgresAdminStorage {
	return &PostgresAdminStorage{pool: pool}
}

// Create создаёт сотрудника.
func (s *PostgresAdminStorage) Create(ctx context.Context, admin *models.AdminUser) error {
	query := `
		INSERT INTO admin_users (id, email, password_hash, name, role, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, query,
		admin.ID,
		admin.Email,
		admin.PasswordHash,
		admin.Name,
		string(admin.Role),
	).Scan(&admin.CreatedAt)

	if err != nil {
		// Проверка на уникальность email
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrAdminEmailExists
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}

	return nil
}

// GetByEmail ищет сотрудника по email.
func (s *PostgresAdminStorage) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	query := `
		SELECT id, email, password_hash, name, role, created_at, last_login_at
		FROM admin_users
		WHERE email = $1
	`
	return scanAdmin(s.pool.QueryRow(ctx, query, email))
}

// GetByID ищет сотрудника по ID.
func (s *PostgresAdminStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	query := `
		SELECT id, email, password_hash, name, role, created_at, last_login_at
		FROM admin_users
		WHERE id = $1
	`
	return scanAdmin(s.pool.QueryRow(ctx, query, id))
}

// TouchLastLogin запоминает время последнего входа.
func (s *PostgresAdminStorage) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := s.pool.Exec(ctx, `UPDATE admin_users SET last_login_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrAdminNotFound
	}

	return nil
}

func scanAdmin(row pgx.Row) (*models.AdminUser, error) {
	var (
		admin models.AdminUser
		role  string
	)

	err := row.Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.Name, &role, &admin.CreatedAt, &admin.LastLoginAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to scan admin: %w", err)
	}
	admin.Role = models.AdminRole(role)

	return &admin, nil
}
