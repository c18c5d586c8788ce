package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/agamariel/songorders/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrPaymentNotFound = errors.New("payment not found")

const paymentColumns = `id, order_id, amount::text, currency, tier, status, payment_intent_id, created_at, paid_at`

// PostgresPaymentStorage реализует хранилище платежей для PostgreSQL.
type PostgresPaymentStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresPaymentStorage создаёт новый экземпляр.
func NewPostgresPaymentStorage(pool *pgxpool.Pool) *PostgresPaymentStorage {
	return &PostgresPaymentStorage{pool: pool}
}

// Create сохраняет платёж. Несуществующий заказ даёт ErrOrderNotFound.
func (s *PostgresPaymentStorage) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}

	query := `
		INSERT INTO payments (id, order_id, amount, currency, tier, status, payment_intent_id, created_at, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		payment.ID,
		payment.OrderID,
		payment.Amount.String(),
		payment.Currency,
		string(payment.Tier),
		string(payment.Status),
		payment.PaymentIntentID,
		payment.CreatedAt,
		payment.PaidAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// GetByID возвращает платёж по идентификатору.
func (s *PostgresPaymentStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(s.pool.QueryRow(ctx, query, id))
}

// GetByOrderID возвращает платежи заказа, новые первыми.
func (s *PostgresPaymentStorage) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return payments, nil
}

// Update сохраняет статус, идентификатор платежа у процессинга и время оплаты.
func (s *PostgresPaymentStorage) Update(ctx context.Context, payment *models.Payment) error {
	query := `
		UPDATE payments
		SET status = $2, payment_intent_id = $3, paid_at = $4
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query, payment.ID, string(payment.Status), payment.PaymentIntentID, payment.PaidAt)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}

	return nil
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var (
		p                    models.Payment
		amount, tier, status string
	)

	err := row.Scan(&p.ID, &p.OrderID, &amount, &p.Currency, &tier, &status, &p.PaymentIntentID, &p.CreatedAt, &p.PaidAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payment amount %q: %w", amount, err)
	}
	p.Amount = dec
	p.Tier = models.PricingTier(tier)
	p.Status = models.PaymentStatus(status)

	return &p, nil
}
