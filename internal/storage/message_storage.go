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

var ErrMessageNotFound = errors.New("message not found")

// PostgresMessageStorage хранит переписку по заказам.
type PostgresMessageStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresMessageStorage создаёт новый экземпляр PostgresMessageStorage.
func NewPostgresMessageStorage(pool *pgxpool.Pool) *PostgresMessageStorage {
	return &PostgresMessageStorage{pool: pool}
}

// Create сохраняет сообщение. Несуществующий заказ даёт ErrOrderNotFound.
func (s *PostgresMessageStorage) Create(ctx context.Context, msg *models.Message) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}

	query := `
		INSERT INTO messages (id, order_id, sender, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query, msg.ID, msg.OrderID, string(msg.Sender), msg.Content, msg.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// GetByOrderID возвращает переписку по заказу в хронологическом порядке.
func (s *PostgresMessageStorage) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*models.Message, error) {
	query := `
		SELECT id, order_id, sender, content, created_at, read_at
		FROM messages
		WHERE order_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return messages, nil
}

// MarkRead проставляет время прочтения. Уже прочитанное сообщение не меняется.
func (s *PostgresMessageStorage) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (*models.Message, error) {
	query := `
		UPDATE messages
		SET read_at = COALESCE(read_at, $2)
		WHERE id = $1
		RETURNING id, order_id, sender, content, created_at, read_at
	`

	return scanMessage(s.pool.QueryRow(ctx, query, id, at))
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var (
		msg    models.Message
		sender string
	)
	err := row.Scan(&msg.ID, &msg.OrderID, &sender, &msg.Content, &msg.CreatedAt, &msg.ReadAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to scan message: %w", err)
	}
	msg.Sender = models.MessageSender(sender)
	return &msg, nil
}
