package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/agamariel/songorders/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresEventStorage читает outbox событий заказов.
type PostgresEventStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresEventStorage создаёт новый экземпляр PostgresEventStorage.
func NewPostgresEventStorage(pool *pgxpool.Pool) *PostgresEventStorage {
	return &PostgresEventStorage{pool: pool}
}

// GetPending возвращает неопубликованные события в порядке возникновения.
func (s *PostgresEventStorage) GetPending(ctx context.Context, limit int) ([]*models.OrderEvent, error) {
	query := `
		SELECT id, type, order_id, order_number, previous_status, status, telegram_user_id, occurred_at, published_at
		FROM order_events
		WHERE published_at IS NULL
		ORDER BY occurred_at ASC, id ASC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending events: %w", err)
	}
	defer rows.Close()

	var events []*models.OrderEvent
	for rows.Next() {
		var (
			e        models.OrderEvent
			previous *string
			status   string
		)
		err := rows.Scan(&e.ID, &e.Type, &e.OrderID, &e.OrderNumber, &previous, &status,
			&e.TelegramUserID, &e.OccurredAt, &e.PublishedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Status = models.OrderStatus(status)
		if previous != nil {
			p := models.OrderStatus(*previous)
			e.PreviousStatus = &p
		}
		events = append(events, &e)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return events, nil
}

// MarkPublished отмечает событие отправленным.
func (s *PostgresEventStorage) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE order_events SET published_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark event published: %w", err)
	}
	return nil
}

func insertEvent(ctx context.Context, tx pgx.Tx, event *models.OrderEvent) error {
	query := `
		INSERT INTO order_events (id, type, order_id, order_number, previous_status, status, telegram_user_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var previous *string
	if event.PreviousStatus != nil {
		p := string(*event.PreviousStatus)
		previous = &p
	}

	_, err := tx.Exec(ctx, query,
		event.ID,
		event.Type,
		event.OrderID,
		event.OrderNumber,
		previous,
		string(event.Status),
		event.TelegramUserID,
		event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record order event: %w", err)
	}
	return nil
}
