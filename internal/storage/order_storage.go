package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agamariel/songorders/internal/models"
	"github.com/agamariel/songorders/internal/numbering"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderNumberTaken     = errors.New("order number already taken")
	ErrOrderVersionConflict = errors.New("order was modified concurrently")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

const orderColumns = `id, order_number, status, recipient_name, relationship, occasion,
	musical_style, special_requests, mood, tempo, phone_number, telegram_user_id,
	telegram_username, selected_tier, song_file_url, song_file_name,
	created_at, updated_at, ready_at, paid_at, completed_at, version`

// PostgresOrderStorage реализует хранилище заказов для PostgreSQL.
type PostgresOrderStorage struct {
	pool    *pgxpool.Pool
	numbers *numbering.Generator
}

// NewPostgresOrderStorage создаёт новый экземпляр PostgresOrderStorage.
func NewPostgresOrderStorage(pool *pgxpool.Pool, numbers *numbering.Generator) *PostgresOrderStorage {
	return &PostgresOrderStorage{pool: pool, numbers: numbers}
}

// Create присваивает заказу номер и сохраняет его вместе с событием order.created.
// Номер выдаётся в той же транзакции, поэтому при откате он не сгорает.
func (s *PostgresOrderStorage) Create(ctx context.Context, order *models.Order) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	number, err := s.numbers.Generate(ctx, txSequence{tx: tx})
	if err != nil {
		return err
	}
	order.OrderNumber = number

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.MusicalStyle == nil {
		order.MusicalStyle = []string{}
	}
	order.Version = 1

	query := `
		INSERT INTO orders (id, order_number, status, recipient_name, relationship, occasion,
			musical_style, special_requests, mood, tempo, phone_number, telegram_user_id,
			telegram_username, selected_tier, song_file_url, song_file_name,
			created_at, updated_at, ready_at, paid_at, completed_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	_, err = tx.Exec(ctx, query,
		order.ID,
		order.OrderNumber,
		string(order.Status),
		order.RecipientName,
		order.Relationship,
		order.Occasion,
		order.MusicalStyle,
		order.SpecialRequests,
		order.Mood,
		order.Tempo,
		order.PhoneNumber,
		order.TelegramUserID,
		order.TelegramUsername,
		tierValue(order.SelectedTier),
		order.SongFileURL,
		order.SongFileName,
		order.CreatedAt,
		order.UpdatedAt,
		order.ReadyAt,
		order.PaidAt,
		order.CompletedAt,
		order.Version,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrOrderNumberTaken
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err := insertEvent(ctx, tx, models.NewOrderEvent(models.OrderEventCreated, order, nil)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

// GetByID возвращает заказ по идентификатору.
func (s *PostgresOrderStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(s.pool.QueryRow(ctx, query, id))
}

// List возвращает страницу заказов по фильтру (новые первыми) и общее число подходящих.
func (s *PostgresOrderStorage) List(ctx context.Context, filter models.OrderFilter) ([]*models.Order, int, error) {
	where, args := orderFilterClause(filter)

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC, length(order_number) DESC, order_number DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*models.Order, 0, filter.Limit)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}

	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("rows error: %w", rows.Err())
	}

	return orders, total, nil
}

// Update сохраняет изменённые поля, если версия в базе равна expectedVersion.
// Событие, если передано, пишется в ту же транзакцию.
func (s *PostgresOrderStorage) Update(ctx context.Context, order *models.Order, expectedVersion int64, event *models.OrderEvent) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE orders
		SET status = $3, telegram_user_id = $4, telegram_username = $5, selected_tier = $6,
			song_file_url = $7, song_file_name = $8, updated_at = $9,
			ready_at = $10, paid_at = $11, completed_at = $12, phone_number = $13, version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version
	`

	var version int64
	err = tx.QueryRow(ctx, query,
		order.ID,
		expectedVersion,
		string(order.Status),
		order.TelegramUserID,
		order.TelegramUsername,
		tierValue(order.SelectedTier),
		order.SongFileURL,
		order.SongFileName,
		order.UpdatedAt,
		order.ReadyAt,
		order.PaidAt,
		order.CompletedAt,
		order.PhoneNumber,
	).Scan(&version)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to update order: %w", err)
		}
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, order.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check order: %w", err)
		}
		if !exists {
			return ErrOrderNotFound
		}
		return ErrOrderVersionConflict
	}

	if event != nil {
		if err := insertEvent(ctx, tx, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order update: %w", err)
	}

	order.Version = version
	return nil
}

// CountByStatus возвращает количество заказов в каждом статусе.
func (s *PostgresOrderStorage) CountByStatus(ctx context.Context) (map[models.OrderStatus]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.OrderStatus]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[models.OrderStatus(status)] = count
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return counts, nil
}

// orderFilterClause собирает WHERE и аргументы для выборки по фильтру.
func orderFilterClause(filter models.OrderFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != nil {
		add("status = $%d", string(*filter.Status))
	}
	if filter.OrderNumber != "" {
		add("order_number ILIKE '%%' || $%d || '%%'", escapeLike(filter.OrderNumber))
	}
	if filter.TelegramUserID != "" {
		add("telegram_user_id = $%d", filter.TelegramUserID)
	}
	if filter.StartDate != nil {
		add("created_at >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("created_at <= $%d", *filter.EndDate)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func tierValue(tier *models.PricingTier) *string {
	if tier == nil {
		return nil
	}
	v := string(*tier)
	return &v
}

// scanOrder помогает читать заказ из строки результата.
func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		order  models.Order
		status string
		tier   *string
	)

	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&status,
		&order.RecipientName,
		&order.Relationship,
		&order.Occasion,
		&order.MusicalStyle,
		&order.SpecialRequests,
		&order.Mood,
		&order.Tempo,
		&order.PhoneNumber,
		&order.TelegramUserID,
		&order.TelegramUsername,
		&tier,
		&order.SongFileURL,
		&order.SongFileName,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.ReadyAt,
		&order.PaidAt,
		&order.CompletedAt,
		&order.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	order.Status = models.OrderStatus(status)
	if tier != nil {
		t := models.PricingTier(*tier)
		order.SelectedTier = &t
	}

	return &order, nil
}

// txSequence выдаёт номера в рамках транзакции создания заказа.
// Строка счётчика года остаётся заблокированной до коммита.
type txSequence struct {
	tx pgx.Tx
}

func (q txSequence) LastNumber(ctx context.Context, prefix string) (string, error) {
	query := `
		SELECT order_number
		FROM orders
		WHERE order_number LIKE $1
		ORDER BY length(order_number) DESC, order_number DESC
		LIMIT 1
	`

	var number string
	err := q.tx.QueryRow(ctx, query, escapeLike(prefix)+"%").Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return number, nil
}

func (q txSequence) Advance(ctx context.Context, year int, seed int64) (int64, error) {
	query := `
		INSERT INTO order_counters (year, value)
		VALUES ($1, $2)
		ON CONFLICT (year) DO UPDATE
		SET value = GREATEST(order_counters.value + 1, EXCLUDED.value)
		RETURNING value
	`

	var value int64
	if err := q.tx.QueryRow(ctx, query, year, seed).Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}
