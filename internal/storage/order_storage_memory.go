package storage

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/agamariel/songorders/internal/models"
	"github.com/agamariel/songorders/internal/numbering"
	"github.com/google/uuid"
)

// MemoryOrderStorage - хранилище заказов в памяти с той же семантикой, что и PostgreSQL:
// атомарная выдача номеров, проверка версии при обновлении и outbox событий.
// Экспортируется для тестов в других пакетах.
type MemoryOrderStorage struct {
	mu       sync.Mutex
	numbers  *numbering.Generator
	orders   map[uuid.UUID]*models.Order
	counters map[int]int64
	events   []*models.OrderEvent
}

// NewMemoryOrderStorage создаёт пустое хранилище.
func NewMemoryOrderStorage(numbers *numbering.Generator) *MemoryOrderStorage {
	if numbers == nil {
		numbers = numbering.NewGenerator(nil)
	}
	return &MemoryOrderStorage{
		numbers:  numbers,
		orders:   make(map[uuid.UUID]*models.Order),
		counters: make(map[int]int64),
	}
}

func (s *MemoryOrderStorage) Create(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	number, err := s.numbers.Generate(ctx, memorySequence{s: s})
	if err != nil {
		return err
	}
	for _, o := range s.orders {
		if o.OrderNumber == number {
			return ErrOrderNumberTaken
		}
	}

	order.OrderNumber = number
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.MusicalStyle == nil {
		order.MusicalStyle = []string{}
	}
	order.Version = 1

	s.orders[order.ID] = cloneOrder(order)
	s.events = append(s.events, models.NewOrderEvent(models.OrderEventCreated, order, nil))
	return nil
}

func (s *MemoryOrderStorage) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (s *MemoryOrderStorage) List(_ context.Context, filter models.OrderFilter) ([]*models.Order, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*models.Order
	for _, o := range s.orders {
		if matchesFilter(o, filter) {
			matched = append(matched, o)
		}
	}

	slices.SortFunc(matched, func(a, b *models.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case numbering.Less(a.OrderNumber, b.OrderNumber):
			return 1
		case numbering.Less(b.OrderNumber, a.OrderNumber):
			return -1
		}
		return 0
	})

	total := len(matched)
	start := min(filter.Offset(), total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}

	page := make([]*models.Order, 0, end-start)
	for _, o := range matched[start:end] {
		page = append(page, cloneOrder(o))
	}
	return page, total, nil
}

func (s *MemoryOrderStorage) Update(_ context.Context, order *models.Order, expectedVersion int64, event *models.OrderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[order.ID]
	if !ok {
		return ErrOrderNotFound
	}
	if stored.Version != expectedVersion {
		return ErrOrderVersionConflict
	}

	order.Version = expectedVersion + 1
	s.orders[order.ID] = cloneOrder(order)
	if event != nil {
		s.events = append(s.events, event)
	}
	return nil
}

func (s *MemoryOrderStorage) CountByStatus(_ context.Context) (map[models.OrderStatus]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[models.OrderStatus]int)
	for _, o := range s.orders {
		counts[o.Status]++
	}
	return counts, nil
}

// GetPending возвращает неопубликованные события в порядке записи.
func (s *MemoryOrderStorage) GetPending(_ context.Context, limit int) ([]*models.OrderEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []*models.OrderEvent
	for _, e := range s.events {
		if e.PublishedAt != nil {
			continue
		}
		copied := *e
		pending = append(pending, &copied)
		if limit > 0 && len(pending) == limit {
			break
		}
	}
	return pending, nil
}

func (s *MemoryOrderStorage) MarkPublished(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.events {
		if e.ID == id {
			published := at
			e.PublishedAt = &published
			return nil
		}
	}
	return nil
}

// Events возвращает копию всех записанных событий.
func (s *MemoryOrderStorage) Events() []models.OrderEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]models.OrderEvent, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, *e)
	}
	return events
}

func matchesFilter(o *models.Order, f models.OrderFilter) bool {
	if f.Status != nil && o.Status != *f.Status {
		return false
	}
	if f.OrderNumber != "" && !strings.Contains(strings.ToLower(o.OrderNumber), strings.ToLower(f.OrderNumber)) {
		return false
	}
	if f.TelegramUserID != "" && (o.TelegramUserID == nil || *o.TelegramUserID != f.TelegramUserID) {
		return false
	}
	if f.StartDate != nil && o.CreatedAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && o.CreatedAt.After(*f.EndDate) {
		return false
	}
	return true
}

func cloneOrder(o *models.Order) *models.Order {
	c := *o
	c.MusicalStyle = slices.Clone(o.MusicalStyle)
	return &c
}

// memorySequence работает под блокировкой хранилища.
type memorySequence struct {
	s *MemoryOrderStorage
}

func (q memorySequence) LastNumber(_ context.Context, prefix string) (string, error) {
	last := ""
	for _, o := range q.s.orders {
		if strings.HasPrefix(o.OrderNumber, prefix) && (last == "" || numbering.Less(last, o.OrderNumber)) {
			last = o.OrderNumber
		}
	}
	return last, nil
}

func (q memorySequence) Advance(_ context.Context, year int, seed int64) (int64, error) {
	next := max(q.s.counters[year]+1, seed)
	q.s.counters[year] = next
	return next, nil
}
