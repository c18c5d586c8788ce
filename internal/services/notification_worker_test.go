package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/agamariel/songorders/internal/models"
	"github.com/agamariel/songorders/internal/numbering"
	"github.com/agamariel/songorders/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakePublisher struct {
	mu      sync.Mutex
	events  []*models.OrderEvent
	failOn  map[uuid.UUID]bool
	failAll bool
}

func (p *fakePublisher) Publish(_ context.Context, e *models.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failAll || p.failOn[e.ID] {
		return errors.New("broker unavailable")
	}
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) published() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func seedEvents(t *testing.T, n int) *storage.MemoryOrderStorage {
	t.Helper()
	orders := storage.NewMemoryOrderStorage(numbering.NewGenerator(nil))
	for i := 0; i < n; i++ {
		now := time.Now().UTC()
		require.NoError(t, orders.Create(context.Background(), &models.Order{
			Status: models.OrderStatusNew, RecipientName: "Jane", PhoneNumber: "+15551234567",
			CreatedAt: now, UpdatedAt: now,
		}))
	}
	return orders
}

func TestNotificationWorker_ProcessBatch(t *testing.T) {
	ctx := context.Background()
	orders := seedEvents(t, 3)
	publisher := &fakePublisher{}
	metrics := &countingMetrics{}

	worker := NewNotificationWorker(orders, publisher, metrics, time.Minute, zaptest.NewLogger(t))

	n, err := worker.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, publisher.published())
	assert.Equal(t, 3, metrics.published[true])

	// Повторный прогон ничего не отправляет.
	n, err = worker.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNotificationWorker_StopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	orders := seedEvents(t, 3)

	pending, err := orders.GetPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 3)

	publisher := &fakePublisher{failOn: map[uuid.UUID]bool{pending[1].ID: true}}
	metrics := &countingMetrics{}
	worker := NewNotificationWorker(orders, publisher, metrics, time.Minute, zaptest.NewLogger(t))

	n, err := worker.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, metrics.published[false])

	left, err := orders.GetPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, pending[1].ID, left[0].ID)

	// После восстановления брокера события уходят в исходном порядке.
	publisher.failOn = nil
	n, err = worker.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, pending[1].ID, publisher.events[1].ID)
	assert.Equal(t, pending[2].ID, publisher.events[2].ID)
}

func TestNotificationWorker_Start(t *testing.T) {
	orders := seedEvents(t, 2)
	publisher := &fakePublisher{}
	worker := NewNotificationWorker(orders, publisher, nil, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := worker.Start(ctx)

	require.Eventually(t, func() bool { return publisher.published() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestNotificationWorker_StorageError(t *testing.T) {
	worker := NewNotificationWorker(failingEvents{}, &fakePublisher{}, nil, time.Minute, nil)
	_, err := worker.ProcessBatch(context.Background())
	assert.Error(t, err)
}

type failingEvents struct{}

func (failingEvents) GetPending(context.Context, int) ([]*models.OrderEvent, error) {
	return nil, errors.New("db down")
}

func (failingEvents) MarkPublished(context.Context, uuid.UUID, time.Time) error { return nil }
