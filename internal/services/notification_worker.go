package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const defaultEventBatch = 100

// NotificationWorker периодически публикует события заказов из outbox.
// Событие помечается отправленным только после успешной публикации,
// так что доставка - не менее одного раза.
type NotificationWorker struct {
	events    EventStorage
	publisher EventPublisher
	metrics   OrderMetrics
	interval  time.Duration
	batch     int
	logger    *zap.Logger
	clock     func() time.Time
}

func NewNotificationWorker(events EventStorage, publisher EventPublisher, metrics OrderMetrics, interval time.Duration, logger *zap.Logger) *NotificationWorker {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &NotificationWorker{
		events:    events,
		publisher: publisher,
		metrics:   metrics,
		interval:  interval,
		batch:     defaultEventBatch,
		logger:    logger.Named("notification_worker"),
		clock:     time.Now,
	}
}

// Start запускает воркер в отдельной горутине и останавливается по ctx.Done().
// Возвращаемый канал закрывается после выхода горутины.
func (w *NotificationWorker) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(w.interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		w.runBatch(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.runBatch(ctx)
			}
		}
	}()
	return done
}

func (w *NotificationWorker) runBatch(ctx context.Context) {
	published, err := w.ProcessBatch(ctx)
	if err != nil {
		w.logger.Error("notification batch failed", zap.Error(err))
		return
	}
	if published > 0 {
		w.logger.Info("order events published", zap.Int("count", published))
	}
}

// ProcessBatch отправляет очередную порцию событий и возвращает число отправленных.
// Первая ошибка публикации прерывает порцию, чтобы сохранить порядок событий.
func (w *NotificationWorker) ProcessBatch(ctx context.Context) (int, error) {
	events, err := w.events.GetPending(ctx, w.batch)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, e := range events {
		if err := w.publisher.Publish(ctx, e); err != nil {
			w.metrics.EventPublished(e.Type, false)
			w.logger.Warn("failed to publish order event",
				zap.String("event_id", e.ID.String()),
				zap.String("order_number", e.OrderNumber),
				zap.Error(err),
			)
			return published, nil
		}
		w.metrics.EventPublished(e.Type, true)

		if err := w.events.MarkPublished(ctx, e.ID, w.clock().UTC()); err != nil {
			return published, err
		}
		published++
	}
	return published, nil
}
