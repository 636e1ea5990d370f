package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/repair-shop/internal/domain"
	"github.com/spec-kit/repair-shop/internal/observability"
	"github.com/spec-kit/repair-shop/internal/queue"
)

// NotificationSource is the consuming side of the notification stream.
type NotificationSource interface {
	EnsureGroup(ctx context.Context) error
	Read(ctx context.Context, start string, count int64, block time.Duration) ([]queue.Delivery, error)
	Ack(ctx context.Context, ids ...string) error
}

// NotificationStore persists notifications into staff inboxes.
type NotificationStore interface {
	Create(ctx context.Context, n domain.Notification) error
}

// defaultPendingRetry is how often entries left pending by failed stores are
// read again while consuming new ones.
const defaultPendingRetry = 30 * time.Second

// NotificationWorker drains the stream into the notifications table.
type NotificationWorker struct {
	source    NotificationSource
	store     NotificationStore
	logger    *zap.Logger
	metrics   *observability.Metrics
	batchSize int64
	block     time.Duration
	backoff   time.Duration

	pendingRetry time.Duration
	now          func() time.Time
}

// NewNotificationWorker builds a worker.
func NewNotificationWorker(source NotificationSource, store NotificationStore, batchSize int64, block time.Duration, logger *zap.Logger, metrics *observability.Metrics) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &NotificationWorker{
		source:    source,
		store:     store,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
		block:     block,
		backoff:   time.Second,

		pendingRetry: defaultPendingRetry,
		now:          time.Now,
	}
}

// Run consumes until ctx is cancelled. Pending entries, whether left by an
// earlier run or by a failed store, are replayed at start and then every
// pendingRetry.
func (w *NotificationWorker) Run(ctx context.Context) error {
	if err := w.source.EnsureGroup(ctx); err != nil {
		return err
	}
	w.logger.Info("notification worker started")

	start := "0"
	lastReplay := w.now()
	for {
		if ctx.Err() != nil {
			w.logger.Info("notification worker stopped")
			return nil
		}
		if start == ">" && w.now().Sub(lastReplay) >= w.pendingRetry {
			start = "0"
			lastReplay = w.now()
		}
		deliveries, err := w.source.Read(ctx, start, w.batchSize, w.block)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			w.logger.Warn("notification stream read failed", zap.Error(err))
			w.sleep(ctx)
			continue
		}
		if len(deliveries) == 0 {
			start = ">"
			continue
		}
		if failed := w.process(ctx, deliveries); failed > 0 && start == "0" {
			// Failing entries wait for the next replay instead of looping.
			start = ">"
		}
	}
}

// process stores each delivery and acks the ones that were written. It
// returns how many failed.
func (w *NotificationWorker) process(ctx context.Context, deliveries []queue.Delivery) int {
	acked := make([]string, 0, len(deliveries))
	failed := 0
	for _, d := range deliveries {
		kind := string(d.Notification.Kind())
		if err := w.store.Create(ctx, d.Notification); err != nil {
			failed++
			w.metrics.RecordNotification(kind, "store_failed")
			w.logger.Warn("failed to store notification",
				zap.String("message_id", d.MessageID),
				zap.String("notification_id", d.Notification.ID),
				zap.String("recipient", d.Notification.RecipientID),
				zap.Error(err),
			)
			continue
		}
		w.metrics.RecordNotification(kind, "stored")
		acked = append(acked, d.MessageID)
	}
	if err := w.source.Ack(ctx, acked...); err != nil {
		w.logger.Warn("failed to ack notifications", zap.Int("count", len(acked)), zap.Error(err))
	}
	return failed
}

func (w *NotificationWorker) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(w.backoff):
	}
}
