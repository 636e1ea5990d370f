package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-shop/internal/domain"
	"github.com/spec-kit/repair-shop/internal/observability"
	apperrors "github.com/spec-kit/repair-shop/pkg/util/errorutil"
)

// NotificationQueue is the enqueue side of the notification stream.
type NotificationQueue interface {
	Enqueue(ctx context.Context, n domain.Notification) (string, error)
}

// NotificationService hands notifications to the queue for the inbox worker.
type NotificationService struct {
	queue   NotificationQueue
	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewNotificationService creates the service.
func NewNotificationService(queue NotificationQueue, logger *zap.Logger, metrics *observability.Metrics) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		queue:   queue,
		logger:  logger,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Notify stamps n with an id and creation time and enqueues it.
func (s *NotificationService) Notify(ctx context.Context, n domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	kind := string(n.Kind())
	if _, err := s.queue.Enqueue(ctx, n); err != nil {
		s.metrics.RecordNotification(kind, "failed")
		return apperrors.NewNotificationFailure(n.RecipientID, kind, err)
	}
	s.metrics.RecordNotification(kind, "enqueued")
	return nil
}

// sendNotification builds and dispatches one notification. Failures are
// logged and swallowed.
func sendNotification(ctx context.Context, notifier Notifier, logger *zap.Logger, recipient, actor string, payload domain.NotificationPayload) {
	if notifier == nil {
		return
	}
	n, err := domain.NewNotification(recipient, actor, payload)
	if err == nil {
		err = notifier.Notify(ctx, n)
	}
	if err != nil {
		logger.Warn("notification not delivered",
			zap.String("recipient", recipient),
			zap.String("kind", string(payload.Kind())),
			zap.Error(err),
		)
	}
}
