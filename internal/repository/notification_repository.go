package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repair-shop/internal/domain"
)

// NotificationRepository persists delivered notifications for staff inboxes.
type NotificationRepository interface {
	Create(ctx context.Context, n domain.Notification) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

// Create is idempotent on the notification id so redelivered stream entries are harmless.
func (r *notificationRepository) Create(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO notifications (id, recipient_id, actor_id, kind, payload, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (id) DO NOTHING`
	_, err = r.pool.Exec(ctx, query, n.ID, n.RecipientID, n.ActorID, n.Kind(), payload, n.CreatedAt)
	return err
}
