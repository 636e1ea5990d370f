// Package queue carries notifications from the orchestrators to the inbox
// writer over a Redis stream.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-shop/internal/domain"
)

const dataField = "data"

// Delivery is one notification read from the stream.
type Delivery struct {
	MessageID    string
	Notification domain.Notification
}

// NotificationQueue publishes and consumes notifications on one stream.
type NotificationQueue struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	logger   *zap.Logger
}

// NewNotificationQueue builds a queue bound to stream. group and consumer are
// only needed on the reading side.
func NewNotificationQueue(client *redis.Client, stream, group, consumer string, logger *zap.Logger) *NotificationQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationQueue{
		client:   client,
		stream:   stream,
		group:    group,
		consumer: consumer,
		logger:   logger,
	}
}

// Enqueue appends n to the stream and returns the stream message id.
func (q *NotificationQueue) Enqueue(ctx context.Context, n domain.Notification) (string, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return "", fmt.Errorf("marshal notification: %w", err)
	}

	id, err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]any{dataField: string(payload)},
	}).Result()
	if err != nil {
		return "", err
	}

	q.logger.Debug("notification enqueued",
		zap.String("stream", q.stream),
		zap.String("message_id", id),
		zap.String("notification_id", n.ID),
		zap.String("kind", string(n.Kind())),
	)
	return id, nil
}

// EnsureGroup creates the consumer group and the stream if missing.
func (q *NotificationQueue) EnsureGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, q.stream, q.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// Read returns up to count deliveries. start is ">" for new entries or "0" to
// replay entries this consumer read but never acknowledged.
//
// Entries that cannot be decoded are acknowledged and dropped.
func (q *NotificationQueue) Read(ctx context.Context, start string, count int64, block time.Duration) ([]Delivery, error) {
	results, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: q.consumer,
		Streams:  []string{q.stream, start},
		Count:    count,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var deliveries []Delivery
	var poisoned []string
	for _, result := range results {
		for _, msg := range result.Messages {
			n, err := decode(msg.Values)
			if err != nil {
				q.logger.Warn("dropping undecodable notification",
					zap.String("message_id", msg.ID),
					zap.Error(err),
				)
				poisoned = append(poisoned, msg.ID)
				continue
			}
			deliveries = append(deliveries, Delivery{MessageID: msg.ID, Notification: n})
		}
	}
	if len(poisoned) > 0 {
		if err := q.Ack(ctx, poisoned...); err != nil {
			q.logger.Warn("failed to ack undecodable notifications", zap.Error(err))
		}
	}
	return deliveries, nil
}

// Ack marks messages as processed for the group.
func (q *NotificationQueue) Ack(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return q.client.XAck(ctx, q.stream, q.group, ids...).Err()
}

func decode(values map[string]any) (domain.Notification, error) {
	raw, ok := values[dataField].(string)
	if !ok {
		return domain.Notification{}, errors.New("missing data field")
	}
	var n domain.Notification
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return domain.Notification{}, err
	}
	return n, nil
}
