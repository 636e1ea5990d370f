package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	defaultForwardBuffer = 1024
	forwardWriteTimeout  = 5 * time.Second
	forwardCloseGrace    = 5 * time.Second
)

var (
	// ErrForwardQueueFull is returned by Handle when the broker cannot keep up.
	ErrForwardQueueFull = errors.New("kafka forward queue full")
	// ErrForwarderClosed is returned by Handle after Close.
	ErrForwarderClosed = errors.New("kafka forwarder closed")
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaForwarder republishes dispatcher events to a Kafka topic. Handle only
// queues the message; a background goroutine owns the writer, so a slow or
// unreachable broker never blocks the publishing request.
type KafkaForwarder struct {
	writer messageWriter
	topic  string
	logger *zap.Logger

	queue  chan kafka.Message
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

// NewKafkaForwarder builds a forwarder writing to topic on brokers.
func NewKafkaForwarder(brokers []string, topic string, logger *zap.Logger) (*KafkaForwarder, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           forwardWriteTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newKafkaForwarder(writer, topic, defaultForwardBuffer, logger), nil
}

func newKafkaForwarder(writer messageWriter, topic string, buffer int, logger *zap.Logger) *KafkaForwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = defaultForwardBuffer
	}
	ctx, cancel := context.WithCancel(context.Background())
	f := &KafkaForwarder{
		writer: writer,
		topic:  topic,
		logger: logger,
		queue:  make(chan kafka.Message, buffer),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
	go f.run()
	return f
}

// Register subscribes the forwarder to every event type on d.
func (f *KafkaForwarder) Register(d Dispatcher) {
	SubscribeAll(d, f.Handle)
}

// Handle queues one event. Messages are keyed by entity so each entity's
// history stays on one partition. A full queue drops the event.
func (f *KafkaForwarder) Handle(_ context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Topic: f.topic,
		Key:   []byte(fmt.Sprintf("%s:%s", event.EntityKind, event.EntityID)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
		Time: event.Timestamp,
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return ErrForwarderClosed
	}
	select {
	case f.queue <- msg:
		return nil
	default:
		return ErrForwardQueueFull
	}
}

func (f *KafkaForwarder) run() {
	defer close(f.done)
	for msg := range f.queue {
		ctx, cancel := context.WithTimeout(f.ctx, forwardWriteTimeout)
		err := f.writer.WriteMessages(ctx, msg)
		cancel()
		if err != nil {
			f.logger.Warn("failed to forward event",
				zap.String("topic", f.topic),
				zap.ByteString("key", msg.Key),
				zap.Error(err),
			)
			continue
		}
		f.logger.Debug("event forwarded",
			zap.String("topic", f.topic),
			zap.ByteString("key", msg.Key),
		)
	}
}

// Close stops accepting events, drains the queue for up to a short grace
// period, then closes the writer.
func (f *KafkaForwarder) Close() error {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.closed = true
		close(f.queue)
		f.mu.Unlock()

		select {
		case <-f.done:
		case <-time.After(forwardCloseGrace):
			f.logger.Warn("kafka forwarder drain timed out", zap.Int("dropped", len(f.queue)))
			f.cancel()
			<-f.done
		}
		f.cancel()
		f.closeErr = f.writer.Close()
	})
	return f.closeErr
}
