package messaging

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"liquido/contexts/governance/liquid-democracy/ports"
)

const subscriberBuffer = 128

var ErrBusClosed = errors.New("event bus closed")

type subscriber struct {
	group  string
	events chan ports.EventEnvelope
}

// Kafka is the event bus shared by notification publishers and consumers.
// Delivery is in-process; each consumer group on a topic gets every event
// once, and a full subscriber buffer drops the event with a warning.
type Kafka struct {
	mu          sync.RWMutex
	brokers     []string
	subscribers map[string][]*subscriber
	closed      bool
	logger      *slog.Logger
}

func NewKafka(brokers []string, logger *slog.Logger) (*Kafka, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &Kafka{
		brokers:     append([]string(nil), brokers...),
		subscribers: make(map[string][]*subscriber),
		logger:      logger,
	}, nil
}

func (k *Kafka) Publish(ctx context.Context, topic string, event ports.EventEnvelope) error {
	k.mu.RLock()
	if k.closed {
		k.mu.RUnlock()
		return ErrBusClosed
	}
	subs := append([]*subscriber(nil), k.subscribers[topic]...)
	k.mu.RUnlock()

	delivered := 0
	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub.events <- event:
			delivered++
		default:
			k.logger.Warn("dropping event for slow subscriber",
				"event", "kafka_publish_drop",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"consumer_group", sub.group,
				"event_id", event.EventID,
			)
		}
	}

	k.logger.Debug("event published",
		"event", "kafka_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"delivered", delivered,
	)
	return nil
}

// Subscribe starts a consumer goroutine that runs handler for each event
// until ctx is cancelled or the bus is closed.
func (k *Kafka) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	sub := &subscriber{
		group:  consumerGroup,
		events: make(chan ports.EventEnvelope, subscriberBuffer),
	}

	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return ErrBusClosed
	}
	k.subscribers[topic] = append(k.subscribers[topic], sub)
	k.mu.Unlock()

	go k.consume(ctx, topic, sub, handler)
	return nil
}

func (k *Kafka) consume(
	ctx context.Context,
	topic string,
	sub *subscriber,
	handler func(context.Context, ports.EventEnvelope) error,
) {
	defer k.unsubscribe(topic, sub)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.events:
			if !ok {
				return
			}
			if err := handler(ctx, event); err != nil {
				k.logger.Error("consumer handler failed",
					"event", "kafka_consume_failed",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", topic,
					"consumer_group", sub.group,
					"event_id", event.EventID,
					"event_type", event.EventType,
					"error", err.Error(),
				)
			}
		}
	}
}

// Close stops every consumer. Publishing afterwards fails with ErrBusClosed.
func (k *Kafka) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return nil
	}
	k.closed = true
	for topic, subs := range k.subscribers {
		for _, sub := range subs {
			close(sub.events)
		}
		delete(k.subscribers, topic)
	}
	return nil
}

func (k *Kafka) unsubscribe(topic string, target *subscriber) {
	k.mu.Lock()
	defer k.mu.Unlock()

	subs := k.subscribers[topic]
	filtered := subs[:0]
	for _, sub := range subs {
		if sub != target {
			filtered = append(filtered, sub)
		}
	}
	if len(filtered) == 0 {
		delete(k.subscribers, topic)
		return
	}
	k.subscribers[topic] = filtered
}

var _ ports.EventPublisher = (*Kafka)(nil)
