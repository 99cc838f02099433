// Package kafka publishes link domain events to Kafka.
package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/K4nnonn/FlowSightFi/internal/domain/port"
	"github.com/K4nnonn/FlowSightFi/pkg/events"
	pkgkafka "github.com/K4nnonn/FlowSightFi/pkg/kafka"
)

// MessageWriter is satisfied by *pkgkafka.Producer.
type MessageWriter interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
	Close() error
}

// Publisher implements port.EventPublisher using Kafka.
type Publisher struct {
	producer MessageWriter
	logger   *slog.Logger
}

var _ port.EventPublisher = (*Publisher)(nil)

// NewPublisher creates a new Kafka-based event publisher.
func NewPublisher(producer MessageWriter, logger *slog.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		logger:   logger,
	}
}

// Publish sends domain events to the specified Kafka topic, keyed by
// aggregate id so events of one credential stay ordered.
func (p *Publisher) Publish(ctx context.Context, topic string, evts ...events.DomainEvent) error {
	messages := make([]pkgkafka.Message, 0, len(evts))
	for _, evt := range evts {
		payload, err := events.Marshal(evt)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", evt.EventType(), err)
		}

		p.logger.DebugContext(ctx, "publishing event",
			"topic", topic,
			"event_type", evt.EventType(),
			"aggregate_id", evt.AggregateID(),
			"payload_size", len(payload),
		)

		messages = append(messages, pkgkafka.Message{
			Key:   []byte(evt.AggregateID()),
			Value: payload,
			Headers: map[string]string{
				"event_type":     evt.EventType(),
				"aggregate_type": evt.AggregateType(),
				"event_id":       evt.EventID(),
			},
		})
	}

	if len(messages) == 0 {
		return nil
	}

	if err := p.producer.Publish(ctx, topic, messages...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", topic, err)
	}
	return nil
}

// Close shuts down the Kafka publisher.
func (p *Publisher) Close() error {
	return p.producer.Close()
}
