package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_finance_app/internal/core/ports/services"
)

// MessageWriter is the part of kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer publishes domain events to a Kafka topic, keyed by invoice
// so every event of one invoice lands on the same partition.
type KafkaProducer struct {
	writer MessageWriter
	logger *slog.Logger
}

var _ portssvc.EventPublisher = (*KafkaProducer)(nil)

// NewKafkaProducer initializes a Kafka writer with the specified broker and topic.
func NewKafkaProducer(brokerURL, topic string, logger *slog.Logger) *KafkaProducer {
	return NewKafkaProducerWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokerURL),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}, logger)
}

// NewKafkaProducerWithWriter wraps an existing writer.
func NewKafkaProducerWithWriter(w MessageWriter, logger *slog.Logger) *KafkaProducer {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaProducer{writer: w, logger: logger}
}

// Publish sends one event as a JSON message.
func (p *KafkaProducer) Publish(ctx context.Context, event domain.DomainEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Kind, err)
	}
	msg := kafka.Message{
		Key:   []byte(event.InvoiceID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(event.Kind)},
			{Key: "target_org_id", Value: []byte(event.TargetOrgID)},
		},
		Time: event.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Kafka write failed",
			slog.String("error", err.Error()),
			slog.String("event_id", event.EventID),
			slog.String("kind", string(event.Kind)))
		return fmt.Errorf("write %s event: %w", event.Kind, err)
	}
	p.logger.Debug("Event published to Kafka",
		slog.String("event_id", event.EventID),
		slog.String("kind", string(event.Kind)),
		slog.String("invoice_id", event.InvoiceID))
	return nil
}

// Close shuts down the Kafka writer to free resources.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
