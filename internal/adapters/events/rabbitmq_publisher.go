package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_finance_app/internal/core/ports/services"
)

// amqpChannel is the subset of *amqp.Channel used for publishing.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQPublisher sends domain events to a durable queue.
type RabbitMQPublisher struct {
	conn   *amqp.Connection
	chn    amqpChannel
	queue  string
	logger *slog.Logger
}

var _ portssvc.EventPublisher = (*RabbitMQPublisher)(nil)

// NewRabbitMQPublisher dials the broker, opens a channel and declares the queue.
func NewRabbitMQPublisher(url, queue string, logger *slog.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	chn, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	if _, err := chn.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		_ = chn.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	p := newRabbitMQPublisherWithChannel(chn, queue, logger)
	p.conn = conn
	return p, nil
}

func newRabbitMQPublisherWithChannel(chn amqpChannel, queue string, logger *slog.Logger) *RabbitMQPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &RabbitMQPublisher{chn: chn, queue: queue, logger: logger}
}

// Publish sends one event as a persistent JSON message.
func (p *RabbitMQPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Kind, err)
	}
	err = p.chn.PublishWithContext(ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.EventID,
			Type:         string(event.Kind),
			Timestamp:    event.OccurredAt,
			Body:         body,
		})
	if err != nil {
		p.logger.Error("RabbitMQ publish failed",
			slog.String("error", err.Error()),
			slog.String("event_id", event.EventID),
			slog.String("queue", p.queue))
		return fmt.Errorf("publish %s event: %w", event.Kind, err)
	}
	return nil
}

// Close closes the channel and then the connection.
func (p *RabbitMQPublisher) Close() error {
	if err := p.chn.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
