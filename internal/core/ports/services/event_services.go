package services

import (
	"context"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
)

// EventPublisher delivers one domain event to a notification transport.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.DomainEvent) error
	Close() error
}

// EventDispatcher accepts events for asynchronous delivery.
type EventDispatcher interface {
	Dispatch(ctx context.Context, events []domain.DomainEvent)
}
