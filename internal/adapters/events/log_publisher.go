package events

import (
	"context"
	"log/slog"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_finance_app/internal/core/ports/services"
)

// LogPublisher writes events to the structured log. It is the default sink.
type LogPublisher struct {
	logger *slog.Logger
}

var _ portssvc.EventPublisher = (*LogPublisher)(nil)

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	attrs := []any{
		slog.String("event_id", event.EventID),
		slog.String("kind", string(event.Kind)),
		slog.String("invoice_id", event.InvoiceID),
		slog.String("target_org_id", event.TargetOrgID),
		slog.Time("occurred_at", event.OccurredAt),
	}
	if len(event.Payload) > 0 {
		payload := make([]any, 0, len(event.Payload))
		for k, v := range event.Payload {
			payload = append(payload, slog.String(k, v))
		}
		attrs = append(attrs, slog.Group("payload", payload...))
	}
	p.logger.InfoContext(ctx, "Domain event", attrs...)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
