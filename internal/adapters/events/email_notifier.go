package events

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"sort"
	"strings"

	"github.com/jordan-wright/email"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_finance_app/internal/core/ports/services"
)

// EmailConfig holds SMTP settings for the notifier.
type EmailConfig struct {
	Addr     string // host:port
	Host     string // auth host, defaults to the host part of Addr
	Username string
	Password string
	From     string
	To       []string
}

// EmailNotifier mails one plain text message per domain event.
type EmailNotifier struct {
	cfg    EmailConfig
	auth   smtp.Auth
	send   func(e *email.Email) error
	logger *slog.Logger
}

var _ portssvc.EventPublisher = (*EmailNotifier)(nil)

// NewEmailNotifier creates a notifier that sends through cfg.Addr.
func NewEmailNotifier(cfg EmailConfig, logger *slog.Logger) *EmailNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	n := &EmailNotifier{cfg: cfg, logger: logger}
	if cfg.Username != "" {
		host := cfg.Host
		if host == "" {
			var err error
			if host, _, err = net.SplitHostPort(cfg.Addr); err != nil {
				host = cfg.Addr
			}
		}
		n.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, host)
	}
	n.send = func(e *email.Email) error { return e.Send(n.cfg.Addr, n.auth) }
	return n
}

// Publish formats and sends the event. The SMTP client has no context support,
// so ctx is only checked before sending.
func (n *EmailNotifier) Publish(ctx context.Context, event domain.DomainEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = n.cfg.From
	e.To = n.cfg.To
	e.Subject = fmt.Sprintf("[%s] invoice %s", event.Kind, event.InvoiceID)
	e.Text = []byte(formatEventBody(event))

	if err := n.send(e); err != nil {
		n.logger.Error("Failed to send event email",
			slog.String("error", err.Error()),
			slog.String("event_id", event.EventID),
			slog.String("kind", string(event.Kind)))
		return fmt.Errorf("failed to send %s notification: %w", event.Kind, err)
	}

	n.logger.Info("Event email sent",
		slog.String("event_id", event.EventID),
		slog.String("subject", e.Subject))
	return nil
}

// Close is a no-op; every send opens its own SMTP session.
func (n *EmailNotifier) Close() error { return nil }

func formatEventBody(event domain.DomainEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event: %s\n", event.Kind)
	fmt.Fprintf(&b, "Invoice: %s\n", event.InvoiceID)
	fmt.Fprintf(&b, "Organization: %s\n", event.TargetOrgID)
	fmt.Fprintf(&b, "Occurred at: %s\n", event.OccurredAt.Format("2006-01-02 15:04:05 MST"))

	keys := make([]string, 0, len(event.Payload))
	for k := range event.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, event.Payload[k])
	}
	return b.String()
}
