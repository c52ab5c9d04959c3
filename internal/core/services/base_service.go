package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_finance_app/internal/core/ports/services"
	"github.com/SscSPs/invoice_finance_app/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	InvoiceAuthorizer portssvc.InvoiceAuthorizerSvc
	Clock             func() time.Time
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}

// Now returns the service clock reading in UTC.
func (s *BaseService) Now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

// AuthorizeInvoice checks whether the principal may perform action on the invoice
func (s *BaseService) AuthorizeInvoice(ctx context.Context, by domain.Principal, invoice domain.Invoice, action portssvc.InvoiceAction) error {
	if s.InvoiceAuthorizer != nil {
		return s.InvoiceAuthorizer.AuthorizeInvoiceAction(ctx, by, invoice, action)
	}
	s.LogDebug(ctx, "No invoice authorizer provided, access granted by default",
		slog.String("user_id", by.UserID),
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("action", string(action)))
	return nil
}
