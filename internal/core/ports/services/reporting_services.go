package services

import (
	"context"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
)

// ReportingService provides read-only financial reports.
type ReportingService interface {
	GetTrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error)
	GetStatement(ctx context.Context, organizationID string, from, to time.Time) (*domain.Statement, error)
}
