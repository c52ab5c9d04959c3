package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
)

// ReportingRepository defines operations for retrieving financial report data
type ReportingRepository interface {
	// GetTrialBalanceData sums posted lines per account up to and including asOf.
	GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error)
}
