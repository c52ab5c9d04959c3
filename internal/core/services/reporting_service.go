package services

import (
	"context"
	"fmt"
	"hash/crc32"
	"log/slog"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/apperrors"
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/invoice_finance_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	recordRepo    portsrepo.TransactionRecordReader
	orgRepo       portsrepo.OrganizationReader
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingClock overrides the clock used to number statements.
func WithReportingClock(clock func() time.Time) ReportingServiceOption {
	return func(s *reportingService) {
		s.Clock = clock
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repo portsrepo.ReportingRepository, recordRepo portsrepo.TransactionRecordReader, orgRepo portsrepo.OrganizationReader, options ...ReportingServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		reportingRepo: repo,
		recordRepo:    recordRepo,
		orgRepo:       orgRepo,
	}

	// Apply all options
	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// GetTrialBalance generates a trial balance report as of a specific date
func (s *reportingService) GetTrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error) {
	rows, err := s.reportingRepo.GetTrialBalanceData(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve trial balance data",
			slog.String("asOf", asOf.Format(time.RFC3339)))
		return nil, fmt.Errorf("failed to retrieve trial balance data: %w", err)
	}

	report := &domain.TrialBalance{
		AsOf:        asOf,
		Rows:        rows,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, row := range rows {
		report.TotalDebit = report.TotalDebit.Add(row.Debit)
		report.TotalCredit = report.TotalCredit.Add(row.Credit)
	}

	s.LogInfo(ctx, "Trial balance report generated successfully",
		slog.String("asOf", asOf.Format(time.RFC3339)),
		slog.Int("row_count", len(rows)))
	return report, nil
}

// GetStatement summarises an organization's funding, fee, interest and payment
// records between from and the end of the day of to.
func (s *reportingService) GetStatement(ctx context.Context, organizationID string, from, to time.Time) (*domain.Statement, error) {
	from = truncateToDay(from)
	to = truncateToDay(to)
	if to.Before(from) {
		return nil, apperrors.NewValidationError("to", "statement end precedes its start")
	}
	if _, err := s.orgRepo.FindOrganizationByID(ctx, organizationID); err != nil {
		return nil, err
	}

	end := to.AddDate(0, 0, 1)
	records, err := s.recordRepo.ListRecordsByOrganization(ctx, organizationID, end)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve statement records",
			slog.String("organization_id", organizationID))
		return nil, fmt.Errorf("failed to retrieve statement records: %w", err)
	}

	stmt := &domain.Statement{
		StatementNumber: statementNumber(organizationID, s.Now()),
		OrganizationID:  organizationID,
		From:            from,
		To:              to,
		OpeningBalance:  decimal.Zero,
		Lines:           []domain.StatementLine{},
	}
	balance := decimal.Zero
	for _, rec := range records {
		effect := rec.StatementEffect()
		balance = balance.Add(effect)
		if rec.TransactionDate.Before(from) {
			stmt.OpeningBalance = balance
			continue
		}
		stmt.Lines = append(stmt.Lines, domain.StatementLine{Record: rec, Effect: effect, Balance: balance})
	}
	stmt.ClosingBalance = balance

	s.LogInfo(ctx, "Statement generated successfully",
		slog.String("organization_id", organizationID),
		slog.String("statement_number", stmt.StatementNumber),
		slog.Int("line_count", len(stmt.Lines)))
	return stmt, nil
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// statementNumber derives a stable four digit suffix from the organization ID.
func statementNumber(organizationID string, generatedAt time.Time) string {
	return fmt.Sprintf("STMT-%s-%04d", generatedAt.Format("2006-01"), crc32.ChecksumIEEE([]byte(organizationID))%10000)
}
