package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/apperrors"
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	"github.com/SscSPs/invoice_finance_app/internal/core/services"
	"github.com/SscSPs/invoice_finance_app/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatement(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)
	store := memory.New()
	repos := memory.NewRepositoryProvider(store)
	require.NoError(t, repos.OrganizationRepo.SaveOrganization(ctx, domain.Organization{OrganizationID: "org-1", IsSeller: true}))

	record := func(id string, typ domain.TransactionRecordType, amount string, on time.Time) {
		require.NoError(t, repos.TransactionRecordRepo.SaveTransactionRecord(ctx, domain.TransactionRecord{
			RecordID:        id,
			Type:            typ,
			OrganizationID:  "org-1",
			InvoiceID:       "inv-" + id,
			Amount:          decimal.RequireFromString(amount),
			TransactionDate: on,
		}))
	}
	record("r1", domain.RecordFunding, "1000.00", time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC))
	record("r2", domain.RecordFunding, "500.00", time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC))
	record("r3", domain.RecordFee, "25.00", time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC))
	record("r4", domain.RecordPayment, "1000.00", time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC))
	record("r5", domain.RecordPayment, "500.00", time.Date(2024, 7, 2, 10, 0, 0, 0, time.UTC))

	svc := services.NewReportingService(repos.ReportingRepo, repos.TransactionRecordRepo, repos.OrganizationRepo,
		services.WithReportingClock(func() time.Time { return now }))

	stmt, err := svc.GetStatement(ctx, "org-1",
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Regexp(t, `^STMT-2024-07-\d{4}$`, stmt.StatementNumber)
	assert.Equal(t, "-1000.00", stmt.OpeningBalance.StringFixed(2))
	require.Len(t, stmt.Lines, 3)
	assert.Equal(t, "-500.00", stmt.Lines[0].Effect.StringFixed(2))
	assert.Equal(t, "-1525.00", stmt.Lines[1].Balance.StringFixed(2))
	assert.Equal(t, "1000.00", stmt.Lines[2].Effect.StringFixed(2))
	assert.Equal(t, "-525.00", stmt.ClosingBalance.StringFixed(2))
}

func TestGetStatement_Validation(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositoryProvider(memory.New())
	svc := services.NewReportingService(repos.ReportingRepo, repos.TransactionRecordRepo, repos.OrganizationRepo)

	_, err := svc.GetStatement(ctx, "org-1", time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.GetStatement(ctx, "org-missing", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, apperrors.IsNotFound(err))
}
