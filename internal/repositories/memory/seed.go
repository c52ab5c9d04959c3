package memory

import (
	"context"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DefaultBankOrganizationID matches the bank row inserted by the seed migration.
const DefaultBankOrganizationID = "00000000-0000-0000-0000-000000000001"

var chartOfAccounts = []struct {
	id, code, name string
	accountType    domain.AccountType
}{
	{"00000000-0000-0000-0000-000000001100", domain.AccountCodeCash, "Cash", domain.Asset},
	{"00000000-0000-0000-0000-000000001200", domain.AccountCodeAccountsReceivable, "Accounts Receivable", domain.Asset},
	{"00000000-0000-0000-0000-000000001300", domain.AccountCodeLoansToCustomers, "Loans to Customers", domain.Asset},
	{"00000000-0000-0000-0000-000000002100", domain.AccountCodeAccountsPayable, "Accounts Payable", domain.Liability},
	{"00000000-0000-0000-0000-000000004100", domain.AccountCodeInterestIncome, "Interest Income", domain.Revenue},
	{"00000000-0000-0000-0000-000000004200", domain.AccountCodeFeeIncome, "Fee Income", domain.Revenue},
	{"00000000-0000-0000-0000-000000006100", domain.AccountCodeFactoringFeeExpense, "Factoring Fee Expense", domain.Expense},
}

// Seed inserts the bank organization and the chart of accounts, mirroring
// the SQL seed migration.
func (s *Store) Seed(ctx context.Context, bankOrgID string, now time.Time) error {
	repos := NewRepositoryProvider(s)
	return s.RunInTx(ctx, func(ctx context.Context) error {
		bank := domain.Organization{
			OrganizationID: bankOrgID,
			Name:           "Financing Bank",
			IsBank:         true,
			AuditFields:    domain.NewAuditFields(domain.SystemPrincipal.UserID, now),
		}
		if err := repos.OrganizationRepo.SaveOrganization(ctx, bank); err != nil {
			return err
		}
		for _, a := range chartOfAccounts {
			acc := domain.Account{
				AccountID:   a.id,
				Code:        a.code,
				Name:        a.name,
				AccountType: a.accountType,
				IsActive:    true,
				Balance:     decimal.Zero,
				AuditFields: domain.NewAuditFields(domain.SystemPrincipal.UserID, now),
			}
			if err := repos.AccountRepo.SaveAccount(ctx, acc); err != nil {
				return err
			}
		}
		return nil
	})
}
