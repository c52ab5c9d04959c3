package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for the chart of accounts
type AccountReader interface {
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByCodes returns the accounts keyed by code. Missing codes yield ErrNotFound.
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// AccountWriter defines write operations for accounts
type AccountWriter interface {
	SaveAccount(ctx context.Context, account domain.Account) error

	// FindAccountsByIDsForUpdate returns the accounts keyed by ID and locks them.
	// Must be called within a unit of work.
	FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalances adds each signed delta to the account's balance.
	UpdateAccountBalances(ctx context.Context, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
