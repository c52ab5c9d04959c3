package services

import (
	"context"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostingRequest asks the accounting engine to record one business event.
type PostingRequest struct {
	Type        domain.PostingType
	Amount      decimal.Decimal
	InvoiceID   string
	Description string
	SellerOrgID string
	BuyerOrgID  string
	PostedBy    domain.Principal
}

// AccountingPoster turns business events into balanced, posted journal entries.
type AccountingPoster interface {
	// Post builds the lines from the fixed posting table, checks that they balance,
	// and persists header, lines and balance changes in the caller's unit of work.
	Post(ctx context.Context, req PostingRequest) (*domain.JournalEntry, error)
}

// LedgerReaderSvc exposes read-only access to the ledger.
type LedgerReaderSvc interface {
	GetJournalEntry(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error)
	ListJournalEntriesByInvoice(ctx context.Context, invoiceID string) ([]domain.JournalEntry, error)
	ListJournalEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// AccountingSvcFacade combines posting and ledger reads.
type AccountingSvcFacade interface {
	AccountingPoster
	LedgerReaderSvc
}
