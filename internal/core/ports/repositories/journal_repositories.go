package repositories

import (
	"context"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalReader defines read operations for journal entries
type JournalReader interface {
	// FindJournalEntryByID retrieves an entry together with its lines.
	FindJournalEntryByID(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error)

	// ListJournalEntriesByInvoice retrieves every entry for an invoice with lines, oldest first.
	ListJournalEntriesByInvoice(ctx context.Context, invoiceID string) ([]domain.JournalEntry, error)

	// ListJournalEntries retrieves a page of entry headers, newest first.
	ListJournalEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// JournalWriter defines write operations for journal entries
type JournalWriter interface {
	// SaveJournalEntry persists the header and lines and applies the balance changes
	// to the locked accounts. All of it lands in the caller's unit of work.
	SaveJournalEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine, balanceChanges map[string]decimal.Decimal) error
}

// JournalRepositoryFacade combines all journal repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
