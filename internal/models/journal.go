package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry represents a row of journal_entries.
type JournalEntry struct {
	JournalEntryID  string          `db:"journal_entry_id"`
	Reference       string          `db:"reference"`
	PostingType     string          `db:"posting_type"`
	TransactionDate time.Time       `db:"transaction_date"`
	Description     string          `db:"description"`
	OrganizationID  string          `db:"organization_id"`
	InvoiceID       *string         `db:"invoice_id"` // Nullable
	Status          string          `db:"status"`
	Amount          decimal.Decimal `db:"amount"`
	PostedAt        *time.Time      `db:"posted_at"` // Nullable
	PostedBy        string          `db:"posted_by"`
	AuditFields
}
