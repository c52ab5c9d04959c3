package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntryLine represents a row of journal_entry_lines.
type JournalEntryLine struct {
	LineID         string          `db:"line_id"`
	JournalEntryID string          `db:"journal_entry_id"`
	AccountID      string          `db:"account_id"`
	Debit          decimal.Decimal `db:"debit"`
	Credit         decimal.Decimal `db:"credit"`
	Description    string          `db:"description"`
	OrganizationID string          `db:"organization_id"`
	CreatedAt      time.Time       `db:"created_at"`
}

// TransactionRecord represents a row of transaction_records.
type TransactionRecord struct {
	RecordID        string           `db:"record_id"`
	RecordType      string           `db:"record_type"`
	OrganizationID  string           `db:"organization_id"`
	InvoiceID       string           `db:"invoice_id"`
	Description     string           `db:"description"`
	Amount          decimal.Decimal  `db:"amount"`
	Rate            *decimal.Decimal `db:"rate"` // Nullable
	TransactionDate time.Time        `db:"transaction_date"`
	MaturityDate    time.Time        `db:"maturity_date"`
	IsPaid          bool             `db:"is_paid"`
	PaymentDate     *time.Time       `db:"payment_date"` // Nullable
	AuditFields
}
