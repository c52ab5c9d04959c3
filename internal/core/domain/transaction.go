package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecordType classifies a funding/payment history record.
type TransactionRecordType string

const (
	RecordFunding  TransactionRecordType = "FUNDING"
	RecordPayment  TransactionRecordType = "PAYMENT"
	RecordFee      TransactionRecordType = "FEE"
	RecordInterest TransactionRecordType = "INTEREST"
)

// TransactionRecord is the reporting projection of money moving for an invoice.
// It is not authoritative for balances; the ledger is.
type TransactionRecord struct {
	RecordID        string                `json:"recordID"`
	Type            TransactionRecordType `json:"type"`
	OrganizationID  string                `json:"organizationID"`
	InvoiceID       string                `json:"invoiceID"`
	Description     string                `json:"description"`
	Amount          decimal.Decimal       `json:"amount"`
	Rate            *decimal.Decimal      `json:"rate,omitempty"`
	TransactionDate time.Time             `json:"transactionDate"`
	MaturityDate    time.Time             `json:"maturityDate"`
	IsPaid          bool                  `json:"isPaid"`
	PaymentDate     *time.Time            `json:"paymentDate,omitempty"`
	AuditFields
}

// StatementEffect is the record's signed effect on an organization's statement:
// funding, fees and interest reduce the balance, payments restore it.
func (r TransactionRecord) StatementEffect() decimal.Decimal {
	if r.Type == RecordPayment {
		return r.Amount
	}
	return r.Amount.Neg()
}
