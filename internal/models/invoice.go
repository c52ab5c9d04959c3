package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice represents a row of invoices.
type Invoice struct {
	InvoiceID         string           `db:"invoice_id"`
	InvoiceNumber     string           `db:"invoice_number"`
	Amount            decimal.Decimal  `db:"amount"`
	CurrencyCode      string           `db:"currency_code"`
	IssueDate         time.Time        `db:"issue_date"`
	DueDate           time.Time        `db:"due_date"`
	SellerOrgID       string           `db:"seller_org_id"`
	BuyerOrgID        string           `db:"buyer_org_id"`
	CounterpartyID    *string          `db:"counterparty_id"`
	Origin            string           `db:"origin"`
	Status            string           `db:"status"`
	FundedAmount      *decimal.Decimal `db:"funded_amount"`
	DiscountRate      *decimal.Decimal `db:"discount_rate"`
	PaidAmount        *decimal.Decimal `db:"paid_amount"`
	RejectionReason   *string          `db:"rejection_reason"`
	BuyerApproved     bool             `db:"buyer_approved"`
	BuyerApprovalDate *time.Time       `db:"buyer_approval_date"`
	SellerAccepted    bool             `db:"seller_accepted"`
	FundingDate       *time.Time       `db:"funding_date"`
	PaymentDate       *time.Time       `db:"payment_date"`
	Matured           bool             `db:"matured"`
	MaturedAt         *time.Time       `db:"matured_at"`
	AuditFields
}
