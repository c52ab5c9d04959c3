package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceUploaded              InvoiceStatus = "UPLOADED"
	InvoiceValidated             InvoiceStatus = "VALIDATED"
	InvoiceApproved              InvoiceStatus = "APPROVED"
	InvoicePendingSellerApproval InvoiceStatus = "PENDING_SELLER_APPROVAL"
	InvoiceSellerApproved        InvoiceStatus = "SELLER_APPROVED"
	InvoiceFunded                InvoiceStatus = "FUNDED"
	InvoicePaid                  InvoiceStatus = "PAID"
	InvoiceRejected              InvoiceStatus = "REJECTED"
)

// invoiceTransitions lists every legal edge of the lifecycle.
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceUploaded:              {InvoiceValidated, InvoiceRejected},
	InvoiceValidated:             {InvoiceApproved, InvoiceRejected},
	InvoiceApproved:              {InvoiceFunded, InvoiceRejected, InvoicePendingSellerApproval},
	InvoicePendingSellerApproval: {InvoiceSellerApproved, InvoiceApproved},
	InvoiceSellerApproved:        {InvoiceFunded},
	InvoiceFunded:                {InvoicePaid},
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s InvoiceStatus) IsTerminal() bool {
	return len(invoiceTransitions[s]) == 0
}

// IsValid reports whether s is a known status.
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceUploaded, InvoiceValidated, InvoiceApproved, InvoicePendingSellerApproval,
		InvoiceSellerApproved, InvoiceFunded, InvoicePaid, InvoiceRejected:
		return true
	}
	return false
}

// InvoiceOrigin records which party uploaded the invoice.
type InvoiceOrigin string

const (
	OriginSeller InvoiceOrigin = "SELLER"
	OriginBuyer  InvoiceOrigin = "BUYER"
)

// Invoice is a receivable offered for financing. Invoices are never deleted;
// every change goes through a lifecycle transition.
type Invoice struct {
	InvoiceID         string           `json:"invoiceID"`
	InvoiceNumber     string           `json:"invoiceNumber"`
	Amount            decimal.Decimal  `json:"amount"`
	CurrencyCode      string           `json:"currencyCode"`
	IssueDate         time.Time        `json:"issueDate"`
	DueDate           time.Time        `json:"dueDate"`
	SellerOrgID       string           `json:"sellerOrgID"`
	BuyerOrgID        string           `json:"buyerOrgID"`
	CounterpartyID    *string          `json:"counterpartyID,omitempty"`
	Origin            InvoiceOrigin    `json:"origin"`
	Status            InvoiceStatus    `json:"status"`
	FundedAmount      *decimal.Decimal `json:"fundedAmount,omitempty"`
	DiscountRate      *decimal.Decimal `json:"discountRate,omitempty"`
	PaidAmount        *decimal.Decimal `json:"paidAmount,omitempty"`
	RejectionReason   *string          `json:"rejectionReason,omitempty"`
	BuyerApproved     bool             `json:"buyerApproved"`
	BuyerApprovalDate *time.Time       `json:"buyerApprovalDate,omitempty"`
	SellerAccepted    bool             `json:"sellerAccepted"`
	FundingDate       *time.Time       `json:"fundingDate,omitempty"`
	PaymentDate       *time.Time       `json:"paymentDate,omitempty"`
	Matured           bool             `json:"matured"`
	MaturedAt         *time.Time       `json:"maturedAt,omitempty"`
	AuditFields
}

// IsPastDue reports whether a funded invoice has passed its due date unpaid.
func (i Invoice) IsPastDue(now time.Time) bool {
	return i.Status == InvoiceFunded && now.After(i.DueDate)
}

// FundingTerms is the outcome of pricing an invoice at a discount rate.
type FundingTerms struct {
	FinalRate    decimal.Decimal `json:"finalRate"`
	Discount     decimal.Decimal `json:"discount"`
	FundedAmount decimal.Decimal `json:"fundedAmount"`
}

var hundred = decimal.NewFromInt(100)

// PriceFunding applies a flat percentage discount to the face amount.
// The discount is rounded to cents and the funded amount is the remainder.
func PriceFunding(amount, finalRate decimal.Decimal) FundingTerms {
	discount := amount.Mul(finalRate).Div(hundred).Round(2)
	return FundingTerms{
		FinalRate:    finalRate,
		Discount:     discount,
		FundedAmount: amount.Sub(discount),
	}
}
