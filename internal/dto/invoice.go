package dto

import (
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UploadInvoiceRequest defines the data needed to register an invoice.
type UploadInvoiceRequest struct {
	InvoiceNumber  string          `json:"invoiceNumber" binding:"required,max=64"`
	Amount         decimal.Decimal `json:"amount" binding:"decimal_gt0,money"`
	CurrencyCode   string          `json:"currencyCode" binding:"required,len=3"`
	IssueDate      time.Time       `json:"issueDate" binding:"required"`
	DueDate        time.Time       `json:"dueDate" binding:"required"`
	SellerOrgID    string          `json:"sellerOrgID" binding:"required"`
	BuyerOrgID     string          `json:"buyerOrgID" binding:"required"`
	CounterpartyID *string         `json:"counterpartyID,omitempty"`
}

// FundInvoiceRequest carries the pricing inputs for funding.
type FundInvoiceRequest struct {
	BaseRate decimal.Decimal `json:"baseRate" binding:"decimal_gte0,rate"`
	Margin   decimal.Decimal `json:"margin" binding:"decimal_gte0,rate"`
}

// RecordPaymentRequest records the buyer settling a funded invoice.
type RecordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"decimal_gt0,money"`
	PaymentDate *time.Time      `json:"paymentDate,omitempty"` // defaults to now
}

// RejectInvoiceRequest carries the mandatory rejection reason.
type RejectInvoiceRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// EarlyPaymentOfferRequest carries the discount the buyer offers the seller.
type EarlyPaymentOfferRequest struct {
	DiscountRate decimal.Decimal `json:"discountRate" binding:"decimal_gt0,rate"`
}

// ChargeFeeRequest records a fee against a funded invoice.
type ChargeFeeRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"decimal_gt0,money"`
	Description string          `json:"description"`
}

// ListInvoicesParams defines query parameters for listing invoices.
type ListInvoicesParams struct {
	OrganizationID string  `form:"organizationID"`
	Status         string  `form:"status"`
	Limit          int     `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken      *string `form:"nextToken"`
}

// InvoiceResponse defines the data returned for an invoice.
type InvoiceResponse struct {
	InvoiceID       string           `json:"invoiceID"`
	InvoiceNumber   string           `json:"invoiceNumber"`
	Amount          decimal.Decimal  `json:"amount"`
	CurrencyCode    string           `json:"currencyCode"`
	IssueDate       time.Time        `json:"issueDate"`
	DueDate         time.Time        `json:"dueDate"`
	SellerOrgID     string           `json:"sellerOrgID"`
	BuyerOrgID      string           `json:"buyerOrgID"`
	CounterpartyID  *string          `json:"counterpartyID,omitempty"`
	Origin          string           `json:"origin"`
	Status          string           `json:"status"`
	FundedAmount    *decimal.Decimal `json:"fundedAmount,omitempty"`
	DiscountRate    *decimal.Decimal `json:"discountRate,omitempty"`
	PaidAmount      *decimal.Decimal `json:"paidAmount,omitempty"`
	RejectionReason *string          `json:"rejectionReason,omitempty"`
	BuyerApproved   bool             `json:"buyerApproved"`
	SellerAccepted  bool             `json:"sellerAccepted"`
	FundingDate     *time.Time       `json:"fundingDate,omitempty"`
	PaymentDate     *time.Time       `json:"paymentDate,omitempty"`
	Matured         bool             `json:"matured"`
	CreatedAt       time.Time        `json:"createdAt"`
	LastUpdatedAt   time.Time        `json:"lastUpdatedAt"`
}

// ListInvoicesResponse wraps a page of invoices.
type ListInvoicesResponse struct {
	Invoices  []InvoiceResponse `json:"invoices"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// EventResponse defines the data returned for a domain event.
type EventResponse struct {
	Kind        string            `json:"kind"`
	InvoiceID   string            `json:"invoiceID"`
	TargetOrgID string            `json:"targetOrgID"`
	Payload     map[string]string `json:"payload,omitempty"`
	OccurredAt  time.Time         `json:"occurredAt"`
}

// TransitionResponse is returned by every lifecycle operation.
type TransitionResponse struct {
	Invoice   InvoiceResponse `json:"invoice"`
	NewStatus string          `json:"newStatus"`
	Events    []EventResponse `json:"events"`
}

// ToInvoiceResponse converts a domain.Invoice to InvoiceResponse DTO.
func ToInvoiceResponse(i *domain.Invoice) InvoiceResponse {
	return InvoiceResponse{
		InvoiceID:       i.InvoiceID,
		InvoiceNumber:   i.InvoiceNumber,
		Amount:          i.Amount,
		CurrencyCode:    i.CurrencyCode,
		IssueDate:       i.IssueDate,
		DueDate:         i.DueDate,
		SellerOrgID:     i.SellerOrgID,
		BuyerOrgID:      i.BuyerOrgID,
		CounterpartyID:  i.CounterpartyID,
		Origin:          string(i.Origin),
		Status:          string(i.Status),
		FundedAmount:    i.FundedAmount,
		DiscountRate:    i.DiscountRate,
		PaidAmount:      i.PaidAmount,
		RejectionReason: i.RejectionReason,
		BuyerApproved:   i.BuyerApproved,
		SellerAccepted:  i.SellerAccepted,
		FundingDate:     i.FundingDate,
		PaymentDate:     i.PaymentDate,
		Matured:         i.Matured,
		CreatedAt:       i.CreatedAt,
		LastUpdatedAt:   i.LastUpdatedAt,
	}
}

// ToInvoiceResponses converts a slice of domain.Invoice to []InvoiceResponse.
func ToInvoiceResponses(invoices []domain.Invoice) []InvoiceResponse {
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i])
	}
	return responses
}

// ToTransitionResponse converts a domain.TransitionResult to TransitionResponse DTO.
func ToTransitionResponse(r *domain.TransitionResult) TransitionResponse {
	events := make([]EventResponse, len(r.Events))
	for i, e := range r.Events {
		events[i] = EventResponse{
			Kind:        string(e.Kind),
			InvoiceID:   e.InvoiceID,
			TargetOrgID: e.TargetOrgID,
			Payload:     e.Payload,
			OccurredAt:  e.OccurredAt,
		}
	}
	return TransitionResponse{
		Invoice:   ToInvoiceResponse(&r.Invoice),
		NewStatus: string(r.NewStatus),
		Events:    events,
	}
}
