package services

import (
	"context"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	"github.com/SscSPs/invoice_finance_app/internal/dto"
	"github.com/shopspring/decimal"
)

// InvoiceLifecycleSvc moves invoices through their lifecycle. Each operation either
// applies completely or leaves every store untouched.
type InvoiceLifecycleSvc interface {
	UploadInvoice(ctx context.Context, req dto.UploadInvoiceRequest, by domain.Principal) (*domain.TransitionResult, error)
	Validate(ctx context.Context, invoiceID string, by domain.Principal) (*domain.TransitionResult, error)
	ApproveForFunding(ctx context.Context, invoiceID string, by domain.Principal) (*domain.TransitionResult, error)
	Fund(ctx context.Context, invoiceID string, baseRate, margin decimal.Decimal, by domain.Principal) (*domain.TransitionResult, error)
	RecordBuyerPayment(ctx context.Context, invoiceID string, amount decimal.Decimal, paidOn time.Time, by domain.Principal) (*domain.TransitionResult, error)
	Reject(ctx context.Context, invoiceID string, reason string, by domain.Principal) (*domain.TransitionResult, error)
	OfferEarlyPayment(ctx context.Context, invoiceID string, discountRate decimal.Decimal, by domain.Principal) (*domain.TransitionResult, error)
	AcceptEarlyPaymentOffer(ctx context.Context, invoiceID string, by domain.Principal) (*domain.TransitionResult, error)
	RejectEarlyPaymentOffer(ctx context.Context, invoiceID string, by domain.Principal) (*domain.TransitionResult, error)
	ChargeFee(ctx context.Context, invoiceID string, amount decimal.Decimal, description string, by domain.Principal) (*domain.JournalEntry, error)
}

// InvoiceReaderSvc exposes invoice reads.
type InvoiceReaderSvc interface {
	GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, params dto.ListInvoicesParams) (*dto.ListInvoicesResponse, error)
}

// InvoiceSvcFacade combines lifecycle operations and reads.
type InvoiceSvcFacade interface {
	InvoiceLifecycleSvc
	InvoiceReaderSvc
}

// MaturitySvc flags funded invoices that passed their due date.
type MaturitySvc interface {
	SweepMatured(ctx context.Context, now time.Time) ([]domain.DomainEvent, error)
}

// InvoiceAction names an invoice operation subject to authorization.
type InvoiceAction string

const (
	ActionUpload       InvoiceAction = "UPLOAD"
	ActionView         InvoiceAction = "VIEW"
	ActionValidate     InvoiceAction = "VALIDATE"
	ActionApprove      InvoiceAction = "APPROVE"
	ActionFund         InvoiceAction = "FUND"
	ActionRecordPay    InvoiceAction = "RECORD_PAYMENT"
	ActionReject       InvoiceAction = "REJECT"
	ActionOfferEarly   InvoiceAction = "OFFER_EARLY_PAYMENT"
	ActionRespondEarly InvoiceAction = "RESPOND_EARLY_PAYMENT"
	ActionChargeFee    InvoiceAction = "CHARGE_FEE"
)

// InvoiceAuthorizerSvc decides whether a principal may act on an invoice.
type InvoiceAuthorizerSvc interface {
	AuthorizeInvoiceAction(ctx context.Context, by domain.Principal, invoice domain.Invoice, action InvoiceAction) error
}
