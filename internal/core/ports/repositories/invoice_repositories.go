package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
)

// InvoiceFilter narrows invoice listings. Empty fields do not filter.
type InvoiceFilter struct {
	// OrganizationID matches invoices where the organization is seller or buyer.
	OrganizationID string
	Status         *domain.InvoiceStatus
}

// InvoiceReader defines read operations for invoices
type InvoiceReader interface {
	// FindInvoiceByID retrieves an invoice by its identifier.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// FindInvoiceByNumber retrieves the seller's invoice with the given number.
	FindInvoiceByNumber(ctx context.Context, sellerOrgID, invoiceNumber string) (*domain.Invoice, error)

	// ListInvoices retrieves a page of invoices, newest first, using token-based pagination.
	ListInvoices(ctx context.Context, filter InvoiceFilter, limit int, nextToken *string) ([]domain.Invoice, *string, error)

	// ListPastDueInvoices retrieves funded, not yet matured invoices whose due date is before asOf.
	ListPastDueInvoices(ctx context.Context, asOf time.Time) ([]domain.Invoice, error)
}

// InvoiceWriter defines write operations for invoices
type InvoiceWriter interface {
	SaveInvoice(ctx context.Context, invoice domain.Invoice) error

	// FindInvoiceByIDForUpdate reads the invoice and locks it for the rest of the unit of work.
	FindInvoiceByIDForUpdate(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// UpdateInvoice writes every mutable field of the invoice.
	UpdateInvoice(ctx context.Context, invoice domain.Invoice) error
}

// InvoiceRepositoryFacade combines all invoice repository interfaces
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
}
