package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
)

// TransactionRecordReader defines read operations for funding/payment history
type TransactionRecordReader interface {
	ListRecordsByInvoice(ctx context.Context, invoiceID string) ([]domain.TransactionRecord, error)

	// ListRecordsByOrganization returns the organization's records dated before `before`, oldest first.
	ListRecordsByOrganization(ctx context.Context, organizationID string, before time.Time) ([]domain.TransactionRecord, error)
}

// TransactionRecordWriter defines write operations for funding/payment history
type TransactionRecordWriter interface {
	SaveTransactionRecord(ctx context.Context, record domain.TransactionRecord) error

	// MarkRecordsPaid flags the invoice's records of the given type as paid.
	MarkRecordsPaid(ctx context.Context, invoiceID string, recordType domain.TransactionRecordType, paymentDate time.Time, userID string) error
}

// TransactionRecordRepositoryFacade combines all transaction record repository interfaces
type TransactionRecordRepositoryFacade interface {
	TransactionRecordReader
	TransactionRecordWriter
}
