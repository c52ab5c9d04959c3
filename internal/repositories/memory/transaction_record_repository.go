package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/apperrors"
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
)

type transactionRecordRepository struct {
	s *Store
}

var _ portsrepo.TransactionRecordRepositoryFacade = (*transactionRecordRepository)(nil)

func (r *transactionRecordRepository) SaveTransactionRecord(ctx context.Context, record domain.TransactionRecord) error {
	return r.s.mutate(ctx, func() error {
		for _, existing := range r.s.records {
			if existing.RecordID == record.RecordID {
				return fmt.Errorf("transaction record %s: %w", record.RecordID, apperrors.ErrDuplicate)
			}
		}
		r.s.records = append(r.s.records, record)
		return nil
	})
}

func (r *transactionRecordRepository) MarkRecordsPaid(ctx context.Context, invoiceID string, recordType domain.TransactionRecordType, paymentDate time.Time, userID string) error {
	return r.s.mutate(ctx, func() error {
		for i, rec := range r.s.records {
			if rec.InvoiceID != invoiceID || rec.Type != recordType || rec.IsPaid {
				continue
			}
			paidOn := paymentDate
			rec.IsPaid = true
			rec.PaymentDate = &paidOn
			rec.Touch(userID, paymentDate)
			r.s.records[i] = rec
		}
		return nil
	})
}

func (r *transactionRecordRepository) ListRecordsByInvoice(_ context.Context, invoiceID string) ([]domain.TransactionRecord, error) {
	return r.filter(func(rec domain.TransactionRecord) bool {
		return rec.InvoiceID == invoiceID
	}), nil
}

func (r *transactionRecordRepository) ListRecordsByOrganization(_ context.Context, organizationID string, before time.Time) ([]domain.TransactionRecord, error) {
	return r.filter(func(rec domain.TransactionRecord) bool {
		return rec.OrganizationID == organizationID && rec.TransactionDate.Before(before)
	}), nil
}

func (r *transactionRecordRepository) filter(keep func(domain.TransactionRecord) bool) []domain.TransactionRecord {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []domain.TransactionRecord{}
	for _, rec := range r.s.records {
		if keep(rec) {
			result = append(result, rec)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TransactionDate.Before(result[j].TransactionDate)
	})
	return result
}
