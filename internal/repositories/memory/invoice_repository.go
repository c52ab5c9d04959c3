package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/apperrors"
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
	"github.com/SscSPs/invoice_finance_app/internal/utils/pagination"
)

type invoiceRepository struct {
	s *Store
}

var _ portsrepo.InvoiceRepositoryFacade = (*invoiceRepository)(nil)

func (r *invoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	return r.s.mutate(ctx, func() error {
		if _, exists := r.s.invoices[invoice.InvoiceID]; exists {
			return fmt.Errorf("invoice %s: %w", invoice.InvoiceID, apperrors.ErrDuplicate)
		}
		for _, existing := range r.s.invoices {
			if existing.SellerOrgID == invoice.SellerOrgID && existing.InvoiceNumber == invoice.InvoiceNumber {
				return fmt.Errorf("invoice number %s: %w", invoice.InvoiceNumber, apperrors.ErrDuplicate)
			}
		}
		r.s.invoices[invoice.InvoiceID] = invoice
		return nil
	})
}

func (r *invoiceRepository) FindInvoiceByID(_ context.Context, invoiceID string) (*domain.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	inv, ok := r.s.invoices[invoiceID]
	if !ok {
		return nil, fmt.Errorf("invoice %s: %w", invoiceID, apperrors.ErrNotFound)
	}
	return &inv, nil
}

func (r *invoiceRepository) FindInvoiceByIDForUpdate(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	if err := requireUnit(ctx, r.s, "lock invoice"); err != nil {
		return nil, err
	}
	return r.FindInvoiceByID(ctx, invoiceID)
}

func (r *invoiceRepository) FindInvoiceByNumber(_ context.Context, sellerOrgID, invoiceNumber string) (*domain.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, inv := range r.s.invoices {
		if inv.SellerOrgID == sellerOrgID && inv.InvoiceNumber == invoiceNumber {
			found := inv
			return &found, nil
		}
	}
	return nil, fmt.Errorf("invoice number %s: %w", invoiceNumber, apperrors.ErrNotFound)
}

func (r *invoiceRepository) UpdateInvoice(ctx context.Context, invoice domain.Invoice) error {
	return r.s.mutate(ctx, func() error {
		if _, ok := r.s.invoices[invoice.InvoiceID]; !ok {
			return fmt.Errorf("invoice %s: %w", invoice.InvoiceID, apperrors.ErrNotFound)
		}
		r.s.invoices[invoice.InvoiceID] = invoice
		return nil
	})
}

func (r *invoiceRepository) ListInvoices(_ context.Context, filter portsrepo.InvoiceFilter, limit int, nextToken *string) ([]domain.Invoice, *string, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}

	var (
		hasCursor     bool
		lastCreatedAt time.Time
		lastID        string
	)
	if nextToken != nil && *nextToken != "" {
		var err error
		lastCreatedAt, lastID, err = pagination.DecodeTimeIDToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("nextToken", err.Error())
		}
		hasCursor = true
	}

	r.s.mu.RLock()
	matches := make([]domain.Invoice, 0)
	for _, inv := range r.s.invoices {
		if filter.OrganizationID != "" && inv.SellerOrgID != filter.OrganizationID && inv.BuyerOrgID != filter.OrganizationID {
			continue
		}
		if filter.Status != nil && inv.Status != *filter.Status {
			continue
		}
		matches = append(matches, inv)
	}
	r.s.mu.RUnlock()

	// Newest first, ID breaks ties, same as the SQL ordering.
	sort.Slice(matches, func(i, j int) bool {
		return newerThan(matches[i].CreatedAt, matches[i].InvoiceID, matches[j].CreatedAt, matches[j].InvoiceID)
	})

	page := make([]domain.Invoice, 0, limit+1)
	for _, inv := range matches {
		if hasCursor && !newerThan(lastCreatedAt, lastID, inv.CreatedAt, inv.InvoiceID) {
			continue
		}
		page = append(page, inv)
		if len(page) > limit {
			break
		}
	}

	var nextTokenVal *string
	if len(page) > limit {
		last := page[limit-1]
		token := pagination.EncodeTimeIDToken(last.CreatedAt, last.InvoiceID)
		nextTokenVal = &token
		page = page[:limit]
	}
	return page, nextTokenVal, nil
}

func (r *invoiceRepository) ListPastDueInvoices(_ context.Context, asOf time.Time) ([]domain.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []domain.Invoice{}
	for _, inv := range r.s.invoices {
		if inv.Status == domain.InvoiceFunded && !inv.Matured && inv.DueDate.Before(asOf) {
			result = append(result, inv)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DueDate.Before(result[j].DueDate)
	})
	return result, nil
}

// newerThan orders (createdAt, id) pairs descending.
func newerThan(aTime time.Time, aID string, bTime time.Time, bID string) bool {
	if !aTime.Equal(bTime) {
		return aTime.After(bTime)
	}
	return aID > bID
}
