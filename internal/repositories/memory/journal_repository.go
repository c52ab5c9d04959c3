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
	"github.com/shopspring/decimal"
)

type journalRepository struct {
	s *Store
}

var _ portsrepo.JournalRepositoryFacade = (*journalRepository)(nil)

func (r *journalRepository) SaveJournalEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine, balanceChanges map[string]decimal.Decimal) error {
	return r.s.mutate(ctx, func() error {
		if _, exists := r.s.entries[entry.JournalEntryID]; exists {
			return fmt.Errorf("journal entry %s: %w", entry.JournalEntryID, apperrors.ErrDuplicate)
		}
		for _, existing := range r.s.entries {
			if existing.Reference == entry.Reference {
				return fmt.Errorf("journal reference %s: %w", entry.Reference, apperrors.ErrDuplicate)
			}
		}
		for _, line := range lines {
			if _, ok := r.s.accounts[line.AccountID]; !ok {
				return fmt.Errorf("line account %s: %w", line.AccountID, apperrors.ErrNotFound)
			}
		}
		if err := r.s.applyBalanceChanges(balanceChanges, entry.CreatedBy, entry.CreatedAt); err != nil {
			return err
		}

		header := entry
		header.Lines = nil
		r.s.entries[entry.JournalEntryID] = header
		r.s.entryOrder = append(r.s.entryOrder, entry.JournalEntryID)

		stored := make([]domain.JournalEntryLine, len(lines))
		for i, line := range lines {
			line.CreatedAt = entry.CreatedAt
			stored[i] = line
		}
		r.s.lines[entry.JournalEntryID] = stored
		return nil
	})
}

func (r *journalRepository) FindJournalEntryByID(_ context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	entry, ok := r.s.entries[journalEntryID]
	if !ok {
		return nil, fmt.Errorf("journal entry %s: %w", journalEntryID, apperrors.ErrNotFound)
	}
	entry.Lines = r.s.linesOf(journalEntryID)
	return &entry, nil
}

func (r *journalRepository) ListJournalEntriesByInvoice(_ context.Context, invoiceID string) ([]domain.JournalEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []domain.JournalEntry{}
	for _, id := range r.s.entryOrder {
		entry := r.s.entries[id]
		if entry.InvoiceID == nil || *entry.InvoiceID != invoiceID {
			continue
		}
		entry.Lines = r.s.linesOf(id)
		result = append(result, entry)
	}
	return result, nil
}

func (r *journalRepository) ListJournalEntries(_ context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}

	var (
		hasCursor     bool
		lastDate      time.Time
		lastCreatedAt time.Time
	)
	if nextToken != nil && *nextToken != "" {
		var err error
		lastDate, lastCreatedAt, err = pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("nextToken", err.Error())
		}
		hasCursor = true
	}

	r.s.mu.RLock()
	all := make([]domain.JournalEntry, 0, len(r.s.entryOrder))
	for _, id := range r.s.entryOrder {
		all = append(all, r.s.entries[id])
	}
	r.s.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].TransactionDate.Equal(all[j].TransactionDate) {
			return all[i].TransactionDate.After(all[j].TransactionDate)
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	page := make([]domain.JournalEntry, 0, limit+1)
	for _, e := range all {
		if hasCursor {
			before := e.TransactionDate.Before(lastDate) ||
				(e.TransactionDate.Equal(lastDate) && e.CreatedAt.Before(lastCreatedAt))
			if !before {
				continue
			}
		}
		page = append(page, e)
		if len(page) > limit {
			break
		}
	}

	var nextTokenVal *string
	if len(page) > limit {
		last := page[limit-1]
		token := pagination.EncodeToken(last.TransactionDate, last.CreatedAt)
		nextTokenVal = &token
		page = page[:limit]
	}
	return page, nextTokenVal, nil
}

// linesOf must be called with s.mu held.
func (s *Store) linesOf(journalEntryID string) []domain.JournalEntryLine {
	return append([]domain.JournalEntryLine(nil), s.lines[journalEntryID]...)
}
