package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type reportingRepository struct {
	s *Store
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

func (r *reportingRepository) GetTrialBalanceData(_ context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make(map[string]*domain.TrialBalanceRow, len(r.s.accounts))
	for id, acc := range r.s.accounts {
		rows[id] = &domain.TrialBalanceRow{
			AccountID:   acc.AccountID,
			Code:        acc.Code,
			AccountName: acc.Name,
			AccountType: acc.AccountType,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
	}

	for id, entry := range r.s.entries {
		if entry.Status != domain.Posted || entry.TransactionDate.After(asOf) {
			continue
		}
		for _, line := range r.s.lines[id] {
			row, ok := rows[line.AccountID]
			if !ok {
				continue
			}
			row.Debit = row.Debit.Add(line.Debit)
			row.Credit = row.Credit.Add(line.Credit)
		}
	}

	result := make([]domain.TrialBalanceRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, *row)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}
