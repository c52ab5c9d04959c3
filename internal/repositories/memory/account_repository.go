package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/apperrors"
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type accountRepository struct {
	s *Store
}

var _ portsrepo.AccountRepositoryFacade = (*accountRepository)(nil)

func (r *accountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	return r.s.mutate(ctx, func() error {
		if _, exists := r.s.accounts[account.AccountID]; exists {
			return fmt.Errorf("account %s: %w", account.AccountID, apperrors.ErrDuplicate)
		}
		for _, existing := range r.s.accounts {
			if existing.Code == account.Code {
				return fmt.Errorf("account code %s: %w", account.Code, apperrors.ErrDuplicate)
			}
		}
		r.s.accounts[account.AccountID] = account
		return nil
	})
}

func (r *accountRepository) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	acc, ok := r.s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
	}
	return &acc, nil
}

func (r *accountRepository) FindAccountsByCodes(_ context.Context, codes []string) (map[string]domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byCode := make(map[string]domain.Account, len(codes))
	for _, acc := range r.s.accounts {
		if acc.IsActive {
			byCode[acc.Code] = acc
		}
	}
	result := make(map[string]domain.Account, len(codes))
	for _, code := range codes {
		acc, ok := byCode[code]
		if !ok {
			return nil, fmt.Errorf("account with code %s: %w", code, apperrors.ErrNotFound)
		}
		result[code] = acc
	}
	return result, nil
}

func (r *accountRepository) ListAccounts(_ context.Context) ([]domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]domain.Account, 0, len(r.s.accounts))
	for _, acc := range r.s.accounts {
		result = append(result, acc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (r *accountRepository) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if err := requireUnit(ctx, r.s, "lock accounts"); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make(map[string]domain.Account, len(accountIDs))
	missing := []string{}
	for _, id := range accountIDs {
		acc, ok := r.s.accounts[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		result[id] = acc
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: could not find or lock all requested accounts, missing: %v", apperrors.ErrNotFound, missing)
	}
	return result, nil
}

func (r *accountRepository) UpdateAccountBalances(ctx context.Context, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	return r.s.mutate(ctx, func() error {
		return r.s.applyBalanceChanges(balanceChanges, userID, now)
	})
}

// applyBalanceChanges must be called with s.mu held for writing.
func (s *Store) applyBalanceChanges(balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	for accountID := range balanceChanges {
		if _, ok := s.accounts[accountID]; !ok {
			return fmt.Errorf("update balance of account %s: %w", accountID, apperrors.ErrNotFound)
		}
	}
	for accountID, delta := range balanceChanges {
		if delta.IsZero() {
			continue
		}
		acc := s.accounts[accountID]
		acc.Balance = acc.Balance.Add(delta)
		acc.Touch(userID, now)
		s.accounts[accountID] = acc
	}
	return nil
}
