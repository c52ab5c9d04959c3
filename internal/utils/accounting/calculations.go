package accounting

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/apperrors"
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const referenceTimeFormat = "20060102-150405"

// CalculateSignedAmount returns the line's effect on an account of the given type.
// This is used in both services and repositories to ensure consistent accounting logic.
func CalculateSignedAmount(line domain.JournalEntryLine, accountType domain.AccountType) (decimal.Decimal, error) {
	// DEBIT to ASSET/EXPENSE -> Positive (+)
	// CREDIT to LIABILITY/EQUITY/REVENUE -> Positive (+)
	switch accountType {
	case domain.Asset, domain.Expense:
		return line.Debit.Sub(line.Credit), nil
	case domain.Liability, domain.Equity, domain.Revenue:
		return line.Credit.Sub(line.Debit), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s' encountered for account ID %s", accountType, line.AccountID)
	}
}

// CalculateBalanceChanges aggregates the signed effect of lines per account, skipping zero deltas.
func CalculateBalanceChanges(lines []domain.JournalEntryLine, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal)
	for _, line := range lines {
		accountType, ok := accountTypes[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("account type not found for account ID %s", line.AccountID)
		}
		signed, err := CalculateSignedAmount(line, accountType)
		if err != nil {
			return nil, err
		}
		changes[line.AccountID] = changes[line.AccountID].Add(signed)
	}
	for id, delta := range changes {
		if delta.IsZero() {
			delete(changes, id)
		}
	}
	return changes, nil
}

// ValidateEntryBalance enforces the line invariants for a posting:
// every line has at most one non-zero side and no negative side,
// memo postings carry no amount, and money postings balance to exactly amount.
func ValidateEntryBalance(postingType domain.PostingType, amount decimal.Decimal, lines []domain.JournalEntryLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: %s entry has no lines", apperrors.ErrUnbalancedEntry, postingType)
	}
	for _, l := range lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return fmt.Errorf("%w: negative amount on account %s", apperrors.ErrUnbalancedEntry, l.AccountID)
		}
		if !l.Debit.IsZero() && !l.Credit.IsZero() {
			return fmt.Errorf("%w: line on account %s has both debit and credit", apperrors.ErrUnbalancedEntry, l.AccountID)
		}
	}

	debits, credits := domain.Totals(lines)
	if postingType.IsMemo() {
		if !debits.IsZero() || !credits.IsZero() {
			return fmt.Errorf("%w: memo entry %s carries an amount", apperrors.ErrUnbalancedEntry, postingType)
		}
		return nil
	}
	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits sum is %s and credits sum is %s",
			apperrors.ErrUnbalancedEntry, debits.String(), credits.String())
	}
	if !debits.Equal(amount) {
		return fmt.Errorf("%w: lines total %s but posting amount is %s",
			apperrors.ErrUnbalancedEntry, debits.String(), amount.String())
	}
	return nil
}

// NewTransactionReference builds `<TYPE>-<YYYYMMDD-HHMMSS>-<suffix>`. The random suffix
// keeps references unique when two entries of one type land in the same second.
func NewTransactionReference(postingType domain.PostingType, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", postingType, now.UTC().Format(referenceTimeFormat), suffix)
}
