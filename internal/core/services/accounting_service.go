package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/invoice_finance_app/internal/apperrors"
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/invoice_finance_app/internal/core/ports/services"
	"github.com/SscSPs/invoice_finance_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// postingRule is one row of the fixed posting table. Memo rules only set debitCode.
type postingRule struct {
	debitCode  string
	creditCode string
}

var postingTable = map[domain.PostingType]postingRule{
	domain.PostingValidation:     {debitCode: domain.AccountCodeCash},
	domain.PostingApproval:       {debitCode: domain.AccountCodeCash},
	domain.PostingRejection:      {debitCode: domain.AccountCodeCash},
	domain.PostingSellerPayment:  {debitCode: domain.AccountCodeCash},
	domain.PostingFunding:        {debitCode: domain.AccountCodeLoansToCustomers, creditCode: domain.AccountCodeCash},
	domain.PostingInterestIncome: {debitCode: domain.AccountCodeAccountsReceivable, creditCode: domain.AccountCodeInterestIncome},
	domain.PostingPayment:        {debitCode: domain.AccountCodeCash, creditCode: domain.AccountCodeLoansToCustomers},
	domain.PostingFeeIncome:      {debitCode: domain.AccountCodeCash, creditCode: domain.AccountCodeFeeIncome},
}

// accountingService turns business events into posted journal entries.
type accountingService struct {
	BaseService
	uow         portsrepo.UnitOfWork
	accountRepo portsrepo.AccountRepositoryFacade
	journalRepo portsrepo.JournalRepositoryFacade
	bankOrgID   string
}

// AccountingServiceOption is a functional option for configuring the accounting service
type AccountingServiceOption func(*accountingService)

// WithAccountingClock overrides the clock used to date entries.
func WithAccountingClock(clock func() time.Time) AccountingServiceOption {
	return func(s *accountingService) {
		s.Clock = clock
	}
}

// NewAccountingService creates the accounting engine. bankOrgID owns every entry header.
func NewAccountingService(uow portsrepo.UnitOfWork, accountRepo portsrepo.AccountRepositoryFacade, journalRepo portsrepo.JournalRepositoryFacade, bankOrgID string, options ...AccountingServiceOption) portssvc.AccountingSvcFacade {
	svc := &accountingService{
		uow:         uow,
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		bankOrgID:   bankOrgID,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountingSvcFacade = (*accountingService)(nil)

// Post records one business event as a POSTED journal entry.
func (s *accountingService) Post(ctx context.Context, req portssvc.PostingRequest) (*domain.JournalEntry, error) {
	rule, ok := postingTable[req.Type]
	if !ok {
		return nil, apperrors.NewValidationError("type", fmt.Sprintf("unknown posting type %q", req.Type))
	}
	if req.Type.IsMemo() {
		if !req.Amount.IsZero() {
			return nil, apperrors.NewValidationError("amount", fmt.Sprintf("%s is a memo posting and cannot carry an amount", req.Type))
		}
	} else if !req.Amount.IsPositive() {
		return nil, apperrors.NewValidationError("amount", fmt.Sprintf("%s amount must be greater than zero", req.Type))
	} else if !domain.IsMoney(req.Amount) {
		return nil, apperrors.NewValidationError("amount", fmt.Sprintf("%s amount cannot have more than 2 decimal places", req.Type))
	}

	lineOrg := req.SellerOrgID
	if req.Type == domain.PostingPayment || lineOrg == "" {
		lineOrg = req.BuyerOrgID
	}

	codes := []string{rule.debitCode}
	if rule.creditCode != "" {
		codes = append(codes, rule.creditCode)
	}

	var posted *domain.JournalEntry
	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
		if err != nil {
			return fmt.Errorf("resolve accounts for %s: %w", req.Type, err)
		}

		now := s.Now()
		entryID := uuid.NewString()
		description := strings.TrimSpace(req.Description)
		if description == "" {
			description = string(req.Type)
		}

		lines := []domain.JournalEntryLine{{
			LineID:         uuid.NewString(),
			JournalEntryID: entryID,
			AccountID:      accounts[rule.debitCode].AccountID,
			Debit:          req.Amount,
			Credit:         decimal.Zero,
			Description:    description,
			OrganizationID: lineOrg,
			CreatedAt:      now,
		}}
		if rule.creditCode != "" {
			lines = append(lines, domain.JournalEntryLine{
				LineID:         uuid.NewString(),
				JournalEntryID: entryID,
				AccountID:      accounts[rule.creditCode].AccountID,
				Debit:          decimal.Zero,
				Credit:         req.Amount,
				Description:    description,
				OrganizationID: lineOrg,
				CreatedAt:      now,
			})
		}

		if err := accounting.ValidateEntryBalance(req.Type, req.Amount, lines); err != nil {
			return err
		}

		accountTypes := make(map[string]domain.AccountType, len(accounts))
		for _, acc := range accounts {
			accountTypes[acc.AccountID] = acc.AccountType
		}
		balanceChanges, err := accounting.CalculateBalanceChanges(lines, accountTypes)
		if err != nil {
			return err
		}

		var invoiceID *string
		if req.InvoiceID != "" {
			id := req.InvoiceID
			invoiceID = &id
		}
		entry := domain.JournalEntry{
			JournalEntryID:  entryID,
			Reference:       accounting.NewTransactionReference(req.Type, now),
			PostingType:     req.Type,
			TransactionDate: now,
			Description:     description,
			OrganizationID:  s.bankOrgID,
			InvoiceID:       invoiceID,
			Status:          domain.Posted,
			Amount:          req.Amount,
			PostedAt:        &now,
			PostedBy:        req.PostedBy.UserID,
			AuditFields:     domain.NewAuditFields(req.PostedBy.UserID, now),
		}

		if err := s.journalRepo.SaveJournalEntry(ctx, entry, lines, balanceChanges); err != nil {
			return fmt.Errorf("save %s entry: %w", req.Type, err)
		}
		entry.Lines = lines
		posted = &entry
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to post journal entry",
			slog.String("posting_type", string(req.Type)),
			slog.String("invoice_id", req.InvoiceID),
			slog.String("amount", req.Amount.String()))
		return nil, err
	}

	s.LogDebug(ctx, "Journal entry posted",
		slog.String("reference", posted.Reference),
		slog.String("posting_type", string(req.Type)),
		slog.String("amount", req.Amount.String()))
	return posted, nil
}

// GetJournalEntry retrieves one entry with its lines.
func (s *accountingService) GetJournalEntry(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindJournalEntryByID(ctx, journalEntryID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.LogError(ctx, err, "Failed to get journal entry", slog.String("journal_entry_id", journalEntryID))
		}
		return nil, err
	}
	return entry, nil
}

// ListJournalEntriesByInvoice returns the audit trail of an invoice.
func (s *accountingService) ListJournalEntriesByInvoice(ctx context.Context, invoiceID string) ([]domain.JournalEntry, error) {
	entries, err := s.journalRepo.ListJournalEntriesByInvoice(ctx, invoiceID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries for invoice", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	return entries, nil
}

// ListJournalEntries returns a page of entry headers, newest first.
func (s *accountingService) ListJournalEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	entries, next, err := s.journalRepo.ListJournalEntries(ctx, limit, nextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries", slog.Int("limit", limit))
		return nil, nil, err
	}
	return entries, next, nil
}

// ListAccounts returns the chart of accounts.
func (s *accountingService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, err
	}
	return accounts, nil
}
