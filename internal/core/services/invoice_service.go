package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/invoice_finance_app/internal/apperrors"
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/invoice_finance_app/internal/core/ports/services"
	"github.com/SscSPs/invoice_finance_app/internal/dto"
	"github.com/SscSPs/invoice_finance_app/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

const maxInvoicePageSize = 100

var hundred = decimal.NewFromInt(100)

// invoiceService is the lifecycle controller. Each operation takes the logical
// locks, then performs credit, ledger and invoice writes in one unit of work.
type invoiceService struct {
	BaseService
	uow         portsrepo.UnitOfWork
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	orgRepo     portsrepo.OrganizationReader
	recordRepo  portsrepo.TransactionRecordWriter
	accounting  portssvc.AccountingPoster
	credit      portssvc.CreditSvcFacade
	locker      *KeyedLocker
}

// InvoiceServiceOption is a functional option for configuring the invoice service
type InvoiceServiceOption func(*invoiceService)

// WithInvoiceAuthorizer sets the authorizer consulted before every operation.
func WithInvoiceAuthorizer(authorizer portssvc.InvoiceAuthorizerSvc) InvoiceServiceOption {
	return func(s *invoiceService) {
		s.InvoiceAuthorizer = authorizer
	}
}

// WithInvoiceClock overrides the clock used for lifecycle timestamps.
func WithInvoiceClock(clock func() time.Time) InvoiceServiceOption {
	return func(s *invoiceService) {
		s.Clock = clock
	}
}

// WithKeyedLocker shares a locker with other services touching the same keys.
func WithKeyedLocker(locker *KeyedLocker) InvoiceServiceOption {
	return func(s *invoiceService) {
		s.locker = locker
	}
}

// NewInvoiceService creates the invoice lifecycle controller.
func NewInvoiceService(repos portsrepo.RepositoryProvider, accountingSvc portssvc.AccountingPoster, creditSvc portssvc.CreditSvcFacade, options ...InvoiceServiceOption) portssvc.InvoiceSvcFacade {
	svc := &invoiceService{
		uow:         repos.UnitOfWork,
		invoiceRepo: repos.InvoiceRepo,
		orgRepo:     repos.OrganizationRepo,
		recordRepo:  repos.TransactionRecordRepo,
		accounting:  accountingSvc,
		credit:      creditSvc,
		locker:      NewKeyedLocker(),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

// transitionFunc performs the side effects of one transition on the locked invoice
// and returns the events to raise once it commits.
type transitionFunc func(ctx context.Context, inv *domain.Invoice, now time.Time) ([]domain.DomainEvent, error)

func (s *invoiceService) transition(ctx context.Context, invoiceID string, action portssvc.InvoiceAction, to domain.InvoiceStatus, by domain.Principal, apply transitionFunc) (*domain.TransitionResult, error) {
	// The parties never change, so an unlocked read is enough to pick lock keys.
	current, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	unlock := s.locker.Lock(invoiceKey(invoiceID), orgKey(current.SellerOrgID), orgKey(current.BuyerOrgID))
	defer unlock()

	var result *domain.TransitionResult
	err = s.uow.RunInTx(ctx, func(ctx context.Context) error {
		inv, err := s.invoiceRepo.FindInvoiceByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if err := s.AuthorizeInvoice(ctx, by, *inv, action); err != nil {
			return err
		}
		if !inv.Status.CanTransitionTo(to) {
			return &apperrors.InvalidTransitionError{
				InvoiceID: inv.InvoiceID,
				From:      string(inv.Status),
				To:        string(to),
				Terminal:  inv.Status.IsTerminal(),
			}
		}

		now := s.Now()
		events, err := apply(ctx, inv, now)
		if err != nil {
			return err
		}
		inv.Status = to
		inv.Touch(by.UserID, now)
		if err := s.invoiceRepo.UpdateInvoice(ctx, *inv); err != nil {
			return err
		}
		result = &domain.TransitionResult{Invoice: *inv, NewStatus: to, Events: events}
		return nil
	})
	if err != nil {
		s.logTransitionFailure(ctx, err, invoiceID, to)
		return nil, err
	}

	s.LogInfo(ctx, "Invoice transitioned",
		slog.String("invoice_id", invoiceID),
		slog.String("status", string(to)),
		slog.String("user_id", by.UserID))
	return result, nil
}

func (s *invoiceService) logTransitionFailure(ctx context.Context, err error, invoiceID string, to domain.InvoiceStatus) {
	attrs := []any{slog.String("invoice_id", invoiceID), slog.String("target_status", string(to))}
	switch {
	case apperrors.IsValidation(err), apperrors.IsInvalidTransition(err), apperrors.IsInsufficientCredit(err),
		apperrors.IsForbidden(err), apperrors.IsNotFound(err):
		s.LogInfo(ctx, "Invoice transition refused", append(attrs, slog.String("reason", err.Error()))...)
	default:
		s.LogError(ctx, err, "Invoice transition failed", attrs...)
	}
}

func (s *invoiceService) post(ctx context.Context, inv *domain.Invoice, postingType domain.PostingType, amount decimal.Decimal, description string, by domain.Principal) error {
	_, err := s.accounting.Post(ctx, portssvc.PostingRequest{
		Type:        postingType,
		Amount:      amount,
		InvoiceID:   inv.InvoiceID,
		Description: description,
		SellerOrgID: inv.SellerOrgID,
		BuyerOrgID:  inv.BuyerOrgID,
		PostedBy:    by,
	})
	return err
}

// UploadInvoice registers a new invoice in UPLOADED status.
func (s *invoiceService) UploadInvoice(ctx context.Context, req dto.UploadInvoiceRequest, by domain.Principal) (*domain.TransitionResult, error) {
	if err := validateUpload(req); err != nil {
		return nil, err
	}

	origin := domain.OriginSeller
	if by.Role == domain.RoleBuyer {
		origin = domain.OriginBuyer
	}
	now := s.Now()
	inv := domain.Invoice{
		InvoiceID:      uuid.NewString(),
		InvoiceNumber:  strings.TrimSpace(req.InvoiceNumber),
		Amount:         req.Amount,
		CurrencyCode:   strings.ToUpper(req.CurrencyCode),
		IssueDate:      req.IssueDate,
		DueDate:        req.DueDate,
		SellerOrgID:    req.SellerOrgID,
		BuyerOrgID:     req.BuyerOrgID,
		CounterpartyID: req.CounterpartyID,
		Origin:         origin,
		Status:         domain.InvoiceUploaded,
		AuditFields:    domain.NewAuditFields(by.UserID, now),
	}
	if err := s.AuthorizeInvoice(ctx, by, inv, portssvc.ActionUpload); err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(orgKey(inv.SellerOrgID), orgKey(inv.BuyerOrgID))
	defer unlock()

	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.requireParty(ctx, "sellerOrgID", inv.SellerOrgID, func(o *domain.Organization) bool { return o.IsSeller }); err != nil {
			return err
		}
		if err := s.requireParty(ctx, "buyerOrgID", inv.BuyerOrgID, func(o *domain.Organization) bool { return o.IsBuyer }); err != nil {
			return err
		}
		_, err := s.invoiceRepo.FindInvoiceByNumber(ctx, inv.SellerOrgID, inv.InvoiceNumber)
		if err == nil {
			return fmt.Errorf("invoice number %s for seller %s: %w", inv.InvoiceNumber, inv.SellerOrgID, apperrors.ErrDuplicate)
		}
		if !apperrors.IsNotFound(err) {
			return err
		}
		return s.invoiceRepo.SaveInvoice(ctx, inv)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to upload invoice",
			slog.String("invoice_number", inv.InvoiceNumber),
			slog.String("seller_org_id", inv.SellerOrgID))
		return nil, err
	}

	target := inv.BuyerOrgID
	if origin == domain.OriginBuyer {
		target = inv.SellerOrgID
	}
	events := []domain.DomainEvent{newEvent(domain.EventInvoiceUploaded, inv, target, now, map[string]string{
		"invoiceNumber": inv.InvoiceNumber,
		"amount":        inv.Amount.StringFixed(2),
		"origin":        string(origin),
	})}

	s.LogInfo(ctx, "Invoice uploaded",
		slog.String("invoice_id", inv.InvoiceID),
		slog.String("invoice_number", inv.InvoiceNumber),
		slog.String("origin", string(origin)))
	return &domain.TransitionResult{Invoice: inv, NewStatus: domain.InvoiceUploaded, Events: events}, nil
}

func validateUpload(req dto.UploadInvoiceRequest) error {
	switch {
	case strings.TrimSpace(req.InvoiceNumber) == "":
		return apperrors.NewValidationError("invoiceNumber", "invoice number is required")
	case !req.Amount.IsPositive():
		return apperrors.NewValidationError("amount", "amount must be greater than zero")
	case !domain.IsMoney(req.Amount):
		return apperrors.NewValidationError("amount", "amount cannot have more than 2 decimal places")
	case len(req.CurrencyCode) != 3:
		return apperrors.NewValidationError("currencyCode", "currency code must have 3 letters")
	case req.SellerOrgID == "" || req.BuyerOrgID == "":
		return apperrors.NewValidationError("sellerOrgID", "seller and buyer are required")
	case req.DueDate.Before(req.IssueDate):
		return apperrors.NewValidationError("dueDate", "due date cannot precede issue date")
	}
	return nil
}

func (s *invoiceService) requireParty(ctx context.Context, field, organizationID string, hasRole func(*domain.Organization) bool) error {
	org, err := s.orgRepo.FindOrganizationByID(ctx, organizationID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewValidationError(field, "organization "+organizationID+" does not exist")
		}
		return err
	}
	if !hasRole(org) {
		return apperrors.NewValidationError(field, "organization "+organizationID+" cannot act in this role")
	}
	return nil
}

// Validate moves UPLOADED to VALIDATED and records a memo entry.
func (s *invoiceService) Validate(ctx context.Context, invoiceID string, by domain.Principal) (*domain.TransitionResult, error) {
	return s.transition(ctx, invoiceID, portssvc.ActionValidate, domain.InvoiceValidated, by,
		func(ctx context.Context, inv *domain.Invoice, now time.Time) ([]domain.DomainEvent, error) {
			if err := s.post(ctx, inv, domain.PostingValidation, decimal.Zero, "Invoice "+inv.InvoiceNumber+" validated", by); err != nil {
				return nil, err
			}
			return partyEvents(domain.EventInvoiceValidated, *inv, now, nil), nil
		})
}

// ApproveForFunding moves VALIDATED to APPROVED and records a memo entry.
func (s *invoiceService) ApproveForFunding(ctx context.Context, invoiceID string, by domain.Principal) (*domain.TransitionResult, error) {
	return s.transition(ctx, invoiceID, portssvc.ActionApprove, domain.InvoiceApproved, by,
		func(ctx context.Context, inv *domain.Invoice, now time.Time) ([]domain.DomainEvent, error) {
			if err := s.post(ctx, inv, domain.PostingApproval, decimal.Zero, "Invoice "+inv.InvoiceNumber+" approved for funding", by); err != nil {
				return nil, err
			}
			return partyEvents(domain.EventInvoiceApproved, *inv, now, nil), nil
		})
}

// Fund advances the discounted amount to the seller. Both parties' facilities are
// charged the face amount and the discount is booked as interest income.
func (s *invoiceService) Fund(ctx context.Context, invoiceID string, baseRate, margin decimal.Decimal, by domain.Principal) (*domain.TransitionResult, error) {
	if baseRate.IsNegative() {
		return nil, apperrors.NewValidationError("baseRate", "base rate cannot be negative")
	}
	if margin.IsNegative() {
		return nil, apperrors.NewValidationError("margin", "margin cannot be negative")
	}
	if !domain.IsRate(baseRate) {
		return nil, apperrors.NewValidationError("baseRate", "base rate cannot have more than 4 decimal places")
	}
	if !domain.IsRate(margin) {
		return nil, apperrors.NewValidationError("margin", "margin cannot have more than 4 decimal places")
	}

	return s.transition(ctx, invoiceID, portssvc.ActionFund, domain.InvoiceFunded, by,
		func(ctx context.Context, inv *domain.Invoice, now time.Time) ([]domain.DomainEvent, error) {
			finalRate, err := resolveFundingRate(inv, baseRate, margin)
			if err != nil {
				return nil, err
			}
			terms := domain.PriceFunding(inv.Amount, finalRate)
			if !terms.FundedAmount.IsPositive() {
				return nil, apperrors.NewValidationError("margin", "final rate leaves nothing to fund")
			}

			for _, orgID := range []string{inv.SellerOrgID, inv.BuyerOrgID} {
				if err := s.precheckCredit(ctx, orgID, inv.Amount); err != nil {
					return nil, err
				}
			}
			if err := s.credit.Reserve(ctx, inv.SellerOrgID, inv.Amount, by); err != nil {
				return nil, err
			}
			if err := s.credit.Reserve(ctx, inv.BuyerOrgID, inv.Amount, by); err != nil {
				return nil, err
			}

			if err := s.post(ctx, inv, domain.PostingFunding, terms.FundedAmount,
				fmt.Sprintf("Funding of invoice %s at %s%%", inv.InvoiceNumber, finalRate.String()), by); err != nil {
				return nil, err
			}
			if terms.Discount.IsPositive() {
				if err := s.post(ctx, inv, domain.PostingInterestIncome, terms.Discount,
					"Discount on invoice "+inv.InvoiceNumber, by); err != nil {
					return nil, err
				}
			}
			if err := s.post(ctx, inv, domain.PostingSellerPayment, decimal.Zero,
				"Seller paid for invoice "+inv.InvoiceNumber, by); err != nil {
				return nil, err
			}

			rate := finalRate
			if err := s.recordRepo.SaveTransactionRecord(ctx, domain.TransactionRecord{
				RecordID:        uuid.NewString(),
				Type:            domain.RecordFunding,
				OrganizationID:  inv.SellerOrgID,
				InvoiceID:       inv.InvoiceID,
				Description:     "Funding of invoice " + inv.InvoiceNumber,
				Amount:          terms.FundedAmount,
				Rate:            &rate,
				TransactionDate: now,
				MaturityDate:    inv.DueDate,
				AuditFields:     domain.NewAuditFields(by.UserID, now),
			}); err != nil {
				return nil, err
			}
			if terms.Discount.IsPositive() {
				if err := s.recordRepo.SaveTransactionRecord(ctx, domain.TransactionRecord{
					RecordID:        uuid.NewString(),
					Type:            domain.RecordInterest,
					OrganizationID:  inv.SellerOrgID,
					InvoiceID:       inv.InvoiceID,
					Description:     "Discount on invoice " + inv.InvoiceNumber,
					Amount:          terms.Discount,
					Rate:            &rate,
					TransactionDate: now,
					MaturityDate:    inv.DueDate,
					AuditFields:     domain.NewAuditFields(by.UserID, now),
				}); err != nil {
					return nil, err
				}
			}

			funded := terms.FundedAmount
			fundedAt := now
			inv.FundedAmount = &funded
			inv.DiscountRate = &rate
			inv.FundingDate = &fundedAt

			return partyEvents(domain.EventInvoiceFunded, *inv, now, map[string]string{
				"fundedAmount": terms.FundedAmount.StringFixed(2),
				"discount":     terms.Discount.StringFixed(2),
				"rate":         finalRate.String(),
			}), nil
		})
}

// resolveFundingRate applies the binding offer rate of a seller-approved invoice.
func resolveFundingRate(inv *domain.Invoice, baseRate, margin decimal.Decimal) (decimal.Decimal, error) {
	requested := baseRate.Add(margin)
	if inv.Status != domain.InvoiceSellerApproved || inv.DiscountRate == nil {
		return requested, nil
	}
	offered := *inv.DiscountRate
	if requested.IsZero() {
		return offered, nil
	}
	if !requested.Equal(offered) {
		return decimal.Zero, apperrors.NewValidationError("margin",
			fmt.Sprintf("rate %s differs from the accepted early payment rate %s", requested.String(), offered.String()))
	}
	return offered, nil
}

// precheckCredit fails fast when an organization clearly cannot absorb amount.
// Reserve re-checks under lock.
func (s *invoiceService) precheckCredit(ctx context.Context, organizationID string, amount decimal.Decimal) error {
	ok, err := s.credit.CheckAvailable(ctx, organizationID, amount)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	available := decimal.Zero
	facility, err := s.credit.GetFacility(ctx, organizationID)
	switch {
	case err == nil:
		available = facility.Available()
	case !apperrors.IsNotFound(err):
		return err
	}
	return &apperrors.CreditLimitExceededError{
		OrganizationID: organizationID,
		Available:      available,
		Requested:      amount,
	}
}

// RecordBuyerPayment settles a funded invoice and frees both parties' credit.
func (s *invoiceService) RecordBuyerPayment(ctx context.Context, invoiceID string, amount decimal.Decimal, paidOn time.Time, by domain.Principal) (*domain.TransitionResult, error) {
	if !amount.IsPositive() {
		return nil, apperrors.NewValidationError("amount", "payment amount must be greater than zero")
	}
	if !domain.IsMoney(amount) {
		return nil, apperrors.NewValidationError("amount", "payment amount cannot have more than 2 decimal places")
	}

	return s.transition(ctx, invoiceID, portssvc.ActionRecordPay, domain.InvoicePaid, by,
		func(ctx context.Context, inv *domain.Invoice, now time.Time) ([]domain.DomainEvent, error) {
			paymentDate := paidOn
			if paymentDate.IsZero() {
				paymentDate = now
			}

			if err := s.credit.Release(ctx, inv.SellerOrgID, inv.Amount, by); err != nil {
				return nil, err
			}
			if err := s.credit.Release(ctx, inv.BuyerOrgID, inv.Amount, by); err != nil {
				return nil, err
			}
			if err := s.post(ctx, inv, domain.PostingPayment, amount, "Buyer payment for invoice "+inv.InvoiceNumber, by); err != nil {
				return nil, err
			}
			if err := s.recordRepo.SaveTransactionRecord(ctx, domain.TransactionRecord{
				RecordID:        uuid.NewString(),
				Type:            domain.RecordPayment,
				OrganizationID:  inv.BuyerOrgID,
				InvoiceID:       inv.InvoiceID,
				Description:     "Payment of invoice " + inv.InvoiceNumber,
				Amount:          amount,
				TransactionDate: paymentDate,
				MaturityDate:    inv.DueDate,
				IsPaid:          true,
				PaymentDate:     &paymentDate,
				AuditFields:     domain.NewAuditFields(by.UserID, now),
			}); err != nil {
				return nil, err
			}
			if err := s.recordRepo.MarkRecordsPaid(ctx, inv.InvoiceID, domain.RecordFunding, paymentDate, by.UserID); err != nil {
				return nil, err
			}

			paid := amount
			inv.PaidAmount = &paid
			inv.PaymentDate = &paymentDate

			return partyEvents(domain.EventInvoicePaid, *inv, now, map[string]string{
				"paidAmount": amount.StringFixed(2),
			}), nil
		})
}

// Reject closes an invoice that has not been funded.
func (s *invoiceService) Reject(ctx context.Context, invoiceID string, reason string, by domain.Principal) (*domain.TransitionResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("reason", "rejection reason is required")
	}

	return s.transition(ctx, invoiceID, portssvc.ActionReject, domain.InvoiceRejected, by,
		func(ctx context.Context, inv *domain.Invoice, now time.Time) ([]domain.DomainEvent, error) {
			if err := s.post(ctx, inv, domain.PostingRejection, decimal.Zero,
				"Invoice "+inv.InvoiceNumber+" rejected: "+reason, by); err != nil {
				return nil, err
			}
			inv.RejectionReason = &reason
			return partyEvents(domain.EventInvoiceRejected, *inv, now, map[string]string{"reason": reason}), nil
		})
}

// OfferEarlyPayment lets the buyer of a buyer-uploaded invoice propose a discount.
func (s *invoiceService) OfferEarlyPayment(ctx context.Context, invoiceID string, discountRate decimal.Decimal, by domain.Principal) (*domain.TransitionResult, error) {
	if !discountRate.IsPositive() || discountRate.GreaterThanOrEqual(hundred) {
		return nil, apperrors.NewValidationError("discountRate", "discount rate must be between 0 and 100")
	}
	if !domain.IsRate(discountRate) {
		return nil, apperrors.NewValidationError("discountRate", "discount rate cannot have more than 4 decimal places")
	}

	return s.transition(ctx, invoiceID, portssvc.ActionOfferEarly, domain.InvoicePendingSellerApproval, by,
		func(ctx context.Context, inv *domain.Invoice, now time.Time) ([]domain.DomainEvent, error) {
			if inv.Origin != domain.OriginBuyer {
				return nil, apperrors.NewValidationError("origin", "early payment offers apply to buyer-uploaded invoices only")
			}
			rate := discountRate
			approvedAt := now
			inv.DiscountRate = &rate
			inv.BuyerApproved = true
			inv.BuyerApprovalDate = &approvedAt

			terms := domain.PriceFunding(inv.Amount, rate)
			return []domain.DomainEvent{newEvent(domain.EventEarlyPaymentOffered, *inv, inv.SellerOrgID, now, map[string]string{
				"discountRate": rate.String(),
				"netAmount":    terms.FundedAmount.StringFixed(2),
			})}, nil
		})
}

// AcceptEarlyPaymentOffer records the seller's acceptance; funding follows separately.
func (s *invoiceService) AcceptEarlyPaymentOffer(ctx context.Context, invoiceID string, by domain.Principal) (*domain.TransitionResult, error) {
	return s.transition(ctx, invoiceID, portssvc.ActionRespondEarly, domain.InvoiceSellerApproved, by,
		func(ctx context.Context, inv *domain.Invoice, now time.Time) ([]domain.DomainEvent, error) {
			inv.SellerAccepted = true
			return []domain.DomainEvent{newEvent(domain.EventEarlyPaymentAccepted, *inv, inv.BuyerOrgID, now, nil)}, nil
		})
}

// RejectEarlyPaymentOffer returns the invoice to APPROVED and drops the offered rate.
func (s *invoiceService) RejectEarlyPaymentOffer(ctx context.Context, invoiceID string, by domain.Principal) (*domain.TransitionResult, error) {
	return s.transition(ctx, invoiceID, portssvc.ActionRespondEarly, domain.InvoiceApproved, by,
		func(ctx context.Context, inv *domain.Invoice, now time.Time) ([]domain.DomainEvent, error) {
			inv.DiscountRate = nil
			inv.SellerAccepted = false
			return []domain.DomainEvent{newEvent(domain.EventEarlyPaymentRejected, *inv, inv.BuyerOrgID, now, nil)}, nil
		})
}

// ChargeFee books fee income against a funded or paid invoice. The status is unchanged.
func (s *invoiceService) ChargeFee(ctx context.Context, invoiceID string, amount decimal.Decimal, description string, by domain.Principal) (*domain.JournalEntry, error) {
	if !amount.IsPositive() {
		return nil, apperrors.NewValidationError("amount", "fee amount must be greater than zero")
	}
	if !domain.IsMoney(amount) {
		return nil, apperrors.NewValidationError("amount", "fee amount cannot have more than 2 decimal places")
	}

	current, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	unlock := s.locker.Lock(invoiceKey(invoiceID), orgKey(current.SellerOrgID), orgKey(current.BuyerOrgID))
	defer unlock()

	var entry *domain.JournalEntry
	err = s.uow.RunInTx(ctx, func(ctx context.Context) error {
		inv, err := s.invoiceRepo.FindInvoiceByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if err := s.AuthorizeInvoice(ctx, by, *inv, portssvc.ActionChargeFee); err != nil {
			return err
		}
		if inv.Status != domain.InvoiceFunded && inv.Status != domain.InvoicePaid {
			return &apperrors.InvalidTransitionError{
				InvoiceID: inv.InvoiceID,
				From:      string(inv.Status),
				To:        "FEE_CHARGED",
				Terminal:  inv.Status.IsTerminal(),
			}
		}

		desc := strings.TrimSpace(description)
		if desc == "" {
			desc = "Fee on invoice " + inv.InvoiceNumber
		}
		now := s.Now()
		entry, err = s.accounting.Post(ctx, portssvc.PostingRequest{
			Type:        domain.PostingFeeIncome,
			Amount:      amount,
			InvoiceID:   inv.InvoiceID,
			Description: desc,
			SellerOrgID: inv.SellerOrgID,
			BuyerOrgID:  inv.BuyerOrgID,
			PostedBy:    by,
		})
		if err != nil {
			return err
		}
		return s.recordRepo.SaveTransactionRecord(ctx, domain.TransactionRecord{
			RecordID:        uuid.NewString(),
			Type:            domain.RecordFee,
			OrganizationID:  inv.SellerOrgID,
			InvoiceID:       inv.InvoiceID,
			Description:     desc,
			Amount:          amount,
			TransactionDate: now,
			MaturityDate:    inv.DueDate,
			AuditFields:     domain.NewAuditFields(by.UserID, now),
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to charge fee", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	return entry, nil
}

// GetInvoice retrieves an invoice by ID.
func (s *invoiceService) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.LogError(ctx, err, "Failed to get invoice", slog.String("invoice_id", invoiceID))
		}
		return nil, err
	}
	return inv, nil
}

// ListInvoices returns a page of invoices matching the filter.
func (s *invoiceService) ListInvoices(ctx context.Context, params dto.ListInvoicesParams) (*dto.ListInvoicesResponse, error) {
	filter := portsrepo.InvoiceFilter{OrganizationID: params.OrganizationID}
	if params.Status != "" {
		status := domain.InvoiceStatus(strings.ToUpper(params.Status))
		if !status.IsValid() {
			return nil, apperrors.NewValidationError("status", fmt.Sprintf("unknown invoice status %q", params.Status))
		}
		filter.Status = &status
	}

	limit := pagination.NormalizeLimit(params.Limit, maxInvoicePageSize)
	invoices, next, err := s.invoiceRepo.ListInvoices(ctx, filter, limit, params.NextToken)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to list invoices", slog.String("organization_id", params.OrganizationID))
		}
		return nil, err
	}
	return &dto.ListInvoicesResponse{
		Invoices:  dto.ToInvoiceResponses(invoices),
		NextToken: next,
	}, nil
}

func newEvent(kind domain.EventKind, inv domain.Invoice, targetOrgID string, now time.Time, payload map[string]string) domain.DomainEvent {
	return domain.DomainEvent{
		EventID:     uuid.NewString(),
		Kind:        kind,
		InvoiceID:   inv.InvoiceID,
		TargetOrgID: targetOrgID,
		Payload:     payload,
		OccurredAt:  now,
	}
}

// partyEvents addresses one event to each distinct party of the invoice.
func partyEvents(kind domain.EventKind, inv domain.Invoice, now time.Time, payload map[string]string) []domain.DomainEvent {
	events := []domain.DomainEvent{newEvent(kind, inv, inv.SellerOrgID, now, payload)}
	if inv.BuyerOrgID != inv.SellerOrgID {
		events = append(events, newEvent(kind, inv, inv.BuyerOrgID, now, payload))
	}
	return events
}
