package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/apperrors"
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/invoice_finance_app/internal/core/ports/services"
	"github.com/SscSPs/invoice_finance_app/internal/core/services"
	"github.com/SscSPs/invoice_finance_app/internal/dto"
	"github.com/SscSPs/invoice_finance_app/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	sellerOrgID = "org-seller"
	buyerOrgID  = "org-buyer"
)

var errLedgerDown = errors.New("ledger unavailable")

// failingPoster delegates to the real engine except for one posting type.
type failingPoster struct {
	portssvc.AccountingPoster
	failOn domain.PostingType
}

func (p failingPoster) Post(ctx context.Context, req portssvc.PostingRequest) (*domain.JournalEntry, error) {
	if req.Type == p.failOn {
		return nil, errLedgerDown
	}
	return p.AccountingPoster.Post(ctx, req)
}

type InvoiceLifecycleTestSuite struct {
	suite.Suite
	ctx        context.Context
	now        time.Time
	store      *memory.Store
	repos      portsrepo.RepositoryProvider
	accounting portssvc.AccountingSvcFacade
	credit     portssvc.CreditSvcFacade
	service    portssvc.InvoiceSvcFacade
	operator   domain.Principal
	seller     domain.Principal
	buyer      domain.Principal
}

func (s *InvoiceLifecycleTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	s.store = memory.New()
	s.Require().NoError(s.store.Seed(s.ctx, memory.DefaultBankOrganizationID, s.now))
	s.repos = memory.NewRepositoryProvider(s.store)

	s.operator = domain.Principal{UserID: "op-1", OrganizationID: memory.DefaultBankOrganizationID, Role: domain.RoleBankOperator}
	s.seller = domain.Principal{UserID: "seller-user", OrganizationID: sellerOrgID, Role: domain.RoleSeller}
	s.buyer = domain.Principal{UserID: "buyer-user", OrganizationID: buyerOrgID, Role: domain.RoleBuyer}

	s.saveOrg(sellerOrgID, true, false)
	s.saveOrg(buyerOrgID, false, true)
	s.saveFacility(sellerOrgID, 100000, 0)
	s.saveFacility(buyerOrgID, 100000, 0)

	clock := func() time.Time { return s.now }
	s.accounting = services.NewAccountingService(s.repos.UnitOfWork, s.repos.AccountRepo, s.repos.JournalRepo,
		memory.DefaultBankOrganizationID, services.WithAccountingClock(clock))
	s.credit = services.NewCreditService(s.repos.UnitOfWork, s.repos.CreditFacilityRepo, s.repos.OrganizationRepo,
		services.WithCreditClock(clock))
	s.service = s.newService(s.accounting)
}

func (s *InvoiceLifecycleTestSuite) newService(poster portssvc.AccountingPoster) portssvc.InvoiceSvcFacade {
	return services.NewInvoiceService(s.repos, poster, s.credit,
		services.WithInvoiceAuthorizer(services.NewRolePolicy()),
		services.WithInvoiceClock(func() time.Time { return s.now }))
}

func (s *InvoiceLifecycleTestSuite) saveOrg(id string, isSeller, isBuyer bool) {
	s.Require().NoError(s.repos.OrganizationRepo.SaveOrganization(s.ctx, domain.Organization{
		OrganizationID: id,
		Name:           id,
		IsSeller:       isSeller,
		IsBuyer:        isBuyer,
		AuditFields:    domain.NewAuditFields("setup", s.now),
	}))
}

func (s *InvoiceLifecycleTestSuite) saveFacility(orgID string, limit, utilized int64) {
	s.Require().NoError(s.repos.CreditFacilityRepo.SaveFacility(s.ctx, domain.CreditFacility{
		FacilityID:     "fac-" + orgID,
		OrganizationID: orgID,
		FacilityType:   domain.FacilityInvoiceFinancing,
		Limit:          decimal.NewFromInt(limit),
		Utilized:       decimal.NewFromInt(utilized),
		IsActive:       true,
		AuditFields:    domain.NewAuditFields("setup", s.now),
	}))
}

func (s *InvoiceLifecycleTestSuite) utilized(orgID string) decimal.Decimal {
	f, err := s.repos.CreditFacilityRepo.FindActiveFacility(s.ctx, orgID, domain.FacilityInvoiceFinancing)
	s.Require().NoError(err)
	return f.Utilized
}

func (s *InvoiceLifecycleTestSuite) postingTypes(invoiceID string) []domain.PostingType {
	entries, err := s.repos.JournalRepo.ListJournalEntriesByInvoice(s.ctx, invoiceID)
	s.Require().NoError(err)
	types := make([]domain.PostingType, 0, len(entries))
	for _, e := range entries {
		types = append(types, e.PostingType)
	}
	return types
}

func (s *InvoiceLifecycleTestSuite) upload(number string, amount string, by domain.Principal) domain.Invoice {
	res, err := s.service.UploadInvoice(s.ctx, dto.UploadInvoiceRequest{
		InvoiceNumber: number,
		Amount:        decimal.RequireFromString(amount),
		CurrencyCode:  "USD",
		IssueDate:     time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		SellerOrgID:   sellerOrgID,
		BuyerOrgID:    buyerOrgID,
	}, by)
	s.Require().NoError(err)
	return res.Invoice
}

// approved uploads an invoice and takes it through validation and approval.
func (s *InvoiceLifecycleTestSuite) approved(number string, amount string) domain.Invoice {
	inv := s.upload(number, amount, s.seller)
	_, err := s.service.Validate(s.ctx, inv.InvoiceID, s.operator)
	s.Require().NoError(err)
	res, err := s.service.ApproveForFunding(s.ctx, inv.InvoiceID, s.operator)
	s.Require().NoError(err)
	return res.Invoice
}

func (s *InvoiceLifecycleTestSuite) TestUploadInvoice() {
	res, err := s.service.UploadInvoice(s.ctx, dto.UploadInvoiceRequest{
		InvoiceNumber: "INV-001",
		Amount:        decimal.NewFromInt(12345),
		CurrencyCode:  "usd",
		IssueDate:     s.now,
		DueDate:       s.now.AddDate(0, 2, 0),
		SellerOrgID:   sellerOrgID,
		BuyerOrgID:    buyerOrgID,
	}, s.seller)

	s.Require().NoError(err)
	s.Equal(domain.InvoiceUploaded, res.NewStatus)
	s.Equal(domain.OriginSeller, res.Invoice.Origin)
	s.Equal("USD", res.Invoice.CurrencyCode)
	s.Require().Len(res.Events, 1)
	s.Equal(domain.EventInvoiceUploaded, res.Events[0].Kind)
	s.Equal(buyerOrgID, res.Events[0].TargetOrgID)
	s.Empty(s.postingTypes(res.Invoice.InvoiceID))

	_, err = s.service.UploadInvoice(s.ctx, dto.UploadInvoiceRequest{
		InvoiceNumber: "INV-001",
		Amount:        decimal.NewFromInt(1),
		CurrencyCode:  "USD",
		IssueDate:     s.now,
		DueDate:       s.now,
		SellerOrgID:   sellerOrgID,
		BuyerOrgID:    buyerOrgID,
	}, s.seller)
	s.True(apperrors.IsDuplicate(err))
}

func (s *InvoiceLifecycleTestSuite) TestUploadInvoice_PartyRolesChecked() {
	req := dto.UploadInvoiceRequest{
		InvoiceNumber: "INV-002",
		Amount:        decimal.NewFromInt(10),
		CurrencyCode:  "USD",
		IssueDate:     s.now,
		DueDate:       s.now,
		SellerOrgID:   buyerOrgID,
		BuyerOrgID:    buyerOrgID,
	}
	_, err := s.service.UploadInvoice(s.ctx, req, s.operator)
	s.True(apperrors.IsValidation(err))

	req.SellerOrgID = sellerOrgID
	req.BuyerOrgID = "org-unknown"
	_, err = s.service.UploadInvoice(s.ctx, req, s.operator)
	s.True(apperrors.IsValidation(err))

	req.BuyerOrgID = buyerOrgID
	req.DueDate = s.now.AddDate(0, 0, -1)
	_, err = s.service.UploadInvoice(s.ctx, req, s.operator)
	s.True(apperrors.IsValidation(err))
}

func (s *InvoiceLifecycleTestSuite) TestUploadInvoice_ForeignPartyForbidden() {
	outsider := domain.Principal{UserID: "x", OrganizationID: "org-other", Role: domain.RoleSeller}
	_, err := s.service.UploadInvoice(s.ctx, dto.UploadInvoiceRequest{
		InvoiceNumber: "INV-003",
		Amount:        decimal.NewFromInt(10),
		CurrencyCode:  "USD",
		IssueDate:     s.now,
		DueDate:       s.now,
		SellerOrgID:   sellerOrgID,
		BuyerOrgID:    buyerOrgID,
	}, outsider)
	s.True(apperrors.IsForbidden(err))
}

func (s *InvoiceLifecycleTestSuite) TestValidateAndApprovePostMemoEntries() {
	inv := s.approved("INV-010", "12345.00")

	s.Equal(domain.InvoiceApproved, inv.Status)
	s.Equal([]domain.PostingType{domain.PostingValidation, domain.PostingApproval}, s.postingTypes(inv.InvoiceID))

	accounts, err := s.repos.AccountRepo.ListAccounts(s.ctx)
	s.Require().NoError(err)
	for _, a := range accounts {
		s.True(a.Balance.IsZero(), "account %s moved on a memo entry", a.Code)
	}
}

func (s *InvoiceLifecycleTestSuite) TestFund_PricesDiscountAndReservesCredit() {
	inv := s.approved("INV-100", "12345.00")

	res, err := s.service.Fund(s.ctx, inv.InvoiceID, decimal.NewFromInt(5), decimal.NewFromInt(3), s.operator)

	s.Require().NoError(err)
	s.Equal(domain.InvoiceFunded, res.NewStatus)
	s.Require().NotNil(res.Invoice.FundedAmount)
	s.Equal("11357.40", res.Invoice.FundedAmount.StringFixed(2))
	s.True(res.Invoice.DiscountRate.Equal(decimal.NewFromInt(8)))
	s.Equal(s.now, *res.Invoice.FundingDate)

	s.Equal([]domain.PostingType{
		domain.PostingValidation, domain.PostingApproval,
		domain.PostingFunding, domain.PostingInterestIncome, domain.PostingSellerPayment,
	}, s.postingTypes(inv.InvoiceID))

	entries, err := s.repos.JournalRepo.ListJournalEntriesByInvoice(s.ctx, inv.InvoiceID)
	s.Require().NoError(err)
	s.Equal("11357.40", entries[2].Amount.StringFixed(2))
	s.Equal("987.60", entries[3].Amount.StringFixed(2))
	for _, e := range entries {
		s.True(domain.IsBalanced(e.Lines), "entry %s is unbalanced", e.Reference)
	}

	s.True(s.utilized(sellerOrgID).Equal(decimal.NewFromInt(12345)))
	s.True(s.utilized(buyerOrgID).Equal(decimal.NewFromInt(12345)))

	records, err := s.repos.TransactionRecordRepo.ListRecordsByInvoice(s.ctx, inv.InvoiceID)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(domain.RecordFunding, records[0].Type)
	s.Equal(domain.RecordInterest, records[1].Type)

	s.Require().Len(res.Events, 2)
	for _, e := range res.Events {
		s.Equal(domain.EventInvoiceFunded, e.Kind)
		s.Equal("11357.40", e.Payload["fundedAmount"])
	}
}

func (s *InvoiceLifecycleTestSuite) TestFund_CreditLimitExceededLeavesNoTrace() {
	s.store = memory.New()
	s.Require().NoError(s.store.Seed(s.ctx, memory.DefaultBankOrganizationID, s.now))
	s.repos = memory.NewRepositoryProvider(s.store)
	s.saveOrg(sellerOrgID, true, false)
	s.saveOrg(buyerOrgID, false, true)
	s.saveFacility(sellerOrgID, 50000, 45000)
	s.saveFacility(buyerOrgID, 100000, 0)
	s.accounting = services.NewAccountingService(s.repos.UnitOfWork, s.repos.AccountRepo, s.repos.JournalRepo, memory.DefaultBankOrganizationID)
	s.credit = services.NewCreditService(s.repos.UnitOfWork, s.repos.CreditFacilityRepo, s.repos.OrganizationRepo)
	s.service = s.newService(s.accounting)

	inv := s.approved("INV-200", "10000.00")
	before := s.postingTypes(inv.InvoiceID)

	res, err := s.service.Fund(s.ctx, inv.InvoiceID, decimal.NewFromInt(5), decimal.NewFromInt(3), s.operator)

	s.Nil(res)
	var creditErr *apperrors.CreditLimitExceededError
	s.Require().True(errors.As(err, &creditErr))
	s.Equal(sellerOrgID, creditErr.OrganizationID)
	s.Equal("5000.00", creditErr.Available.StringFixed(2))
	s.Equal("10000.00", creditErr.Requested.StringFixed(2))

	s.Equal(before, s.postingTypes(inv.InvoiceID))
	s.True(s.utilized(sellerOrgID).Equal(decimal.NewFromInt(45000)))
	s.True(s.utilized(buyerOrgID).IsZero())
	current, err := s.service.GetInvoice(s.ctx, inv.InvoiceID)
	s.Require().NoError(err)
	s.Equal(domain.InvoiceApproved, current.Status)
	s.Nil(current.FundedAmount)
}

func (s *InvoiceLifecycleTestSuite) TestFund_LedgerFailureRollsBackReservations() {
	inv := s.approved("INV-210", "12345.00")
	svc := s.newService(failingPoster{AccountingPoster: s.accounting, failOn: domain.PostingInterestIncome})

	_, err := svc.Fund(s.ctx, inv.InvoiceID, decimal.NewFromInt(5), decimal.NewFromInt(3), s.operator)

	s.ErrorIs(err, errLedgerDown)
	s.Equal([]domain.PostingType{domain.PostingValidation, domain.PostingApproval}, s.postingTypes(inv.InvoiceID))
	s.True(s.utilized(sellerOrgID).IsZero())
	s.True(s.utilized(buyerOrgID).IsZero())

	records, err := s.repos.TransactionRecordRepo.ListRecordsByInvoice(s.ctx, inv.InvoiceID)
	s.Require().NoError(err)
	s.Empty(records)

	accounts, err := s.repos.AccountRepo.ListAccounts(s.ctx)
	s.Require().NoError(err)
	for _, a := range accounts {
		s.True(a.Balance.IsZero(), "account %s kept a rolled back balance", a.Code)
	}
}

func (s *InvoiceLifecycleTestSuite) TestFund_InvalidRates() {
	inv := s.approved("INV-220", "100.00")

	_, err := s.service.Fund(s.ctx, inv.InvoiceID, decimal.NewFromInt(-1), decimal.Zero, s.operator)
	s.True(apperrors.IsValidation(err))

	_, err = s.service.Fund(s.ctx, inv.InvoiceID, decimal.NewFromInt(60), decimal.NewFromInt(40), s.operator)
	s.True(apperrors.IsValidation(err))
	s.True(s.utilized(sellerOrgID).IsZero())
}

func (s *InvoiceLifecycleTestSuite) TestSubCentInputsRejected() {
	_, err := s.service.UploadInvoice(s.ctx, dto.UploadInvoiceRequest{
		InvoiceNumber: "INV-240",
		Amount:        decimal.RequireFromString("100.005"),
		CurrencyCode:  "USD",
		IssueDate:     time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		SellerOrgID:   sellerOrgID,
		BuyerOrgID:    buyerOrgID,
	}, s.seller)
	s.Require().True(apperrors.IsValidation(err))

	// Trailing zeros are fine.
	inv := s.approved("INV-240", "100.000")

	_, err = s.service.Fund(s.ctx, inv.InvoiceID, decimal.RequireFromString("3.33335"), decimal.Zero, s.operator)
	s.True(apperrors.IsValidation(err))
	_, err = s.service.Fund(s.ctx, inv.InvoiceID, decimal.NewFromInt(3), decimal.RequireFromString("0.00001"), s.operator)
	s.True(apperrors.IsValidation(err))
	s.True(s.utilized(sellerOrgID).IsZero())

	_, err = s.service.Fund(s.ctx, inv.InvoiceID, decimal.RequireFromString("3.3333"), decimal.Zero, s.operator)
	s.Require().NoError(err)

	_, err = s.service.RecordBuyerPayment(s.ctx, inv.InvoiceID, decimal.RequireFromString("0.001"), s.now, s.buyer)
	s.True(apperrors.IsValidation(err))
	_, err = s.service.ChargeFee(s.ctx, inv.InvoiceID, decimal.RequireFromString("12.345"), "", s.operator)
	s.True(apperrors.IsValidation(err))

	current, err := s.service.GetInvoice(s.ctx, inv.InvoiceID)
	s.Require().NoError(err)
	s.Equal(domain.InvoiceFunded, current.Status)
	s.NotContains(s.postingTypes(inv.InvoiceID), domain.PostingPayment)
	s.NotContains(s.postingTypes(inv.InvoiceID), domain.PostingFeeIncome)
}

func (s *InvoiceLifecycleTestSuite) TestOfferEarlyPayment_RatePrecision() {
	inv := s.upload("INV-250", "1000.00", s.buyer)
	_, err := s.service.Validate(s.ctx, inv.InvoiceID, s.operator)
	s.Require().NoError(err)
	_, err = s.service.ApproveForFunding(s.ctx, inv.InvoiceID, s.operator)
	s.Require().NoError(err)

	_, err = s.service.OfferEarlyPayment(s.ctx, inv.InvoiceID, decimal.RequireFromString("2.12345"), s.buyer)

	s.True(apperrors.IsValidation(err))
}

func (s *InvoiceLifecycleTestSuite) TestFund_SellerCannotFund() {
	inv := s.approved("INV-230", "100.00")

	_, err := s.service.Fund(s.ctx, inv.InvoiceID, decimal.NewFromInt(5), decimal.Zero, s.seller)

	s.True(apperrors.IsForbidden(err))
}

func (s *InvoiceLifecycleTestSuite) TestValidateOnFundedInvoiceIsRefused() {
	inv := s.approved("INV-300", "12345.00")
	_, err := s.service.Fund(s.ctx, inv.InvoiceID, decimal.NewFromInt(5), decimal.NewFromInt(3), s.operator)
	s.Require().NoError(err)
	before := s.postingTypes(inv.InvoiceID)

	_, err = s.service.Validate(s.ctx, inv.InvoiceID, s.operator)

	var transitionErr *apperrors.InvalidTransitionError
	s.Require().True(errors.As(err, &transitionErr))
	s.Equal(string(domain.InvoiceFunded), transitionErr.From)
	s.Equal(string(domain.InvoiceValidated), transitionErr.To)
	s.False(transitionErr.Terminal)
	s.Equal(before, s.postingTypes(inv.InvoiceID))
	s.True(s.utilized(sellerOrgID).Equal(decimal.NewFromInt(12345)))
}

func (s *InvoiceLifecycleTestSuite) TestFundThenPayRestoresCredit() {
	inv := s.approved("INV-400", "12345.00")
	_, err := s.service.Fund(s.ctx, inv.InvoiceID, decimal.NewFromInt(5), decimal.NewFromInt(3), s.operator)
	s.Require().NoError(err)

	res, err := s.service.RecordBuyerPayment(s.ctx, inv.InvoiceID, decimal.NewFromInt(12345), time.Time{}, s.buyer)

	s.Require().NoError(err)
	s.Equal(domain.InvoicePaid, res.NewStatus)
	s.Equal(s.now, *res.Invoice.PaymentDate)
	s.True(s.utilized(sellerOrgID).IsZero())
	s.True(s.utilized(buyerOrgID).IsZero())

	types := s.postingTypes(inv.InvoiceID)
	s.Equal(domain.PostingPayment, types[len(types)-1])

	records, err := s.repos.TransactionRecordRepo.ListRecordsByInvoice(s.ctx, inv.InvoiceID)
	s.Require().NoError(err)
	s.Require().Len(records, 3)
	for _, r := range records {
		if r.Type == domain.RecordFunding || r.Type == domain.RecordPayment {
			s.True(r.IsPaid, "%s record not marked paid", r.Type)
		}
	}

	reporting := services.NewReportingService(s.repos.ReportingRepo, s.repos.TransactionRecordRepo, s.repos.OrganizationRepo)
	tb, err := reporting.GetTrialBalance(s.ctx, s.now)
	s.Require().NoError(err)
	s.True(tb.TotalDebit.Equal(tb.TotalCredit))

	balances := map[string]string{}
	accounts, err := s.repos.AccountRepo.ListAccounts(s.ctx)
	s.Require().NoError(err)
	for _, a := range accounts {
		balances[a.Code] = a.Balance.StringFixed(2)
	}
	s.Equal("987.60", balances[domain.AccountCodeCash])
	s.Equal("-987.60", balances[domain.AccountCodeLoansToCustomers])
	s.Equal("987.60", balances[domain.AccountCodeAccountsReceivable])
	s.Equal("987.60", balances[domain.AccountCodeInterestIncome])
}

func (s *InvoiceLifecycleTestSuite) TestRecordBuyerPayment_RequiresFunded() {
	inv := s.approved("INV-410", "500.00")

	_, err := s.service.RecordBuyerPayment(s.ctx, inv.InvoiceID, decimal.NewFromInt(500), s.now, s.buyer)
	s.True(apperrors.IsInvalidTransition(err))

	_, err = s.service.RecordBuyerPayment(s.ctx, inv.InvoiceID, decimal.Zero, s.now, s.buyer)
	s.True(apperrors.IsValidation(err))
}

func (s *InvoiceLifecycleTestSuite) TestReject() {
	inv := s.upload("INV-500", "250.00", s.seller)

	_, err := s.service.Reject(s.ctx, inv.InvoiceID, "   ", s.operator)
	s.True(apperrors.IsValidation(err))

	res, err := s.service.Reject(s.ctx, inv.InvoiceID, "duplicate of INV-499", s.operator)
	s.Require().NoError(err)
	s.Equal(domain.InvoiceRejected, res.NewStatus)
	s.Equal("duplicate of INV-499", *res.Invoice.RejectionReason)
	s.Len(res.Events, 2)
	s.Equal([]domain.PostingType{domain.PostingRejection}, s.postingTypes(inv.InvoiceID))

	_, err = s.service.Validate(s.ctx, inv.InvoiceID, s.operator)
	var transitionErr *apperrors.InvalidTransitionError
	s.Require().True(errors.As(err, &transitionErr))
	s.True(transitionErr.Terminal)
	s.Contains(err.Error(), "is final")
}

func (s *InvoiceLifecycleTestSuite) TestEarlyPaymentPath() {
	inv := s.upload("INV-600", "10000.00", s.buyer)
	s.Equal(domain.OriginBuyer, inv.Origin)
	_, err := s.service.Validate(s.ctx, inv.InvoiceID, s.operator)
	s.Require().NoError(err)
	_, err = s.service.ApproveForFunding(s.ctx, inv.InvoiceID, s.operator)
	s.Require().NoError(err)

	_, err = s.service.OfferEarlyPayment(s.ctx, inv.InvoiceID, decimal.NewFromInt(2), s.seller)
	s.True(apperrors.IsForbidden(err))

	offer, err := s.service.OfferEarlyPayment(s.ctx, inv.InvoiceID, decimal.NewFromInt(2), s.buyer)
	s.Require().NoError(err)
	s.Equal(domain.InvoicePendingSellerApproval, offer.NewStatus)
	s.True(offer.Invoice.BuyerApproved)
	s.Require().Len(offer.Events, 1)
	s.Equal(sellerOrgID, offer.Events[0].TargetOrgID)
	s.Equal("9800.00", offer.Events[0].Payload["netAmount"])

	accepted, err := s.service.AcceptEarlyPaymentOffer(s.ctx, inv.InvoiceID, s.seller)
	s.Require().NoError(err)
	s.Equal(domain.InvoiceSellerApproved, accepted.NewStatus)
	s.True(accepted.Invoice.SellerAccepted)

	_, err = s.service.Fund(s.ctx, inv.InvoiceID, decimal.NewFromInt(5), decimal.NewFromInt(3), s.operator)
	s.True(apperrors.IsValidation(err))

	funded, err := s.service.Fund(s.ctx, inv.InvoiceID, decimal.Zero, decimal.Zero, s.operator)
	s.Require().NoError(err)
	s.Equal("9800.00", funded.Invoice.FundedAmount.StringFixed(2))
}

func (s *InvoiceLifecycleTestSuite) TestRejectEarlyPaymentOfferReturnsToApproved() {
	inv := s.upload("INV-610", "10000.00", s.buyer)
	_, err := s.service.Validate(s.ctx, inv.InvoiceID, s.operator)
	s.Require().NoError(err)
	_, err = s.service.ApproveForFunding(s.ctx, inv.InvoiceID, s.operator)
	s.Require().NoError(err)
	_, err = s.service.OfferEarlyPayment(s.ctx, inv.InvoiceID, decimal.NewFromInt(2), s.buyer)
	s.Require().NoError(err)

	res, err := s.service.RejectEarlyPaymentOffer(s.ctx, inv.InvoiceID, s.seller)

	s.Require().NoError(err)
	s.Equal(domain.InvoiceApproved, res.NewStatus)
	s.Nil(res.Invoice.DiscountRate)
	s.Equal(buyerOrgID, res.Events[0].TargetOrgID)
}

func (s *InvoiceLifecycleTestSuite) TestOfferEarlyPayment_SellerOriginRefused() {
	inv := s.approved("INV-620", "1000.00")

	_, err := s.service.OfferEarlyPayment(s.ctx, inv.InvoiceID, decimal.NewFromInt(2), s.operator)

	s.True(apperrors.IsValidation(err))
	current, err := s.service.GetInvoice(s.ctx, inv.InvoiceID)
	s.Require().NoError(err)
	s.Equal(domain.InvoiceApproved, current.Status)
}

func (s *InvoiceLifecycleTestSuite) TestChargeFee() {
	inv := s.approved("INV-700", "1000.00")

	_, err := s.service.ChargeFee(s.ctx, inv.InvoiceID, decimal.NewFromInt(25), "", s.operator)
	s.True(apperrors.IsInvalidTransition(err))

	_, err = s.service.Fund(s.ctx, inv.InvoiceID, decimal.NewFromInt(1), decimal.Zero, s.operator)
	s.Require().NoError(err)

	entry, err := s.service.ChargeFee(s.ctx, inv.InvoiceID, decimal.NewFromInt(25), "processing fee", s.operator)
	s.Require().NoError(err)
	s.Equal(domain.PostingFeeIncome, entry.PostingType)
	s.Equal("processing fee", entry.Description)

	records, err := s.repos.TransactionRecordRepo.ListRecordsByInvoice(s.ctx, inv.InvoiceID)
	s.Require().NoError(err)
	s.Equal(domain.RecordFee, records[len(records)-1].Type)

	current, err := s.service.GetInvoice(s.ctx, inv.InvoiceID)
	s.Require().NoError(err)
	s.Equal(domain.InvoiceFunded, current.Status)
}

func (s *InvoiceLifecycleTestSuite) TestListInvoices() {
	s.upload("INV-800", "10.00", s.seller)
	second := s.approved("INV-801", "20.00")

	page, err := s.service.ListInvoices(s.ctx, dto.ListInvoicesParams{OrganizationID: buyerOrgID, Status: "approved", Limit: 10})
	s.Require().NoError(err)
	s.Require().Len(page.Invoices, 1)
	s.Equal(second.InvoiceID, page.Invoices[0].InvoiceID)

	_, err = s.service.ListInvoices(s.ctx, dto.ListInvoicesParams{Status: "SETTLED"})
	s.True(apperrors.IsValidation(err))
}

func (s *InvoiceLifecycleTestSuite) TestGetInvoice_NotFound() {
	_, err := s.service.GetInvoice(s.ctx, "missing")
	s.True(apperrors.IsNotFound(err))
}

func TestInvoiceLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceLifecycleTestSuite))
}

func TestConcurrentFundingNeverOverdrawsFacility(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	store := memory.New()
	require.NoError(t, store.Seed(ctx, memory.DefaultBankOrganizationID, now))
	repos := memory.NewRepositoryProvider(store)

	for _, org := range []domain.Organization{
		{OrganizationID: sellerOrgID, IsSeller: true},
		{OrganizationID: buyerOrgID, IsBuyer: true},
	} {
		require.NoError(t, repos.OrganizationRepo.SaveOrganization(ctx, org))
	}
	require.NoError(t, repos.CreditFacilityRepo.SaveFacility(ctx, domain.CreditFacility{
		FacilityID: "fac-s", OrganizationID: sellerOrgID, FacilityType: domain.FacilityInvoiceFinancing,
		Limit: decimal.NewFromInt(50000), Utilized: decimal.Zero, IsActive: true,
	}))
	require.NoError(t, repos.CreditFacilityRepo.SaveFacility(ctx, domain.CreditFacility{
		FacilityID: "fac-b", OrganizationID: buyerOrgID, FacilityType: domain.FacilityInvoiceFinancing,
		Limit: decimal.NewFromInt(500000), Utilized: decimal.Zero, IsActive: true,
	}))

	accounting := services.NewAccountingService(repos.UnitOfWork, repos.AccountRepo, repos.JournalRepo, memory.DefaultBankOrganizationID)
	credit := services.NewCreditService(repos.UnitOfWork, repos.CreditFacilityRepo, repos.OrganizationRepo)
	svc := services.NewInvoiceService(repos, accounting, credit)
	operator := domain.Principal{UserID: "op", Role: domain.RoleBankOperator}

	const n = 4
	ids := make([]string, n)
	for i := range ids {
		res, err := svc.UploadInvoice(ctx, dto.UploadInvoiceRequest{
			InvoiceNumber: "C-" + string(rune('A'+i)),
			Amount:        decimal.NewFromInt(30000),
			CurrencyCode:  "USD",
			IssueDate:     now,
			DueDate:       now.AddDate(0, 1, 0),
			SellerOrgID:   sellerOrgID,
			BuyerOrgID:    buyerOrgID,
		}, operator)
		require.NoError(t, err)
		_, err = svc.Validate(ctx, res.Invoice.InvoiceID, operator)
		require.NoError(t, err)
		_, err = svc.ApproveForFunding(ctx, res.Invoice.InvoiceID, operator)
		require.NoError(t, err)
		ids[i] = res.Invoice.InvoiceID
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = svc.Fund(ctx, id, decimal.NewFromInt(2), decimal.Zero, operator)
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperrors.IsInsufficientCredit(err), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)

	f, err := repos.CreditFacilityRepo.FindActiveFacility(ctx, sellerOrgID, domain.FacilityInvoiceFinancing)
	require.NoError(t, err)
	assert.True(t, f.Utilized.Equal(decimal.NewFromInt(30000)))
}
