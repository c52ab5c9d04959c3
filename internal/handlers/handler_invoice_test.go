package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
	"github.com/SscSPs/invoice_finance_app/internal/core/services"
	"github.com/SscSPs/invoice_finance_app/internal/dto"
	"github.com/SscSPs/invoice_finance_app/internal/handlers"
	"github.com/SscSPs/invoice_finance_app/internal/middleware"
	"github.com/SscSPs/invoice_finance_app/internal/platform/config"
	"github.com/SscSPs/invoice_finance_app/internal/repositories/memory"
	"github.com/SscSPs/invoice_finance_app/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const (
	testSecret  = "handler-test-secret"
	testIssuer  = "handler-test"
	sellerOrgID = "org-seller"
	buyerOrgID  = "org-buyer"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []domain.DomainEvent
}

func (d *recordingDispatcher) Dispatch(_ context.Context, events []domain.DomainEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, events...)
}

func (d *recordingDispatcher) kinds() []domain.EventKind {
	d.mu.Lock()
	defer d.mu.Unlock()
	kinds := make([]domain.EventKind, len(d.events))
	for i, e := range d.events {
		kinds[i] = e.Kind
	}
	return kinds
}

type errorBody struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details"`
}

type InvoiceHandlerTestSuite struct {
	suite.Suite
	ctx        context.Context
	router     *gin.Engine
	repos      portsrepo.RepositoryProvider
	dispatcher *recordingDispatcher

	operatorToken string
	sellerToken   string
	buyerToken    string
}

func TestInvoiceHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceHandlerTestSuite))
}

func (s *InvoiceHandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(handlers.RegisterValidators())

	s.operatorToken = s.token(domain.Principal{UserID: "op-1", OrganizationID: memory.DefaultBankOrganizationID, Role: domain.RoleBankOperator})
	s.sellerToken = s.token(domain.Principal{UserID: "seller-user", OrganizationID: sellerOrgID, Role: domain.RoleSeller})
	s.buyerToken = s.token(domain.Principal{UserID: "buyer-user", OrganizationID: buyerOrgID, Role: domain.RoleBuyer})
}

func (s *InvoiceHandlerTestSuite) SetupTest() {
	s.setup(100000, 0)
}

// setup rebuilds the store and router with the given seller facility.
func (s *InvoiceHandlerTestSuite) setup(sellerLimit, sellerUtilized int64) {
	s.ctx = context.Background()
	now := time.Now().UTC()

	store := memory.New()
	s.Require().NoError(store.Seed(s.ctx, memory.DefaultBankOrganizationID, now))
	s.repos = memory.NewRepositoryProvider(store)
	s.saveOrg(sellerOrgID, true, false)
	s.saveOrg(buyerOrgID, false, true)
	s.saveFacility(sellerOrgID, sellerLimit, sellerUtilized)
	s.saveFacility(buyerOrgID, 100000, 0)

	cfg := &config.Config{
		JWTSecret:          testSecret,
		JWTIssuer:          testIssuer,
		IsProduction:       true,
		BankOrganizationID: memory.DefaultBankOrganizationID,
	}
	s.dispatcher = &recordingDispatcher{}
	container := services.NewServiceContainer(cfg, s.repos, s.dispatcher)

	s.router = gin.New()
	s.router.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))
	handlers.RegisterRoutes(s.router, cfg, container, nil)
}

func (s *InvoiceHandlerTestSuite) token(p domain.Principal) string {
	tok, err := utils.GenerateJWT(p, testSecret, time.Hour, testIssuer)
	s.Require().NoError(err)
	return tok
}

func (s *InvoiceHandlerTestSuite) saveOrg(id string, isSeller, isBuyer bool) {
	s.Require().NoError(s.repos.OrganizationRepo.SaveOrganization(s.ctx, domain.Organization{
		OrganizationID: id,
		Name:           id,
		IsSeller:       isSeller,
		IsBuyer:        isBuyer,
		AuditFields:    domain.NewAuditFields("setup", time.Now().UTC()),
	}))
}

func (s *InvoiceHandlerTestSuite) saveFacility(orgID string, limit, utilized int64) {
	s.Require().NoError(s.repos.CreditFacilityRepo.SaveFacility(s.ctx, domain.CreditFacility{
		FacilityID:     "fac-" + orgID,
		OrganizationID: orgID,
		FacilityType:   domain.FacilityInvoiceFinancing,
		Limit:          decimal.NewFromInt(limit),
		Utilized:       decimal.NewFromInt(utilized),
		IsActive:       true,
		AuditFields:    domain.NewAuditFields("setup", time.Now().UTC()),
	}))
}

func (s *InvoiceHandlerTestSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *InvoiceHandlerTestSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *InvoiceHandlerTestSuite) upload(number string, amount string) dto.InvoiceResponse {
	now := time.Now().UTC()
	w := s.do(http.MethodPost, "/api/v1/invoices", s.sellerToken, map[string]any{
		"invoiceNumber": number,
		"amount":        amount,
		"currencyCode":  "usd",
		"issueDate":     now.AddDate(0, 0, -1),
		"dueDate":       now.AddDate(0, 0, 60),
		"sellerOrgID":   sellerOrgID,
		"buyerOrgID":    buyerOrgID,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.TransitionResponse
	s.decode(w, &resp)
	return resp.Invoice
}

// approved uploads an invoice and walks it to APPROVED.
func (s *InvoiceHandlerTestSuite) approved(number string, amount string) dto.InvoiceResponse {
	inv := s.upload(number, amount)
	w := s.do(http.MethodPost, "/api/v1/invoices/"+inv.InvoiceID+"/validate", s.operatorToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/api/v1/invoices/"+inv.InvoiceID+"/approve", s.operatorToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	return inv
}

func (s *InvoiceHandlerTestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *InvoiceHandlerTestSuite) TestRequiresToken() {
	w := s.do(http.MethodGet, "/api/v1/invoices", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *InvoiceHandlerTestSuite) TestFundAndPayRoundTrip() {
	inv := s.approved("INV-100", "12345.00")

	w := s.do(http.MethodPost, "/api/v1/invoices/"+inv.InvoiceID+"/fund", s.operatorToken, map[string]string{
		"baseRate": "5",
		"margin":   "3",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var funded dto.TransitionResponse
	s.decode(w, &funded)
	s.Equal(string(domain.InvoiceFunded), funded.NewStatus)
	s.Require().NotNil(funded.Invoice.FundedAmount)
	s.True(funded.Invoice.FundedAmount.Equal(decimal.RequireFromString("11357.40")))

	w = s.do(http.MethodGet, "/api/v1/credit-facilities/"+sellerOrgID, s.sellerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var facility dto.FacilityResponse
	s.decode(w, &facility)
	s.True(facility.Utilized.Equal(decimal.RequireFromString("12345")))

	w = s.do(http.MethodPost, "/api/v1/invoices/"+inv.InvoiceID+"/payments", s.buyerToken, map[string]string{"amount": "12345.00"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var paid dto.TransitionResponse
	s.decode(w, &paid)
	s.Equal(string(domain.InvoicePaid), paid.NewStatus)

	w = s.do(http.MethodGet, "/api/v1/credit-facilities/"+sellerOrgID, s.sellerToken, nil)
	s.decode(w, &facility)
	s.True(facility.Utilized.IsZero())

	w = s.do(http.MethodGet, "/api/v1/ledger/journal-entries?invoiceID="+inv.InvoiceID, s.sellerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var entries dto.ListJournalEntriesResponse
	s.decode(w, &entries)
	s.NotEmpty(entries.JournalEntries)

	w = s.do(http.MethodGet, "/api/v1/reports/trial-balance", s.operatorToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var tb domain.TrialBalance
	s.decode(w, &tb)
	s.True(tb.TotalDebit.Equal(tb.TotalCredit), "debits %s credits %s", tb.TotalDebit, tb.TotalCredit)

	s.Contains(s.dispatcher.kinds(), domain.EventInvoiceFunded)
	s.Contains(s.dispatcher.kinds(), domain.EventInvoicePaid)
}

func (s *InvoiceHandlerTestSuite) TestValidateFundedInvoiceConflicts() {
	inv := s.approved("INV-200", "1000.00")
	w := s.do(http.MethodPost, "/api/v1/invoices/"+inv.InvoiceID+"/fund", s.operatorToken, map[string]string{"baseRate": "4", "margin": "1"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/invoices/"+inv.InvoiceID+"/validate", s.operatorToken, nil)
	s.Equal(http.StatusConflict, w.Code)
	var body errorBody
	s.decode(w, &body)
	s.Equal("INVALID_TRANSITION", body.Code)
	s.Equal(string(domain.InvoiceFunded), body.Details["from"])
	s.Equal(string(domain.InvoiceValidated), body.Details["to"])
}

func (s *InvoiceHandlerTestSuite) TestFundBeyondCreditLimit() {
	s.setup(50000, 45000)
	inv := s.approved("INV-300", "10000.00")

	w := s.do(http.MethodPost, "/api/v1/invoices/"+inv.InvoiceID+"/fund", s.operatorToken, map[string]string{"baseRate": "5", "margin": "3"})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	var body errorBody
	s.decode(w, &body)
	s.Equal("CREDIT_LIMIT_EXCEEDED", body.Code)
	s.Equal(sellerOrgID, body.Details["organizationID"])
	s.Equal("5000.00", body.Details["available"])
	s.Equal("10000.00", body.Details["requested"])
	s.Equal("5000.00", body.Details["shortfall"])

	w = s.do(http.MethodGet, "/api/v1/invoices/"+inv.InvoiceID, s.sellerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var current dto.InvoiceResponse
	s.decode(w, &current)
	s.Equal(string(domain.InvoiceApproved), current.Status)
}

func (s *InvoiceHandlerTestSuite) TestFundRejectsNegativeRate() {
	inv := s.approved("INV-400", "1000.00")
	w := s.do(http.MethodPost, "/api/v1/invoices/"+inv.InvoiceID+"/fund", s.operatorToken, map[string]string{"baseRate": "-1", "margin": "3"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *InvoiceHandlerTestSuite) TestUploadRejectsNonPositiveAmount() {
	now := time.Now().UTC()
	w := s.do(http.MethodPost, "/api/v1/invoices", s.sellerToken, map[string]any{
		"invoiceNumber": "INV-0",
		"amount":        "0",
		"currencyCode":  "USD",
		"issueDate":     now,
		"dueDate":       now.AddDate(0, 0, 30),
		"sellerOrgID":   sellerOrgID,
		"buyerOrgID":    buyerOrgID,
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *InvoiceHandlerTestSuite) TestDuplicateUploadConflicts() {
	s.upload("INV-500", "100.00")
	now := time.Now().UTC()
	w := s.do(http.MethodPost, "/api/v1/invoices", s.sellerToken, map[string]any{
		"invoiceNumber": "INV-500",
		"amount":        "100.00",
		"currencyCode":  "USD",
		"issueDate":     now,
		"dueDate":       now.AddDate(0, 0, 30),
		"sellerOrgID":   sellerOrgID,
		"buyerOrgID":    buyerOrgID,
	})
	s.Equal(http.StatusConflict, w.Code)
}

func (s *InvoiceHandlerTestSuite) TestRejectRequiresReason() {
	inv := s.upload("INV-600", "100.00")
	w := s.do(http.MethodPost, "/api/v1/invoices/"+inv.InvoiceID+"/reject", s.operatorToken, map[string]string{})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/invoices/"+inv.InvoiceID+"/reject", s.operatorToken, map[string]string{"reason": "duplicate billing"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.TransitionResponse
	s.decode(w, &resp)
	s.Equal(string(domain.InvoiceRejected), resp.NewStatus)

	w = s.do(http.MethodPost, "/api/v1/invoices/"+inv.InvoiceID+"/validate", s.operatorToken, nil)
	s.Equal(http.StatusConflict, w.Code)
	var body errorBody
	s.decode(w, &body)
	s.Equal("INVALID_TRANSITION", body.Code)
	s.Equal("true", body.Details["terminal"])
}

func (s *InvoiceHandlerTestSuite) TestSubCentInputsRejected() {
	now := time.Now().UTC()
	w := s.do(http.MethodPost, "/api/v1/invoices", s.sellerToken, map[string]any{
		"invoiceNumber": "INV-650",
		"amount":        "100.005",
		"currencyCode":  "USD",
		"issueDate":     now,
		"dueDate":       now.AddDate(0, 0, 30),
		"sellerOrgID":   sellerOrgID,
		"buyerOrgID":    buyerOrgID,
	})
	s.Equal(http.StatusBadRequest, w.Code, w.Body.String())

	inv := s.approved("INV-651", "100.00")
	w = s.do(http.MethodPost, "/api/v1/invoices/"+inv.InvoiceID+"/fund", s.operatorToken, map[string]string{"baseRate": "3.33335", "margin": "0"})
	s.Equal(http.StatusBadRequest, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/invoices/"+inv.InvoiceID+"/fund", s.operatorToken, map[string]string{"baseRate": "3.3333", "margin": "0"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/invoices/"+inv.InvoiceID+"/payments", s.buyerToken, map[string]string{"amount": "0.001"})
	s.Equal(http.StatusBadRequest, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/invoices/"+inv.InvoiceID, s.sellerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var current dto.InvoiceResponse
	s.decode(w, &current)
	s.Equal(string(domain.InvoiceFunded), current.Status)

	s.saveOrg("org-cents", true, false)
	w = s.do(http.MethodPost, "/api/v1/credit-facilities", s.operatorToken, map[string]string{
		"organizationID": "org-cents", "facilityType": string(domain.FacilityInvoiceFinancing), "limit": "1000.005",
	})
	s.Equal(http.StatusBadRequest, w.Code, w.Body.String())
}

func (s *InvoiceHandlerTestSuite) TestAccessControl() {
	inv := s.upload("INV-700", "100.00")

	outsider := s.token(domain.Principal{UserID: "other", OrganizationID: "org-other", Role: domain.RoleSeller})
	w := s.do(http.MethodGet, "/api/v1/invoices/"+inv.InvoiceID, outsider, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/v1/invoices/missing", s.operatorToken, nil)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/v1/invoices/"+inv.InvoiceID+"/validate", s.sellerToken, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/v1/ledger/accounts", s.sellerToken, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/v1/invoices?organizationID="+buyerOrgID, s.sellerToken, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/v1/credit-facilities/"+buyerOrgID, s.sellerToken, nil)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *InvoiceHandlerTestSuite) TestListInvoicesScopedToCaller() {
	s.upload("INV-800", "100.00")
	s.upload("INV-801", "200.00")

	w := s.do(http.MethodGet, "/api/v1/invoices?limit=1", s.sellerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var page dto.ListInvoicesResponse
	s.decode(w, &page)
	s.Len(page.Invoices, 1)
	s.Require().NotNil(page.NextToken)

	w = s.do(http.MethodGet, "/api/v1/invoices?status=bogus", s.sellerToken, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *InvoiceHandlerTestSuite) TestChargeFeeAndStatement() {
	inv := s.approved("INV-900", "5000.00")
	w := s.do(http.MethodPost, "/api/v1/invoices/"+inv.InvoiceID+"/fees", s.operatorToken, map[string]string{"amount": "25", "description": "processing"})
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/v1/invoices/"+inv.InvoiceID+"/fund", s.operatorToken, map[string]string{"baseRate": "0", "margin": "0"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/invoices/"+inv.InvoiceID+"/fees", s.operatorToken, map[string]string{"amount": "25", "description": "processing"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var entry dto.JournalEntryResponse
	s.decode(w, &entry)
	s.Equal(string(domain.PostingFeeIncome), entry.PostingType)

	today := time.Now().UTC().Format("2006-01-02")
	w = s.do(http.MethodGet, "/api/v1/reports/statements/"+sellerOrgID+"?from="+today+"&to="+today, s.sellerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var statement domain.Statement
	s.decode(w, &statement)
	s.Equal(sellerOrgID, statement.OrganizationID)
	s.NotEmpty(statement.Lines)
	s.True(statement.ClosingBalance.IsNegative())

	w = s.do(http.MethodGet, "/api/v1/reports/statements/"+buyerOrgID+"?from="+today+"&to="+today, s.sellerToken, nil)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *InvoiceHandlerTestSuite) TestCreateFacilityRequiresBank() {
	s.saveOrg("org-new", true, false)
	req := map[string]string{"organizationID": "org-new", "facilityType": string(domain.FacilityInvoiceFinancing), "limit": "25000"}

	w := s.do(http.MethodPost, "/api/v1/credit-facilities", s.sellerToken, req)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/v1/credit-facilities", s.operatorToken, req)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var facility dto.FacilityResponse
	s.decode(w, &facility)
	s.True(facility.Available.Equal(decimal.NewFromInt(25000)))
}

func (s *InvoiceHandlerTestSuite) TestListAllFacilitiesBankOnly() {
	w := s.do(http.MethodGet, "/api/v1/credit-facilities", s.sellerToken, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/v1/credit-facilities", s.operatorToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var facilities []dto.FacilityResponse
	s.decode(w, &facilities)
	s.Require().Len(facilities, 2)
	s.Equal(buyerOrgID, facilities[0].OrganizationID)
	s.Equal(sellerOrgID, facilities[1].OrganizationID)
	s.True(facilities[1].Available.Equal(decimal.NewFromInt(100000)))
}
