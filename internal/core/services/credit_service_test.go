package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/apperrors"
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_finance_app/internal/core/ports/services"
	"github.com/SscSPs/invoice_finance_app/internal/core/services"
	"github.com/SscSPs/invoice_finance_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CreditServiceTestSuite struct {
	suite.Suite
	uow          *MockUnitOfWork
	facilityRepo *MockCreditFacilityRepository
	orgRepo      *MockOrganizationRepository
	service      portssvc.CreditSvcFacade
	ctx          context.Context
	now          time.Time
	operator     domain.Principal
}

func (suite *CreditServiceTestSuite) SetupTest() {
	suite.uow = new(MockUnitOfWork)
	suite.facilityRepo = new(MockCreditFacilityRepository)
	suite.orgRepo = new(MockOrganizationRepository)
	suite.ctx = context.Background()
	suite.now = time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	suite.operator = domain.Principal{UserID: "op-1", Role: domain.RoleBankOperator}

	suite.uow.On("RunInTx", mock.Anything).Return()
	suite.service = services.NewCreditService(suite.uow, suite.facilityRepo, suite.orgRepo,
		services.WithCreditClock(func() time.Time { return suite.now }))
}

func (suite *CreditServiceTestSuite) facility(limit, utilized int64) *domain.CreditFacility {
	return &domain.CreditFacility{
		FacilityID:     "fac-1",
		OrganizationID: "org-1",
		FacilityType:   domain.FacilityInvoiceFinancing,
		Limit:          decimal.NewFromInt(limit),
		Utilized:       decimal.NewFromInt(utilized),
		IsActive:       true,
	}
}

func (suite *CreditServiceTestSuite) TestCheckAvailable() {
	suite.facilityRepo.On("FindActiveFacility", mock.Anything, "org-1", domain.FacilityInvoiceFinancing).
		Return(suite.facility(50000, 45000), nil)
	suite.facilityRepo.On("FindActiveFacility", mock.Anything, "org-none", domain.FacilityInvoiceFinancing).
		Return(nil, apperrors.ErrNotFound)

	ok, err := suite.service.CheckAvailable(suite.ctx, "org-1", decimal.NewFromInt(5000))
	suite.NoError(err)
	suite.True(ok)

	ok, err = suite.service.CheckAvailable(suite.ctx, "org-1", decimal.NewFromInt(5001))
	suite.NoError(err)
	suite.False(ok)

	ok, err = suite.service.CheckAvailable(suite.ctx, "org-none", decimal.NewFromInt(1))
	suite.NoError(err)
	suite.False(ok)
}

func (suite *CreditServiceTestSuite) TestReserve_Success() {
	suite.facilityRepo.On("FindActiveFacilityForUpdate", mock.Anything, "org-1", domain.FacilityInvoiceFinancing).
		Return(suite.facility(50000, 10000), nil).Once()
	suite.facilityRepo.On("UpdateFacilityUtilization", mock.Anything, "fac-1",
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(22345)) }),
		"op-1", suite.now).Return(nil).Once()

	err := suite.service.Reserve(suite.ctx, "org-1", decimal.NewFromInt(12345), suite.operator)

	suite.NoError(err)
	suite.facilityRepo.AssertExpectations(suite.T())
}

func (suite *CreditServiceTestSuite) TestReserve_ExactlyToLimit() {
	suite.facilityRepo.On("FindActiveFacilityForUpdate", mock.Anything, "org-1", domain.FacilityInvoiceFinancing).
		Return(suite.facility(50000, 40000), nil).Once()
	suite.facilityRepo.On("UpdateFacilityUtilization", mock.Anything, "fac-1",
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(50000)) }),
		"op-1", suite.now).Return(nil).Once()

	suite.NoError(suite.service.Reserve(suite.ctx, "org-1", decimal.NewFromInt(10000), suite.operator))
}

func (suite *CreditServiceTestSuite) TestReserve_ExceedsLimit() {
	suite.facilityRepo.On("FindActiveFacilityForUpdate", mock.Anything, "org-1", domain.FacilityInvoiceFinancing).
		Return(suite.facility(50000, 45000), nil).Once()

	err := suite.service.Reserve(suite.ctx, "org-1", decimal.NewFromInt(10000), suite.operator)

	var creditErr *apperrors.CreditLimitExceededError
	suite.Require().True(errors.As(err, &creditErr))
	suite.Equal("org-1", creditErr.OrganizationID)
	suite.True(creditErr.Available.Equal(decimal.NewFromInt(5000)))
	suite.True(creditErr.Requested.Equal(decimal.NewFromInt(10000)))
	suite.facilityRepo.AssertNotCalled(suite.T(), "UpdateFacilityUtilization", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CreditServiceTestSuite) TestReserve_NoFacility() {
	suite.facilityRepo.On("FindActiveFacilityForUpdate", mock.Anything, "org-1", domain.FacilityInvoiceFinancing).
		Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.Reserve(suite.ctx, "org-1", decimal.NewFromInt(1), suite.operator)

	var creditErr *apperrors.CreditLimitExceededError
	suite.Require().True(errors.As(err, &creditErr))
	suite.True(creditErr.Available.IsZero())
}

func (suite *CreditServiceTestSuite) TestReserve_NonPositiveAmount() {
	err := suite.service.Reserve(suite.ctx, "org-1", decimal.Zero, suite.operator)
	suite.True(apperrors.IsValidation(err))
	suite.uow.AssertNotCalled(suite.T(), "RunInTx", mock.Anything)
}

func (suite *CreditServiceTestSuite) TestRelease_FloorsAtZero() {
	suite.facilityRepo.On("FindActiveFacilityForUpdate", mock.Anything, "org-1", domain.FacilityInvoiceFinancing).
		Return(suite.facility(50000, 3000), nil).Once()
	suite.facilityRepo.On("UpdateFacilityUtilization", mock.Anything, "fac-1",
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.IsZero() }),
		"op-1", suite.now).Return(nil).Once()

	suite.NoError(suite.service.Release(suite.ctx, "org-1", decimal.NewFromInt(12345), suite.operator))
	suite.facilityRepo.AssertExpectations(suite.T())
}

func (suite *CreditServiceTestSuite) TestRelease_NoFacilityIsNoop() {
	suite.facilityRepo.On("FindActiveFacilityForUpdate", mock.Anything, "org-1", domain.FacilityInvoiceFinancing).
		Return(nil, apperrors.ErrNotFound).Once()

	suite.NoError(suite.service.Release(suite.ctx, "org-1", decimal.NewFromInt(100), suite.operator))
	suite.facilityRepo.AssertNotCalled(suite.T(), "UpdateFacilityUtilization", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CreditServiceTestSuite) TestCreateFacility() {
	suite.orgRepo.On("FindOrganizationByID", mock.Anything, "org-1").
		Return(&domain.Organization{OrganizationID: "org-1", IsSeller: true}, nil).Once()
	suite.facilityRepo.On("SaveFacility", mock.Anything, mock.AnythingOfType("domain.CreditFacility")).Return(nil).Once()

	facility, err := suite.service.CreateFacility(suite.ctx, dto.CreateFacilityRequest{
		OrganizationID: "org-1",
		FacilityType:   string(domain.FacilityInvoiceFinancing),
		Limit:          decimal.NewFromInt(100000),
	}, suite.operator)

	suite.Require().NoError(err)
	suite.True(facility.Utilized.IsZero())
	suite.True(facility.IsActive)
	suite.Equal(suite.now, facility.CreatedAt)
}

func (suite *CreditServiceTestSuite) TestCreateFacility_Forbidden() {
	_, err := suite.service.CreateFacility(suite.ctx, dto.CreateFacilityRequest{
		OrganizationID: "org-1",
		FacilityType:   string(domain.FacilityInvoiceFinancing),
		Limit:          decimal.NewFromInt(100000),
	}, domain.Principal{UserID: "u", OrganizationID: "org-1", Role: domain.RoleSeller})

	suite.True(apperrors.IsForbidden(err))
	suite.facilityRepo.AssertNotCalled(suite.T(), "SaveFacility", mock.Anything, mock.Anything)
}

func (suite *CreditServiceTestSuite) TestCreateFacility_InvalidInput() {
	_, err := suite.service.CreateFacility(suite.ctx, dto.CreateFacilityRequest{
		OrganizationID: "org-1",
		FacilityType:   "MORTGAGE",
		Limit:          decimal.NewFromInt(1),
	}, suite.operator)
	suite.True(apperrors.IsValidation(err))

	_, err = suite.service.CreateFacility(suite.ctx, dto.CreateFacilityRequest{
		OrganizationID: "org-1",
		FacilityType:   string(domain.FacilityTermLoan),
		Limit:          decimal.Zero,
	}, suite.operator)
	suite.True(apperrors.IsValidation(err))
}

func (suite *CreditServiceTestSuite) TestCreateFacility_SubCentLimitRejected() {
	_, err := suite.service.CreateFacility(suite.ctx, dto.CreateFacilityRequest{
		OrganizationID: "org-1",
		FacilityType:   string(domain.FacilityInvoiceFinancing),
		Limit:          decimal.RequireFromString("1000.005"),
	}, suite.operator)

	suite.True(apperrors.IsValidation(err))
	suite.orgRepo.AssertNotCalled(suite.T(), "FindOrganizationByID", mock.Anything, mock.Anything)
	suite.facilityRepo.AssertNotCalled(suite.T(), "SaveFacility", mock.Anything, mock.Anything)
}

func (suite *CreditServiceTestSuite) TestListAllFacilities() {
	other := *suite.facility(20000, 5000)
	other.FacilityID = "fac-2"
	other.OrganizationID = "org-2"
	suite.facilityRepo.On("ListAllFacilities", mock.Anything).
		Return([]domain.CreditFacility{*suite.facility(50000, 45000), other}, nil).Once()

	facilities, err := suite.service.ListAllFacilities(suite.ctx, suite.operator)

	suite.Require().NoError(err)
	suite.Require().Len(facilities, 2)
	suite.True(facilities[0].Available().Equal(decimal.NewFromInt(5000)))
	suite.True(facilities[1].Available().Equal(decimal.NewFromInt(15000)))
}

func (suite *CreditServiceTestSuite) TestListAllFacilities_Forbidden() {
	_, err := suite.service.ListAllFacilities(suite.ctx, domain.Principal{UserID: "u", OrganizationID: "org-1", Role: domain.RoleBuyer})

	suite.True(apperrors.IsForbidden(err))
	suite.facilityRepo.AssertNotCalled(suite.T(), "ListAllFacilities", mock.Anything)
}

func TestCreditServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CreditServiceTestSuite))
}
