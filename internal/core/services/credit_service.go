package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/invoice_finance_app/internal/apperrors"
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/invoice_finance_app/internal/core/ports/services"
	"github.com/SscSPs/invoice_finance_app/internal/dto"
	"github.com/shopspring/decimal"
)

// lifecycleFacility is the facility type invoice funding draws on.
const lifecycleFacility = domain.FacilityInvoiceFinancing

// creditService enforces credit facility limits.
type creditService struct {
	BaseService
	uow          portsrepo.UnitOfWork
	facilityRepo portsrepo.CreditFacilityRepositoryFacade
	orgRepo      portsrepo.OrganizationReader
}

// CreditServiceOption is a functional option for configuring the credit service
type CreditServiceOption func(*creditService)

// WithCreditClock overrides the clock used for audit stamps.
func WithCreditClock(clock func() time.Time) CreditServiceOption {
	return func(s *creditService) {
		s.Clock = clock
	}
}

// NewCreditService creates the credit enforcement service.
func NewCreditService(uow portsrepo.UnitOfWork, facilityRepo portsrepo.CreditFacilityRepositoryFacade, orgRepo portsrepo.OrganizationReader, options ...CreditServiceOption) portssvc.CreditSvcFacade {
	svc := &creditService{
		uow:          uow,
		facilityRepo: facilityRepo,
		orgRepo:      orgRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.CreditSvcFacade = (*creditService)(nil)

// CheckAvailable is an advisory read. An organization without a facility has nothing available.
func (s *creditService) CheckAvailable(ctx context.Context, organizationID string, amount decimal.Decimal) (bool, error) {
	facility, err := s.facilityRepo.FindActiveFacility(ctx, organizationID, lifecycleFacility)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return false, nil
		}
		s.LogError(ctx, err, "Failed to read credit facility", slog.String("organization_id", organizationID))
		return false, err
	}
	return facility.Available().GreaterThanOrEqual(amount), nil
}

// Reserve increases utilization under a row lock.
func (s *creditService) Reserve(ctx context.Context, organizationID string, amount decimal.Decimal, by domain.Principal) error {
	if !amount.IsPositive() {
		return apperrors.NewValidationError("amount", "reserve amount must be greater than zero")
	}

	return s.uow.RunInTx(ctx, func(ctx context.Context) error {
		facility, err := s.facilityRepo.FindActiveFacilityForUpdate(ctx, organizationID, lifecycleFacility)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return &apperrors.CreditLimitExceededError{
					OrganizationID: organizationID,
					Available:      decimal.Zero,
					Requested:      amount,
				}
			}
			return err
		}

		newUtilized := facility.Utilized.Add(amount)
		if newUtilized.GreaterThan(facility.Limit) {
			s.LogInfo(ctx, "Credit reservation refused",
				slog.String("organization_id", organizationID),
				slog.String("available", facility.Available().String()),
				slog.String("requested", amount.String()))
			return &apperrors.CreditLimitExceededError{
				OrganizationID: organizationID,
				Available:      facility.Available(),
				Requested:      amount,
			}
		}
		return s.facilityRepo.UpdateFacilityUtilization(ctx, facility.FacilityID, newUtilized, by.UserID, s.Now())
	})
}

// Release decreases utilization, flooring at zero. A missing facility is not an error.
func (s *creditService) Release(ctx context.Context, organizationID string, amount decimal.Decimal, by domain.Principal) error {
	if !amount.IsPositive() {
		return apperrors.NewValidationError("amount", "release amount must be greater than zero")
	}

	return s.uow.RunInTx(ctx, func(ctx context.Context) error {
		facility, err := s.facilityRepo.FindActiveFacilityForUpdate(ctx, organizationID, lifecycleFacility)
		if err != nil {
			if apperrors.IsNotFound(err) {
				s.LogInfo(ctx, "No active facility to release against", slog.String("organization_id", organizationID))
				return nil
			}
			return err
		}

		newUtilized := facility.Utilized.Sub(amount)
		if newUtilized.IsNegative() {
			newUtilized = decimal.Zero
		}
		return s.facilityRepo.UpdateFacilityUtilization(ctx, facility.FacilityID, newUtilized, by.UserID, s.Now())
	})
}

func isBank(p domain.Principal) bool {
	return p.Role == domain.RoleBankOperator || p.Role == domain.RoleSystem
}

// CreateFacility grants a new facility. Only bank operators may do so.
func (s *creditService) CreateFacility(ctx context.Context, req dto.CreateFacilityRequest, by domain.Principal) (*domain.CreditFacility, error) {
	if !isBank(by) {
		return nil, fmt.Errorf("%w: only bank operators may grant facilities", apperrors.ErrForbidden)
	}
	facilityType := domain.FacilityType(req.FacilityType)
	if !facilityType.IsValid() {
		return nil, apperrors.NewValidationError("facilityType", fmt.Sprintf("unknown facility type %q", req.FacilityType))
	}
	if !req.Limit.IsPositive() {
		return nil, apperrors.NewValidationError("limit", "limit must be greater than zero")
	}
	if !domain.IsMoney(req.Limit) {
		return nil, apperrors.NewValidationError("limit", "limit cannot have more than 2 decimal places")
	}
	if _, err := s.orgRepo.FindOrganizationByID(ctx, req.OrganizationID); err != nil {
		return nil, err
	}

	now := s.Now()
	facility := domain.CreditFacility{
		FacilityID:     uuid.NewString(),
		OrganizationID: req.OrganizationID,
		FacilityType:   facilityType,
		Limit:          req.Limit,
		Utilized:       decimal.Zero,
		IsActive:       true,
		AuditFields:    domain.NewAuditFields(by.UserID, now),
	}
	if err := s.facilityRepo.SaveFacility(ctx, facility); err != nil {
		s.LogError(ctx, err, "Failed to save credit facility",
			slog.String("organization_id", req.OrganizationID),
			slog.String("facility_type", req.FacilityType))
		return nil, err
	}

	s.LogInfo(ctx, "Credit facility created",
		slog.String("facility_id", facility.FacilityID),
		slog.String("organization_id", facility.OrganizationID),
		slog.String("limit", facility.Limit.String()))
	return &facility, nil
}

// GetFacility returns the organization's invoice financing facility.
func (s *creditService) GetFacility(ctx context.Context, organizationID string) (*domain.CreditFacility, error) {
	return s.facilityRepo.FindActiveFacility(ctx, organizationID, lifecycleFacility)
}

// ListFacilities returns every facility of the organization.
func (s *creditService) ListFacilities(ctx context.Context, organizationID string) ([]domain.CreditFacility, error) {
	return s.facilityRepo.ListFacilitiesByOrganization(ctx, organizationID)
}

// ListAllFacilities returns every organization's facilities. Bank only.
func (s *creditService) ListAllFacilities(ctx context.Context, by domain.Principal) ([]domain.CreditFacility, error) {
	if !isBank(by) {
		return nil, fmt.Errorf("%w: only bank operators may view all facilities", apperrors.ErrForbidden)
	}
	facilities, err := s.facilityRepo.ListAllFacilities(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list all facilities")
		return nil, err
	}
	return facilities, nil
}
