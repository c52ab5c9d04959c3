package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreditFacilityReader defines read operations for credit facilities
type CreditFacilityReader interface {
	// FindActiveFacility returns the organization's active facility of the given type.
	FindActiveFacility(ctx context.Context, organizationID string, facilityType domain.FacilityType) (*domain.CreditFacility, error)

	ListFacilitiesByOrganization(ctx context.Context, organizationID string) ([]domain.CreditFacility, error)

	// ListAllFacilities returns every facility ordered by organization.
	ListAllFacilities(ctx context.Context) ([]domain.CreditFacility, error)
}

// CreditFacilityWriter defines write operations for credit facilities
type CreditFacilityWriter interface {
	SaveFacility(ctx context.Context, facility domain.CreditFacility) error

	// FindActiveFacilityForUpdate reads the facility and locks it for the rest of the unit of work.
	FindActiveFacilityForUpdate(ctx context.Context, organizationID string, facilityType domain.FacilityType) (*domain.CreditFacility, error)

	// UpdateFacilityUtilization sets the utilized amount of a facility.
	UpdateFacilityUtilization(ctx context.Context, facilityID string, utilized decimal.Decimal, userID string, now time.Time) error
}

// CreditFacilityRepositoryFacade combines all credit facility repository interfaces
type CreditFacilityRepositoryFacade interface {
	CreditFacilityReader
	CreditFacilityWriter
}
