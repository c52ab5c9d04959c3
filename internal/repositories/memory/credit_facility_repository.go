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

type creditFacilityRepository struct {
	s *Store
}

var _ portsrepo.CreditFacilityRepositoryFacade = (*creditFacilityRepository)(nil)

func (r *creditFacilityRepository) SaveFacility(ctx context.Context, facility domain.CreditFacility) error {
	return r.s.mutate(ctx, func() error {
		if _, exists := r.s.facilities[facility.FacilityID]; exists {
			return fmt.Errorf("facility %s: %w", facility.FacilityID, apperrors.ErrDuplicate)
		}
		if facility.IsActive {
			if _, ok := r.s.activeFacility(facility.OrganizationID, facility.FacilityType); ok {
				return fmt.Errorf("active %s facility for organization %s: %w", facility.FacilityType, facility.OrganizationID, apperrors.ErrDuplicate)
			}
		}
		r.s.facilities[facility.FacilityID] = facility
		return nil
	})
}

func (r *creditFacilityRepository) FindActiveFacility(_ context.Context, organizationID string, facilityType domain.FacilityType) (*domain.CreditFacility, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.activeFacility(organizationID, facilityType)
	if !ok {
		return nil, fmt.Errorf("%s facility for organization %s: %w", facilityType, organizationID, apperrors.ErrNotFound)
	}
	return &f, nil
}

func (r *creditFacilityRepository) FindActiveFacilityForUpdate(ctx context.Context, organizationID string, facilityType domain.FacilityType) (*domain.CreditFacility, error) {
	if err := requireUnit(ctx, r.s, "lock facility"); err != nil {
		return nil, err
	}
	return r.FindActiveFacility(ctx, organizationID, facilityType)
}

func (r *creditFacilityRepository) ListFacilitiesByOrganization(_ context.Context, organizationID string) ([]domain.CreditFacility, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []domain.CreditFacility{}
	for _, f := range r.s.facilities {
		if f.OrganizationID == organizationID {
			result = append(result, f)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *creditFacilityRepository) ListAllFacilities(_ context.Context) ([]domain.CreditFacility, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]domain.CreditFacility, 0, len(r.s.facilities))
	for _, f := range r.s.facilities {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].OrganizationID != result[j].OrganizationID {
			return result[i].OrganizationID < result[j].OrganizationID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *creditFacilityRepository) UpdateFacilityUtilization(ctx context.Context, facilityID string, utilized decimal.Decimal, userID string, now time.Time) error {
	return r.s.mutate(ctx, func() error {
		f, ok := r.s.facilities[facilityID]
		if !ok {
			return fmt.Errorf("facility %s: %w", facilityID, apperrors.ErrNotFound)
		}
		// Same bound the table's check constraint enforces.
		if utilized.IsNegative() || utilized.GreaterThan(f.Limit) {
			return apperrors.NewPersistenceError("update utilization of facility "+facilityID,
				fmt.Errorf("utilized %s outside [0, %s]", utilized.StringFixed(2), f.Limit.StringFixed(2)))
		}
		f.Utilized = utilized
		f.Touch(userID, now)
		r.s.facilities[facilityID] = f
		return nil
	})
}

// activeFacility must be called with s.mu held.
func (s *Store) activeFacility(organizationID string, facilityType domain.FacilityType) (domain.CreditFacility, bool) {
	for _, f := range s.facilities {
		if f.IsActive && f.OrganizationID == organizationID && f.FacilityType == facilityType {
			return f, true
		}
	}
	return domain.CreditFacility{}, false
}
