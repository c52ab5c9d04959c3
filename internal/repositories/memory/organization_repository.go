package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/invoice_finance_app/internal/apperrors"
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
)

type organizationRepository struct {
	s *Store
}

var _ portsrepo.OrganizationRepositoryFacade = (*organizationRepository)(nil)

func (r *organizationRepository) SaveOrganization(ctx context.Context, org domain.Organization) error {
	return r.s.mutate(ctx, func() error {
		if _, exists := r.s.organizations[org.OrganizationID]; exists {
			return fmt.Errorf("organization %s: %w", org.OrganizationID, apperrors.ErrDuplicate)
		}
		r.s.organizations[org.OrganizationID] = org
		return nil
	})
}

func (r *organizationRepository) FindOrganizationByID(_ context.Context, organizationID string) (*domain.Organization, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	org, ok := r.s.organizations[organizationID]
	if !ok {
		return nil, fmt.Errorf("organization %s: %w", organizationID, apperrors.ErrNotFound)
	}
	return &org, nil
}
