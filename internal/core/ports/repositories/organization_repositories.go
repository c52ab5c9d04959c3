package repositories

import (
	"context"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
)

// OrganizationReader defines read operations for organizations
type OrganizationReader interface {
	FindOrganizationByID(ctx context.Context, organizationID string) (*domain.Organization, error)
}

// OrganizationWriter defines write operations for organizations
type OrganizationWriter interface {
	SaveOrganization(ctx context.Context, org domain.Organization) error
}

// OrganizationRepositoryFacade combines all organization repository interfaces
type OrganizationRepositoryFacade interface {
	OrganizationReader
	OrganizationWriter
}
