package services

import (
	"context"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	"github.com/SscSPs/invoice_finance_app/internal/dto"
	"github.com/shopspring/decimal"
)

// CreditEnforcer gates funding on available limit.
type CreditEnforcer interface {
	// CheckAvailable reports whether limit minus utilized covers amount. Advisory only.
	CheckAvailable(ctx context.Context, organizationID string, amount decimal.Decimal) (bool, error)

	// Reserve re-reads the facility under lock and increases utilization,
	// failing with a CreditLimitExceededError if the limit would be exceeded.
	Reserve(ctx context.Context, organizationID string, amount decimal.Decimal, by domain.Principal) error

	// Release decreases utilization, flooring at zero.
	Release(ctx context.Context, organizationID string, amount decimal.Decimal, by domain.Principal) error
}

// CreditFacilitySvc manages facilities administratively.
type CreditFacilitySvc interface {
	CreateFacility(ctx context.Context, req dto.CreateFacilityRequest, by domain.Principal) (*domain.CreditFacility, error)
	GetFacility(ctx context.Context, organizationID string) (*domain.CreditFacility, error)
	ListFacilities(ctx context.Context, organizationID string) ([]domain.CreditFacility, error)

	// ListAllFacilities is the bank-wide limits view.
	ListAllFacilities(ctx context.Context, by domain.Principal) ([]domain.CreditFacility, error)
}

// CreditSvcFacade combines enforcement and administration.
type CreditSvcFacade interface {
	CreditEnforcer
	CreditFacilitySvc
}
