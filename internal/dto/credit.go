package dto

import (
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateFacilityRequest defines the data needed to grant a credit facility.
type CreateFacilityRequest struct {
	OrganizationID string          `json:"organizationID" binding:"required"`
	FacilityType   string          `json:"facilityType" binding:"required"`
	Limit          decimal.Decimal `json:"limit" binding:"decimal_gt0,money"`
}

// FacilityResponse defines the data returned for a credit facility.
type FacilityResponse struct {
	FacilityID     string          `json:"facilityID"`
	OrganizationID string          `json:"organizationID"`
	FacilityType   string          `json:"facilityType"`
	Limit          decimal.Decimal `json:"limit"`
	Utilized       decimal.Decimal `json:"utilized"`
	Available      decimal.Decimal `json:"available"`
	IsActive       bool            `json:"isActive"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt"`
}

// ToFacilityResponse converts a domain.CreditFacility to FacilityResponse DTO.
func ToFacilityResponse(f *domain.CreditFacility) FacilityResponse {
	return FacilityResponse{
		FacilityID:     f.FacilityID,
		OrganizationID: f.OrganizationID,
		FacilityType:   string(f.FacilityType),
		Limit:          f.Limit,
		Utilized:       f.Utilized,
		Available:      f.Available(),
		IsActive:       f.IsActive,
		LastUpdatedAt:  f.LastUpdatedAt,
	}
}

// ToFacilityResponses converts a slice of domain.CreditFacility to []FacilityResponse.
func ToFacilityResponses(facilities []domain.CreditFacility) []FacilityResponse {
	responses := make([]FacilityResponse, len(facilities))
	for i := range facilities {
		responses[i] = ToFacilityResponse(&facilities[i])
	}
	return responses
}
