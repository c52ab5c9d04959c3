package domain

import "github.com/shopspring/decimal"

// FacilityType classifies a credit facility.
type FacilityType string

const (
	FacilityInvoiceFinancing FacilityType = "INVOICE_FINANCING"
	FacilityTradeFinance     FacilityType = "TRADE_FINANCE"
	FacilityWorkingCapital   FacilityType = "WORKING_CAPITAL"
	FacilityTermLoan         FacilityType = "TERM_LOAN"
)

// IsValid reports whether t is a known facility type.
func (t FacilityType) IsValid() bool {
	switch t {
	case FacilityInvoiceFinancing, FacilityTradeFinance, FacilityWorkingCapital, FacilityTermLoan:
		return true
	}
	return false
}

// CreditFacility is a revolving limit granted to one organization.
// Invariant: 0 <= Utilized <= Limit.
type CreditFacility struct {
	FacilityID     string          `json:"facilityID"`
	OrganizationID string          `json:"organizationID"`
	FacilityType   FacilityType    `json:"facilityType"`
	Limit          decimal.Decimal `json:"limit"`
	Utilized       decimal.Decimal `json:"utilized"`
	IsActive       bool            `json:"isActive"`
	AuditFields
}

// Available is the unused portion of the limit.
func (f CreditFacility) Available() decimal.Decimal {
	return f.Limit.Sub(f.Utilized)
}
