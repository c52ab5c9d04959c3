package models

import "github.com/shopspring/decimal"

// CreditFacility represents a row of credit_facilities.
type CreditFacility struct {
	FacilityID     string          `db:"facility_id"`
	OrganizationID string          `db:"organization_id"`
	FacilityType   string          `db:"facility_type"`
	CreditLimit    decimal.Decimal `db:"credit_limit"`
	Utilized       decimal.Decimal `db:"utilized_amount"`
	IsActive       bool            `db:"is_active"`
	AuditFields
}

// Organization represents a row of organizations.
type Organization struct {
	OrganizationID string `db:"organization_id"`
	Name           string `db:"name"`
	IsBuyer        bool   `db:"is_buyer"`
	IsSeller       bool   `db:"is_seller"`
	IsBank         bool   `db:"is_bank"`
	AuditFields
}
