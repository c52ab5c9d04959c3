package mapping

import (
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	"github.com/SscSPs/invoice_finance_app/internal/models"
)

// ToModelCreditFacility converts a domain CreditFacility to a model CreditFacility
func ToModelCreditFacility(d domain.CreditFacility) models.CreditFacility {
	return models.CreditFacility{
		FacilityID:     d.FacilityID,
		OrganizationID: d.OrganizationID,
		FacilityType:   string(d.FacilityType),
		CreditLimit:    d.Limit,
		Utilized:       d.Utilized,
		IsActive:       d.IsActive,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCreditFacility converts a model CreditFacility to a domain CreditFacility
func ToDomainCreditFacility(m models.CreditFacility) domain.CreditFacility {
	return domain.CreditFacility{
		FacilityID:     m.FacilityID,
		OrganizationID: m.OrganizationID,
		FacilityType:   domain.FacilityType(m.FacilityType),
		Limit:          m.CreditLimit,
		Utilized:       m.Utilized,
		IsActive:       m.IsActive,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainOrganization converts a model Organization to a domain Organization
func ToDomainOrganization(m models.Organization) domain.Organization {
	return domain.Organization{
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		IsBuyer:        m.IsBuyer,
		IsSeller:       m.IsSeller,
		IsBank:         m.IsBank,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelOrganization converts a domain Organization to a model Organization
func ToModelOrganization(d domain.Organization) models.Organization {
	return models.Organization{
		OrganizationID: d.OrganizationID,
		Name:           d.Name,
		IsBuyer:        d.IsBuyer,
		IsSeller:       d.IsSeller,
		IsBank:         d.IsBank,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}
