package mapping

import (
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	"github.com/SscSPs/invoice_finance_app/internal/models"
)

// ToModelInvoice converts a domain Invoice to a model Invoice
func ToModelInvoice(d domain.Invoice) models.Invoice {
	return models.Invoice{
		InvoiceID:         d.InvoiceID,
		InvoiceNumber:     d.InvoiceNumber,
		Amount:            d.Amount,
		CurrencyCode:      d.CurrencyCode,
		IssueDate:         d.IssueDate,
		DueDate:           d.DueDate,
		SellerOrgID:       d.SellerOrgID,
		BuyerOrgID:        d.BuyerOrgID,
		CounterpartyID:    d.CounterpartyID,
		Origin:            string(d.Origin),
		Status:            string(d.Status),
		FundedAmount:      d.FundedAmount,
		DiscountRate:      d.DiscountRate,
		PaidAmount:        d.PaidAmount,
		RejectionReason:   d.RejectionReason,
		BuyerApproved:     d.BuyerApproved,
		BuyerApprovalDate: d.BuyerApprovalDate,
		SellerAccepted:    d.SellerAccepted,
		FundingDate:       d.FundingDate,
		PaymentDate:       d.PaymentDate,
		Matured:           d.Matured,
		MaturedAt:         d.MaturedAt,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainInvoice converts a model Invoice to a domain Invoice
func ToDomainInvoice(m models.Invoice) domain.Invoice {
	return domain.Invoice{
		InvoiceID:         m.InvoiceID,
		InvoiceNumber:     m.InvoiceNumber,
		Amount:            m.Amount,
		CurrencyCode:      m.CurrencyCode,
		IssueDate:         m.IssueDate,
		DueDate:           m.DueDate,
		SellerOrgID:       m.SellerOrgID,
		BuyerOrgID:        m.BuyerOrgID,
		CounterpartyID:    m.CounterpartyID,
		Origin:            domain.InvoiceOrigin(m.Origin),
		Status:            domain.InvoiceStatus(m.Status),
		FundedAmount:      m.FundedAmount,
		DiscountRate:      m.DiscountRate,
		PaidAmount:        m.PaidAmount,
		RejectionReason:   m.RejectionReason,
		BuyerApproved:     m.BuyerApproved,
		BuyerApprovalDate: m.BuyerApprovalDate,
		SellerAccepted:    m.SellerAccepted,
		FundingDate:       m.FundingDate,
		PaymentDate:       m.PaymentDate,
		Matured:           m.Matured,
		MaturedAt:         m.MaturedAt,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}
