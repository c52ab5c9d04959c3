package mapping

import (
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	"github.com/SscSPs/invoice_finance_app/internal/models"
)

// ToModelTransactionRecord converts a domain TransactionRecord to a model TransactionRecord
func ToModelTransactionRecord(d domain.TransactionRecord) models.TransactionRecord {
	return models.TransactionRecord{
		RecordID:        d.RecordID,
		RecordType:      string(d.Type),
		OrganizationID:  d.OrganizationID,
		InvoiceID:       d.InvoiceID,
		Description:     d.Description,
		Amount:          d.Amount,
		Rate:            d.Rate,
		TransactionDate: d.TransactionDate,
		MaturityDate:    d.MaturityDate,
		IsPaid:          d.IsPaid,
		PaymentDate:     d.PaymentDate,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransactionRecord converts a model TransactionRecord to a domain TransactionRecord
func ToDomainTransactionRecord(m models.TransactionRecord) domain.TransactionRecord {
	return domain.TransactionRecord{
		RecordID:        m.RecordID,
		Type:            domain.TransactionRecordType(m.RecordType),
		OrganizationID:  m.OrganizationID,
		InvoiceID:       m.InvoiceID,
		Description:     m.Description,
		Amount:          m.Amount,
		Rate:            m.Rate,
		TransactionDate: m.TransactionDate,
		MaturityDate:    m.MaturityDate,
		IsPaid:          m.IsPaid,
		PaymentDate:     m.PaymentDate,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}
