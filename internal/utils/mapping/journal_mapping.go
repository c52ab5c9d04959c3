package mapping

import (
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	"github.com/SscSPs/invoice_finance_app/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to a model JournalEntry
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		JournalEntryID:  d.JournalEntryID,
		Reference:       d.Reference,
		PostingType:     string(d.PostingType),
		TransactionDate: d.TransactionDate,
		Description:     d.Description,
		OrganizationID:  d.OrganizationID,
		InvoiceID:       d.InvoiceID,
		Status:          string(d.Status),
		Amount:          d.Amount,
		PostedAt:        d.PostedAt,
		PostedBy:        d.PostedBy,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		JournalEntryID:  m.JournalEntryID,
		Reference:       m.Reference,
		PostingType:     domain.PostingType(m.PostingType),
		TransactionDate: m.TransactionDate,
		Description:     m.Description,
		OrganizationID:  m.OrganizationID,
		InvoiceID:       m.InvoiceID,
		Status:          domain.JournalStatus(m.Status),
		Amount:          m.Amount,
		PostedAt:        m.PostedAt,
		PostedBy:        m.PostedBy,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalEntryLine converts a domain JournalEntryLine to a model JournalEntryLine
func ToModelJournalEntryLine(d domain.JournalEntryLine) models.JournalEntryLine {
	return models.JournalEntryLine{
		LineID:         d.LineID,
		JournalEntryID: d.JournalEntryID,
		AccountID:      d.AccountID,
		Debit:          d.Debit,
		Credit:         d.Credit,
		Description:    d.Description,
		OrganizationID: d.OrganizationID,
		CreatedAt:      d.CreatedAt,
	}
}

// ToDomainJournalEntryLine converts a model JournalEntryLine to a domain JournalEntryLine
func ToDomainJournalEntryLine(m models.JournalEntryLine) domain.JournalEntryLine {
	return domain.JournalEntryLine{
		LineID:         m.LineID,
		JournalEntryID: m.JournalEntryID,
		AccountID:      m.AccountID,
		Debit:          m.Debit,
		Credit:         m.Credit,
		Description:    m.Description,
		OrganizationID: m.OrganizationID,
		CreatedAt:      m.CreatedAt,
	}
}

// ToDomainJournalEntryLineSlice converts a slice of model lines to domain lines
func ToDomainJournalEntryLineSlice(ms []models.JournalEntryLine) []domain.JournalEntryLine {
	lines := make([]domain.JournalEntryLine, len(ms))
	for i, m := range ms {
		lines[i] = ToDomainJournalEntryLine(m)
	}
	return lines
}
