package dto

import (
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineResponse defines the data returned for a journal entry line.
type JournalLineResponse struct {
	LineID         string          `json:"lineID"`
	AccountID      string          `json:"accountID"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	Description    string          `json:"description"`
	OrganizationID string          `json:"organizationID"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	JournalEntryID  string                `json:"journalEntryID"`
	Reference       string                `json:"reference"`
	PostingType     string                `json:"postingType"`
	TransactionDate time.Time             `json:"transactionDate"`
	Description     string                `json:"description"`
	OrganizationID  string                `json:"organizationID"`
	InvoiceID       *string               `json:"invoiceID,omitempty"`
	Status          string                `json:"status"`
	Amount          decimal.Decimal       `json:"amount"`
	PostedBy        string                `json:"postedBy"`
	Lines           []JournalLineResponse `json:"lines,omitempty"`
}

// ListJournalEntriesParams defines query parameters for listing journal entries.
type ListJournalEntriesParams struct {
	InvoiceID string  `form:"invoiceID"`
	Limit     int     `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListJournalEntriesResponse wraps a page of journal entries.
type ListJournalEntriesResponse struct {
	JournalEntries []JournalEntryResponse `json:"journalEntries"`
	NextToken      *string                `json:"nextToken,omitempty"`
}

// AccountResponse defines the data returned for a chart of accounts row.
type AccountResponse struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType string          `json:"accountType"`
	Balance     decimal.Decimal `json:"balance"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to JournalEntryResponse DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			LineID:         l.LineID,
			AccountID:      l.AccountID,
			Debit:          l.Debit,
			Credit:         l.Credit,
			Description:    l.Description,
			OrganizationID: l.OrganizationID,
		}
	}
	return JournalEntryResponse{
		JournalEntryID:  e.JournalEntryID,
		Reference:       e.Reference,
		PostingType:     string(e.PostingType),
		TransactionDate: e.TransactionDate,
		Description:     e.Description,
		OrganizationID:  e.OrganizationID,
		InvoiceID:       e.InvoiceID,
		Status:          string(e.Status),
		Amount:          e.Amount,
		PostedBy:        e.PostedBy,
		Lines:           lines,
	}
}

// ToJournalEntryResponses converts a slice of domain.JournalEntry to []JournalEntryResponse.
func ToJournalEntryResponses(entries []domain.JournalEntry) []JournalEntryResponse {
	responses := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToJournalEntryResponse(&entries[i])
	}
	return responses
}

// ToAccountResponses converts a slice of domain.Account to []AccountResponse.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		responses[i] = AccountResponse{
			AccountID:   a.AccountID,
			Code:        a.Code,
			Name:        a.Name,
			AccountType: string(a.AccountType),
			Balance:     a.Balance,
		}
	}
	return responses
}
