package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Draft  JournalStatus = "DRAFT"
	Posted JournalStatus = "POSTED"
)

// PostingType names the business event a journal entry records.
type PostingType string

const (
	PostingValidation     PostingType = "VALIDATION"
	PostingApproval       PostingType = "APPROVAL"
	PostingRejection      PostingType = "REJECTION"
	PostingFunding        PostingType = "FUNDING"
	PostingInterestIncome PostingType = "INTEREST_INCOME"
	PostingSellerPayment  PostingType = "SELLER_PAYMENT"
	PostingPayment        PostingType = "PAYMENT"
	PostingFeeIncome      PostingType = "FEE_INCOME"
)

// IsMemo reports whether the posting type documents a status checkpoint
// rather than a movement of money. Memo entries never carry an amount.
func (t PostingType) IsMemo() bool {
	switch t {
	case PostingValidation, PostingApproval, PostingRejection, PostingSellerPayment:
		return true
	}
	return false
}

// IsValid reports whether t is a known posting type.
func (t PostingType) IsValid() bool {
	switch t {
	case PostingValidation, PostingApproval, PostingRejection, PostingFunding,
		PostingInterestIncome, PostingSellerPayment, PostingPayment, PostingFeeIncome:
		return true
	}
	return false
}

// JournalEntry is the header of one financial event. Posted entries are append-only.
type JournalEntry struct {
	JournalEntryID  string             `json:"journalEntryID"`
	Reference       string             `json:"reference"`
	PostingType     PostingType        `json:"postingType"`
	TransactionDate time.Time          `json:"transactionDate"`
	Description     string             `json:"description"`
	OrganizationID  string             `json:"organizationID"`
	InvoiceID       *string            `json:"invoiceID,omitempty"`
	Status          JournalStatus      `json:"status"`
	Amount          decimal.Decimal    `json:"amount"`
	PostedAt        *time.Time         `json:"postedAt,omitempty"`
	PostedBy        string             `json:"postedBy"`
	Lines           []JournalEntryLine `json:"lines,omitempty"`
	AuditFields
}

// JournalEntryLine is a single debit or credit against one account.
type JournalEntryLine struct {
	LineID         string          `json:"lineID"`
	JournalEntryID string          `json:"journalEntryID"`
	AccountID      string          `json:"accountID"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	Description    string          `json:"description"`
	OrganizationID string          `json:"organizationID"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// IsMemo reports whether the line carries no amount on either side.
func (l JournalEntryLine) IsMemo() bool {
	return l.Debit.IsZero() && l.Credit.IsZero()
}

// Totals sums the debit and credit sides of the lines.
func Totals(lines []JournalEntryLine) (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, l := range lines {
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	return debits, credits
}

// IsBalanced reports whether total debits equal total credits.
func IsBalanced(lines []JournalEntryLine) bool {
	d, c := Totals(lines)
	return d.Equal(c)
}
