package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Chart of accounts codes the posting table refers to.
const (
	AccountCodeCash                = "1100"
	AccountCodeAccountsReceivable  = "1200"
	AccountCodeLoansToCustomers    = "1300"
	AccountCodeAccountsPayable     = "2100"
	AccountCodeInterestIncome      = "4100"
	AccountCodeFeeIncome           = "4200"
	AccountCodeFactoringFeeExpense = "6100"
)

// Account is a ledger account in the chart of accounts.
type Account struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	Description string          `json:"description"`
	IsActive    bool            `json:"isActive"`
	Balance     decimal.Decimal `json:"balance"` // signed by the debit/credit convention of AccountType
	AuditFields
}

// IsDebitNormal reports whether debits increase this account's balance.
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == Expense
}

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}
