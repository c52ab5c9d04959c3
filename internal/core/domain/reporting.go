package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow represents a single row in a trial balance report
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalance is the full report with column totals.
type TrialBalance struct {
	AsOf        time.Time         `json:"asOf"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
}

// StatementLine is one record on an organization statement with the running balance after it.
type StatementLine struct {
	Record  TransactionRecord `json:"record"`
	Effect  decimal.Decimal   `json:"effect"`
	Balance decimal.Decimal   `json:"balance"`
}

// Statement summarises an organization's financing activity over a period.
type Statement struct {
	StatementNumber string          `json:"statementNumber"`
	OrganizationID  string          `json:"organizationID"`
	From            time.Time       `json:"from"`
	To              time.Time       `json:"to"`
	OpeningBalance  decimal.Decimal `json:"openingBalance"`
	ClosingBalance  decimal.Decimal `json:"closingBalance"`
	Lines           []StatementLine `json:"lines"`
}
