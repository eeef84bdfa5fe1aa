package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow places one account's balance on the debit or credit column
// per its normal side and the sign of the computed balance.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalanceReport lists every in-scope account's balance split into
// debit/credit columns. A non-zero BalanceDiscrepancy signals a data-integrity
// defect, not a user error.
type TrialBalanceReport struct {
	AsOfDate           time.Time         `json:"asOfDate"`
	CurrencyCode       string            `json:"currencyCode"`
	Rows               []TrialBalanceRow `json:"rows"`
	TotalDebits        decimal.Decimal   `json:"totalDebits"`
	TotalCredits       decimal.Decimal   `json:"totalCredits"`
	IsBalanced         bool              `json:"isBalanced"`
	BalanceDiscrepancy decimal.Decimal   `json:"balanceDiscrepancy"`
}

// GeneralLedgerRow is one line touching an account, annotated with the
// running balance after its effect.
type GeneralLedgerRow struct {
	EntryID        string          `json:"entryID"`
	EntryNumber    string          `json:"entryNumber"`
	EntryDate      time.Time       `json:"entryDate"`
	Description    string          `json:"description"`
	Side           Side            `json:"side"`
	Amount         decimal.Decimal `json:"amount"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
	Posted         bool            `json:"posted"`
}

// AccountActivity pairs a line with the header fields of its owning entry,
// as returned by line queries scoped to one account.
type AccountActivity struct {
	Line        LedgerLine  `json:"line"`
	EntryNumber string      `json:"entryNumber"`
	EntryDate   time.Time   `json:"entryDate"`
	EntryStatus EntryStatus `json:"entryStatus"`
	Description string      `json:"description"`
	PostingDate *time.Time  `json:"postingDate"`
}

// GeneralLedgerReport is the chronological activity of one account over a
// window, seeded from the balance as of the day before the window opens.
type GeneralLedgerReport struct {
	AccountID      string             `json:"accountID"`
	AccountName    string             `json:"accountName"`
	CurrencyCode   string             `json:"currencyCode"`
	StartDate      time.Time          `json:"startDate"`
	EndDate        time.Time          `json:"endDate"`
	OpeningBalance decimal.Decimal    `json:"openingBalance"`
	ClosingBalance decimal.Decimal    `json:"closingBalance"`
	Rows           []GeneralLedgerRow `json:"rows"`
}
