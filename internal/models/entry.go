package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is the persistence shape of an entry header row. Notes are
// stored as a text array; totals are denormalized for list queries.
type LedgerEntry struct {
	EntryID           string          `db:"entry_id"`
	EntryNumber       string          `db:"entry_number"`
	EntryDate         time.Time       `db:"entry_date"`
	PostingDate       *time.Time      `db:"posting_date"`
	Status            string          `db:"status"`
	CurrencyCode      string          `db:"currency_code"`
	Description       string          `db:"description"`
	Notes             []string        `db:"notes"`
	TotalDebit        decimal.Decimal `db:"total_debit"`
	TotalCredit       decimal.Decimal `db:"total_credit"`
	ReversalOfEntryID *string         `db:"reversal_of_entry_id"`
	ReversedByEntryID *string         `db:"reversed_by_entry_id"`
	ApprovedBy        string          `db:"approved_by"`
	PostedBy          string          `db:"posted_by"`
	AuditFields
}

// LedgerLine is the persistence shape of one debit or credit line.
type LedgerLine struct {
	LineID         string           `db:"line_id"`
	EntryID        string           `db:"entry_id"`
	AccountID      string           `db:"account_id"`
	Side           string           `db:"side"`
	Amount         decimal.Decimal  `db:"amount"`
	CurrencyCode   string           `db:"currency_code"`
	Description    string           `db:"description"`
	ConversionRate *decimal.Decimal `db:"conversion_rate"`
	AuditFields
}
