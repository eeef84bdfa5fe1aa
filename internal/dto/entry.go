package dto

import (
	"time"

	"github.com/corefin/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLineRequest defines one debit or credit line of a draft entry.
type CreateLineRequest struct {
	AccountID      string           `json:"accountID"`
	Side           domain.Side      `json:"side"`
	Amount         decimal.Decimal  `json:"amount"`
	CurrencyCode   string           `json:"currencyCode"` // Defaults to the entry currency when empty
	Description    string           `json:"description"`
	ConversionRate *decimal.Decimal `json:"conversionRate"` // Required when line currency differs from entry currency
}

// CreateEntryRequest defines the data needed to create a draft ledger entry.
type CreateEntryRequest struct {
	EntryDate    time.Time           `json:"entryDate"`
	CurrencyCode string              `json:"currencyCode"`
	Description  string              `json:"description"`
	Lines        []CreateLineRequest `json:"lines"`
}
