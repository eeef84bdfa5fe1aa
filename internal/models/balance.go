package models

import (
	"github.com/shopspring/decimal"
)

// AccountBalance is the persistence shape of a per-account, per-period running
// balance row. DailyBalances is stored as JSONB; Version backs the optimistic
// concurrency check in the repository.
type AccountBalance struct {
	AccountID        string                     `db:"account_id"`
	AccountType      string                     `db:"account_type"`
	CurrencyCode     string                     `db:"currency_code"`
	FiscalYear       int                        `db:"fiscal_year"`
	FiscalPeriod     int                        `db:"fiscal_period"`
	OpeningBalance   decimal.Decimal            `db:"opening_balance"`
	ClosingBalance   decimal.Decimal            `db:"closing_balance"`
	PeriodDebits     decimal.Decimal            `db:"period_debits"`
	PeriodCredits    decimal.Decimal            `db:"period_credits"`
	YTDDebits        decimal.Decimal            `db:"ytd_debits"`
	YTDCredits       decimal.Decimal            `db:"ytd_credits"`
	TransactionCount int64                      `db:"transaction_count"`
	DailyBalances    map[string]decimal.Decimal `db:"daily_balances"`
	Version          int64                      `db:"version"`
	AuditFields
}
