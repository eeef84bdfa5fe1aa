package domain

import (
	"fmt"
	"time"

	"github.com/corefin/ledgercore/internal/apperrors"
	"github.com/shopspring/decimal"
)

// DailyBalanceKeyFormat keys the daily balance history by calendar date.
const DailyBalanceKeyFormat = "2006-01-02"

// AccountBalance holds per-account, per-period running totals. It is a
// denormalized index over posted lines: mutated only inside the service's
// atomic posting path, and reconcilable against a recomputation from the raw
// lines at any time. Version backs optimistic concurrency in the repository.
type AccountBalance struct {
	AccountID        string                     `json:"accountID"`
	AccountType      AccountType                `json:"accountType"` // Drives the normal-side and carry-forward rules
	CurrencyCode     string                     `json:"currencyCode"`
	FiscalYear       int                        `json:"fiscalYear"`
	FiscalPeriod     int                        `json:"fiscalPeriod"`
	OpeningBalance   decimal.Decimal            `json:"openingBalance"`
	ClosingBalance   decimal.Decimal            `json:"closingBalance"`
	PeriodDebits     decimal.Decimal            `json:"periodDebits"`
	PeriodCredits    decimal.Decimal            `json:"periodCredits"`
	YTDDebits        decimal.Decimal            `json:"ytdDebits"`
	YTDCredits       decimal.Decimal            `json:"ytdCredits"`
	TransactionCount int64                      `json:"transactionCount"`
	DailyBalances    map[string]decimal.Decimal `json:"dailyBalances"`
	Version          int64                      `json:"version"`
	AuditFields
}

// NewAccountBalance creates a zeroed balance record for an account and period.
func NewAccountBalance(account Account, fiscalYear, fiscalPeriod int, actor string, now time.Time) *AccountBalance {
	return &AccountBalance{
		AccountID:     account.AccountID,
		AccountType:   account.AccountType,
		CurrencyCode:  account.CurrencyCode,
		FiscalYear:    fiscalYear,
		FiscalPeriod:  fiscalPeriod,
		DailyBalances: make(map[string]decimal.Decimal),
		AuditFields: AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}
}

// Closing returns the closing balance as a Money value.
func (b *AccountBalance) Closing() Money {
	return Money{Amount: b.ClosingBalance, CurrencyCode: b.CurrencyCode}
}

// Opening returns the opening balance as a Money value.
func (b *AccountBalance) Opening() Money {
	return Money{Amount: b.OpeningBalance, CurrencyCode: b.CurrencyCode}
}

func (b *AccountBalance) checkAmount(amount Money) error {
	if amount.CurrencyCode != b.CurrencyCode {
		return fmt.Errorf("%w: balance currency %s, amount currency %s", apperrors.ErrCurrencyMismatch, b.CurrencyCode, amount.CurrencyCode)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", apperrors.ErrNegativeLineAmount, amount.String())
	}
	return nil
}

// PostDebit applies a debit to the running totals. A debit increases a
// debit-normal balance and decreases a credit-normal one.
func (b *AccountBalance) PostDebit(amount Money, date time.Time, actor string, now time.Time) error {
	if err := b.checkAmount(amount); err != nil {
		return err
	}
	delta := amount.Amount
	if NormalSide(b.AccountType) == Credit {
		delta = delta.Neg()
	}
	b.ClosingBalance = b.ClosingBalance.Add(delta)
	b.PeriodDebits = b.PeriodDebits.Add(amount.Amount)
	b.YTDDebits = b.YTDDebits.Add(amount.Amount)
	b.record(date, actor, now)
	return nil
}

// PostCredit applies a credit to the running totals, with the sign rule
// mirrored from PostDebit.
func (b *AccountBalance) PostCredit(amount Money, date time.Time, actor string, now time.Time) error {
	if err := b.checkAmount(amount); err != nil {
		return err
	}
	delta := amount.Amount
	if NormalSide(b.AccountType) == Debit {
		delta = delta.Neg()
	}
	b.ClosingBalance = b.ClosingBalance.Add(delta)
	b.PeriodCredits = b.PeriodCredits.Add(amount.Amount)
	b.YTDCredits = b.YTDCredits.Add(amount.Amount)
	b.record(date, actor, now)
	return nil
}

// PostSide dispatches to PostDebit or PostCredit.
func (b *AccountBalance) PostSide(side Side, amount Money, date time.Time, actor string, now time.Time) error {
	if side == Debit {
		return b.PostDebit(amount, date, actor, now)
	}
	return b.PostCredit(amount, date, actor, now)
}

func (b *AccountBalance) record(date time.Time, actor string, now time.Time) {
	b.TransactionCount++
	if b.DailyBalances == nil {
		b.DailyBalances = make(map[string]decimal.Decimal)
	}
	b.DailyBalances[date.Format(DailyBalanceKeyFormat)] = b.ClosingBalance
	b.LastUpdatedAt = now
	b.LastUpdatedBy = actor
}

// ApplyAdjustment applies an out-of-band signed correction to the closing
// balance. The caller records the reason and approver in the audit trail;
// period and YTD debit/credit totals are untouched.
func (b *AccountBalance) ApplyAdjustment(amount Money, approver string, now time.Time) error {
	if amount.CurrencyCode != b.CurrencyCode {
		return fmt.Errorf("%w: balance currency %s, adjustment currency %s", apperrors.ErrCurrencyMismatch, b.CurrencyCode, amount.CurrencyCode)
	}
	b.ClosingBalance = b.ClosingBalance.Add(amount.Amount)
	b.record(now, approver, now)
	return nil
}

// ClosePeriod rolls the balance into the next fiscal period. Balance-sheet
// types carry the closing balance forward as the new opening; Revenue/Expense
// reset to zero. YTD counters persist within the fiscal year.
func (b *AccountBalance) ClosePeriod(actor string, now time.Time) {
	if b.AccountType.IsBalanceSheet() {
		b.OpeningBalance = b.ClosingBalance
	} else {
		b.OpeningBalance = decimal.Zero
		b.ClosingBalance = decimal.Zero
	}
	b.ClosingBalance = b.OpeningBalance
	b.PeriodDebits = decimal.Zero
	b.PeriodCredits = decimal.Zero
	b.FiscalPeriod++
	b.LastUpdatedAt = now
	b.LastUpdatedBy = actor
}

// StartNewFiscalYear applies the period carry-forward rule and additionally
// resets YTD counters, the transaction count, and the daily balance history.
func (b *AccountBalance) StartNewFiscalYear(year int, actor string, now time.Time) {
	b.ClosePeriod(actor, now)
	b.FiscalYear = year
	b.FiscalPeriod = 1
	b.YTDDebits = decimal.Zero
	b.YTDCredits = decimal.Zero
	b.TransactionCount = 0
	b.DailyBalances = make(map[string]decimal.Decimal)
}

// Reconcile computes variance = closing − external without mutating the
// balance. A non-zero variance is an observable signal, not a failure.
func (b *AccountBalance) Reconcile(externalBalance Money) (Money, error) {
	if externalBalance.CurrencyCode != b.CurrencyCode {
		return Money{}, fmt.Errorf("%w: balance currency %s, external currency %s", apperrors.ErrCurrencyMismatch, b.CurrencyCode, externalBalance.CurrencyCode)
	}
	return Money{
		Amount:       b.ClosingBalance.Sub(externalBalance.Amount),
		CurrencyCode: b.CurrencyCode,
	}, nil
}

// BalanceAsOf returns the recorded daily balance nearest at or before the
// given date, falling back to the opening balance when no history exists yet.
func (b *AccountBalance) BalanceAsOf(date time.Time) decimal.Decimal {
	key := date.Format(DailyBalanceKeyFormat)
	best := ""
	for k := range b.DailyBalances {
		if k <= key && k > best {
			best = k
		}
	}
	if best == "" {
		return b.OpeningBalance
	}
	return b.DailyBalances[best]
}
