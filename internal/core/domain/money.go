package domain

import (
	"fmt"

	"github.com/corefin/ledgercore/internal/apperrors"
	"github.com/shopspring/decimal"
)

// minorUnits maps ISO currency codes to their minor-unit scale.
// Codes not listed default to 2.
var minorUnits = map[string]int32{
	"USD": 2,
	"EUR": 2,
	"GBP": 2,
	"INR": 2,
	"JPY": 0,
	"KRW": 0,
	"BHD": 3,
	"KWD": 3,
	"OMR": 3,
}

// MinorUnitScale returns the decimal scale for a currency code.
func MinorUnitScale(currencyCode string) int32 {
	if scale, ok := minorUnits[currencyCode]; ok {
		return scale
	}
	return 2
}

// Money is an immutable currency-tagged amount. Every operation returns a new
// value; binary operations between differing currencies fail explicitly, never
// convert.
type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

// NewMoney creates a Money value from a decimal amount and currency code.
func NewMoney(amount decimal.Decimal, currencyCode string) Money {
	return Money{Amount: amount, CurrencyCode: currencyCode}
}

// ZeroMoney returns a zero value in the given currency.
func ZeroMoney(currencyCode string) Money {
	return Money{Amount: decimal.Zero, CurrencyCode: currencyCode}
}

func (m Money) sameCurrency(other Money) error {
	if m.CurrencyCode != other.CurrencyCode {
		return fmt.Errorf("%w: %s vs %s", apperrors.ErrCurrencyMismatch, m.CurrencyCode, other.CurrencyCode)
	}
	return nil
}

// Add returns m + other, failing on differing currencies.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Add(other.Amount), CurrencyCode: m.CurrencyCode}, nil
}

// Sub returns m - other, failing on differing currencies.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Sub(other.Amount), CurrencyCode: m.CurrencyCode}, nil
}

// MulScalar returns m scaled by the given factor. No rounding is applied; the
// caller decides when precision must collapse to the currency's minor unit via
// RoundBankers.
func (m Money) MulScalar(factor decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(factor), CurrencyCode: m.CurrencyCode}
}

// Neg returns the negated amount.
func (m Money) Neg() Money {
	return Money{Amount: m.Amount.Neg(), CurrencyCode: m.CurrencyCode}
}

// Abs returns the absolute amount.
func (m Money) Abs() Money {
	return Money{Amount: m.Amount.Abs(), CurrencyCode: m.CurrencyCode}
}

// Cmp compares two Money values: -1 if m < other, 0 if equal, 1 if m > other.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.sameCurrency(other); err != nil {
		return 0, err
	}
	return m.Amount.Cmp(other.Amount), nil
}

// Equal reports exact equality of amount and currency.
func (m Money) Equal(other Money) bool {
	return m.CurrencyCode == other.CurrencyCode && m.Amount.Equal(other.Amount)
}

func (m Money) IsZero() bool     { return m.Amount.IsZero() }
func (m Money) IsPositive() bool { return m.Amount.IsPositive() }
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }

// RoundBankers rounds to the currency's minor-unit scale using banker's
// rounding. This is the only rounding entry point; callers invoke it
// explicitly (e.g. after tax splits), it is never applied implicitly.
func (m Money) RoundBankers() Money {
	return Money{
		Amount:       m.Amount.RoundBank(MinorUnitScale(m.CurrencyCode)),
		CurrencyCode: m.CurrencyCode,
	}
}

// String renders the amount with its currency code, e.g. "125.50 USD".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.String(), m.CurrencyCode)
}
