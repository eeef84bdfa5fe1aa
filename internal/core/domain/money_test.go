package domain_test

import (
	"testing"

	"github.com/corefin/ledgercore/internal/apperrors"
	"github.com/corefin/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usd(s string) domain.Money {
	return domain.NewMoney(decimal.RequireFromString(s), "USD")
}

func TestMoneyAddSub(t *testing.T) {
	sum, err := usd("10.25").Add(usd("0.75"))
	require.NoError(t, err)
	assert.True(t, sum.Equal(usd("11")))

	diff, err := usd("10").Sub(usd("10.50"))
	require.NoError(t, err)
	assert.True(t, diff.IsNegative())
	assert.True(t, diff.Equal(usd("-0.5")))
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	eur := domain.NewMoney(decimal.NewFromInt(5), "EUR")

	_, err := usd("5").Add(eur)
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)

	_, err = usd("5").Sub(eur)
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)

	_, err = usd("5").Cmp(eur)
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)
}

func TestMoneyExactArithmetic(t *testing.T) {
	// The classic float trap: 0.1 + 0.2 must be exactly 0.3.
	sum, err := usd("0.1").Add(usd("0.2"))
	require.NoError(t, err)
	assert.True(t, sum.Equal(usd("0.3")), "got %s", sum)
}

func TestMoneyRoundBankers(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     string
	}{
		{"half to even down", "2.125", "USD", "2.12"},
		{"half to even up", "2.135", "USD", "2.14"},
		{"zero decimal currency", "100.5", "JPY", "100"},
		{"three decimal currency", "1.2345", "BHD", "1.234"},
		{"unknown currency defaults to two", "9.999", "XXX", "10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := domain.NewMoney(decimal.RequireFromString(tt.amount), tt.currency)
			got := m.RoundBankers()
			assert.True(t, got.Amount.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestMoneyMulScalarKeepsPrecision(t *testing.T) {
	// Multiplication keeps full precision; rounding only happens on demand.
	m := usd("10.01").MulScalar(decimal.RequireFromString("0.0825"))
	assert.Equal(t, "0.825825", m.Amount.String())
	assert.True(t, m.RoundBankers().Equal(usd("0.83")))
}

func TestZeroMoney(t *testing.T) {
	z := domain.ZeroMoney("EUR")
	assert.True(t, z.IsZero())
	assert.Equal(t, "EUR", z.CurrencyCode)
	assert.False(t, z.IsPositive())
	assert.False(t, z.IsNegative())
}
