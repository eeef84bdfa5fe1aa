package accounting_test

import (
	"testing"

	"github.com/corefin/ledgercore/internal/apperrors"
	"github.com/corefin/ledgercore/internal/core/domain"
	"github.com/corefin/ledgercore/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(accountID string, side domain.Side, amount string) domain.LedgerLine {
	return domain.LedgerLine{
		AccountID: accountID,
		Side:      side,
		Amount:    domain.NewMoney(decimal.RequireFromString(amount), "USD"),
	}
}

func TestSignedDelta(t *testing.T) {
	amount := decimal.NewFromInt(100)

	assert.True(t, accounting.SignedDelta(domain.Debit, domain.Debit, amount).Equal(amount))
	assert.True(t, accounting.SignedDelta(domain.Debit, domain.Credit, amount).Equal(amount.Neg()))
	assert.True(t, accounting.SignedDelta(domain.Credit, domain.Debit, amount).Equal(amount.Neg()))
	assert.True(t, accounting.SignedDelta(domain.Credit, domain.Credit, amount).Equal(amount))
}

func TestSignedLineAmount(t *testing.T) {
	debit := line("a-1", domain.Debit, "40")
	credit := line("a-1", domain.Credit, "40")

	assert.True(t, accounting.SignedLineAmount(debit, domain.Asset).Equal(decimal.NewFromInt(40)))
	assert.True(t, accounting.SignedLineAmount(credit, domain.Asset).Equal(decimal.NewFromInt(-40)))
	assert.True(t, accounting.SignedLineAmount(debit, domain.Revenue).Equal(decimal.NewFromInt(-40)))
	assert.True(t, accounting.SignedLineAmount(credit, domain.Revenue).Equal(decimal.NewFromInt(40)))
}

func TestValidateEntryBalance(t *testing.T) {
	balanced := []domain.LedgerLine{
		line("cash", domain.Debit, "125.50"),
		line("revenue", domain.Credit, "125.50"),
	}
	assert.NoError(t, accounting.ValidateEntryBalance(balanced))

	assert.ErrorIs(t, accounting.ValidateEntryBalance(nil), apperrors.ErrEmptyEntry)
	assert.ErrorIs(t, accounting.ValidateEntryBalance(balanced[:1]), apperrors.ErrEmptyEntry)

	unbalanced := []domain.LedgerLine{
		line("cash", domain.Debit, "100"),
		line("revenue", domain.Credit, "99.99"),
	}
	assert.ErrorIs(t, accounting.ValidateEntryBalance(unbalanced), apperrors.ErrUnbalancedEntry)

	nonPositive := []domain.LedgerLine{
		line("cash", domain.Debit, "0"),
		line("revenue", domain.Credit, "0"),
	}
	assert.ErrorIs(t, accounting.ValidateEntryBalance(nonPositive), apperrors.ErrNegativeLineAmount)
}

func TestNetBalanceChanges(t *testing.T) {
	lines := []domain.LedgerLine{
		line("cash", domain.Debit, "100"),
		line("cash", domain.Credit, "30"),
		line("revenue", domain.Credit, "70"),
	}
	types := map[string]domain.AccountType{
		"cash":    domain.Asset,
		"revenue": domain.Revenue,
	}

	changes, err := accounting.NetBalanceChanges(lines, types)
	require.NoError(t, err)
	assert.True(t, changes["cash"].Equal(decimal.NewFromInt(70)))
	assert.True(t, changes["revenue"].Equal(decimal.NewFromInt(70)))

	_, err = accounting.NetBalanceChanges(lines, map[string]domain.AccountType{"cash": domain.Asset})
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}
