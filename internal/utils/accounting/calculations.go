package accounting

import (
	"fmt"

	"github.com/corefin/ledgercore/internal/apperrors"
	"github.com/corefin/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedDelta applies the correct sign to a line amount based on the account's
// normal side and the line side. This is the single sign rule used by services
// and repositories to keep accounting math consistent:
//
//	DEBIT to a debit-normal account  -> positive (+)
//	CREDIT to a debit-normal account -> negative (-)
//	DEBIT to a credit-normal account  -> negative (-)
//	CREDIT to a credit-normal account -> positive (+)
func SignedDelta(normalSide, lineSide domain.Side, amount decimal.Decimal) decimal.Decimal {
	if normalSide == lineSide {
		return amount
	}
	return amount.Neg()
}

// SignedLineAmount resolves the signed balance effect of one ledger line
// against its account type.
func SignedLineAmount(line domain.LedgerLine, accountType domain.AccountType) decimal.Decimal {
	return SignedDelta(domain.NormalSide(accountType), line.Side, line.Amount.Amount)
}

// ValidateEntryBalance checks that an entry's lines balance: at least two
// lines, every amount strictly positive, and debits equal to credits exactly.
func ValidateEntryBalance(lines []domain.LedgerLine) error {
	if len(lines) < 2 {
		return apperrors.ErrEmptyEntry
	}

	debitsSum := decimal.Zero
	creditsSum := decimal.Zero
	for _, line := range lines {
		if line.Amount.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: account %s", apperrors.ErrNegativeLineAmount, line.AccountID)
		}
		if line.Side == domain.Debit {
			debitsSum = debitsSum.Add(line.Amount.Amount)
		} else {
			creditsSum = creditsSum.Add(line.Amount.Amount)
		}
	}

	if !debitsSum.Equal(creditsSum) {
		return fmt.Errorf("%w: debits sum is %s and credits sum is %s",
			apperrors.ErrUnbalancedEntry, debitsSum.String(), creditsSum.String())
	}
	return nil
}

// NetBalanceChanges folds an entry's lines into per-account signed deltas,
// using the account types fetched by the caller.
func NetBalanceChanges(lines []domain.LedgerLine, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(lines))
	for _, line := range lines {
		accountType, ok := accountTypes[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("%w: ID %s", apperrors.ErrAccountNotFound, line.AccountID)
		}
		changes[line.AccountID] = changes[line.AccountID].Add(SignedLineAmount(line, accountType))
	}
	return changes, nil
}
