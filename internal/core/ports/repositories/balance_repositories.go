package repositories

import (
	"context"

	"github.com/corefin/ledgercore/internal/core/domain"
)

// BalanceReader defines read operations for account balance data
type BalanceReader interface {
	// FindBalance retrieves one account's balance record for a fiscal period.
	FindBalance(ctx context.Context, accountID string, fiscalYear, fiscalPeriod int) (*domain.AccountBalance, error)

	// FindCurrentBalance retrieves an account's most recent balance record.
	FindCurrentBalance(ctx context.Context, accountID string) (*domain.AccountBalance, error)

	// ListBalances retrieves every balance record for a fiscal period.
	ListBalances(ctx context.Context, fiscalYear, fiscalPeriod int) ([]*domain.AccountBalance, error)
}

// BalanceWriter defines write operations for account balance data
type BalanceWriter interface {
	// SaveBalance persists a balance record. The write is version-checked:
	// when the stored Version no longer matches the record's, it fails with
	// apperrors.ErrOptimisticLock and the caller retries from a fresh read.
	SaveBalance(ctx context.Context, balance *domain.AccountBalance) error
}

// BalanceRepositoryFacade combines all balance-related repository interfaces
type BalanceRepositoryFacade interface {
	BalanceReader
	BalanceWriter
}
