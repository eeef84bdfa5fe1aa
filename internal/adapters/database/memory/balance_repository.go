package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/corefin/ledgercore/internal/apperrors"
	"github.com/corefin/ledgercore/internal/core/domain"
	portsrepo "github.com/corefin/ledgercore/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// BalanceRepository is a mutex-guarded in-memory balance store with the same
// optimistic versioning contract as the SQL adapter: one row per account,
// rolled forward in place at period close.
type BalanceRepository struct {
	mu       sync.RWMutex
	balances map[string]domain.AccountBalance
}

// NewBalanceRepository creates an empty in-memory balance repository.
func NewBalanceRepository() *BalanceRepository {
	return &BalanceRepository{balances: make(map[string]domain.AccountBalance)}
}

var _ portsrepo.BalanceRepositoryFacade = (*BalanceRepository)(nil)

func cloneBalance(b domain.AccountBalance) domain.AccountBalance {
	clone := b
	clone.DailyBalances = make(map[string]decimal.Decimal, len(b.DailyBalances))
	for k, v := range b.DailyBalances {
		clone.DailyBalances[k] = v
	}
	return clone
}

// checkVersions verifies every balance's version against the store without
// writing, used by the entry repository before its all-or-nothing post.
func (r *BalanceRepository) checkVersions(balances []*domain.AccountBalance) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, balance := range balances {
		stored, exists := r.balances[balance.AccountID]
		if !exists {
			if balance.Version != 0 {
				return fmt.Errorf("%w: balance for account %s was removed", apperrors.ErrOptimisticLock, balance.AccountID)
			}
			continue
		}
		if stored.Version != balance.Version {
			return fmt.Errorf("%w: balance for account %s at version %d, stored %d",
				apperrors.ErrOptimisticLock, balance.AccountID, balance.Version, stored.Version)
		}
	}
	return nil
}

func (r *BalanceRepository) SaveBalance(_ context.Context, balance *domain.AccountBalance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.balances[balance.AccountID]
	if exists {
		if stored.Version != balance.Version {
			return fmt.Errorf("%w: balance for account %s at version %d, stored %d",
				apperrors.ErrOptimisticLock, balance.AccountID, balance.Version, stored.Version)
		}
	} else if balance.Version != 0 {
		return fmt.Errorf("%w: balance for account %s was removed", apperrors.ErrOptimisticLock, balance.AccountID)
	}

	balance.Version++
	r.balances[balance.AccountID] = cloneBalance(*balance)
	return nil
}

func (r *BalanceRepository) FindBalance(_ context.Context, accountID string, fiscalYear, fiscalPeriod int) (*domain.AccountBalance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	balance, exists := r.balances[accountID]
	if !exists || balance.FiscalYear != fiscalYear || balance.FiscalPeriod != fiscalPeriod {
		return nil, apperrors.ErrNotFound
	}
	clone := cloneBalance(balance)
	return &clone, nil
}

func (r *BalanceRepository) FindCurrentBalance(_ context.Context, accountID string) (*domain.AccountBalance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	balance, exists := r.balances[accountID]
	if !exists {
		return nil, apperrors.ErrNotFound
	}
	clone := cloneBalance(balance)
	return &clone, nil
}

func (r *BalanceRepository) ListBalances(_ context.Context, fiscalYear, fiscalPeriod int) ([]*domain.AccountBalance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	balances := []*domain.AccountBalance{}
	for _, balance := range r.balances {
		if balance.FiscalYear != fiscalYear || balance.FiscalPeriod != fiscalPeriod {
			continue
		}
		clone := cloneBalance(balance)
		balances = append(balances, &clone)
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].AccountID < balances[j].AccountID })
	return balances, nil
}
