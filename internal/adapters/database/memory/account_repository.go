package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/corefin/ledgercore/internal/apperrors"
	"github.com/corefin/ledgercore/internal/core/domain"
	portsrepo "github.com/corefin/ledgercore/internal/core/ports/repositories"
)

// AccountRepository is a mutex-guarded in-memory account store.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
	byCode   map[string]string
}

// NewAccountRepository creates an empty in-memory account repository.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[string]domain.Account),
		byCode:   make(map[string]string),
	}
}

var _ portsrepo.AccountRepositoryFacade = (*AccountRepository)(nil)

func (r *AccountRepository) SaveAccount(_ context.Context, account domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byCode[account.Code]; exists {
		return fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, account.Code)
	}
	r.accounts[account.AccountID] = account
	r.byCode[account.Code] = account.AccountID
	return nil
}

func (r *AccountRepository) UpdateAccount(_ context.Context, account domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[account.AccountID]; !exists {
		return apperrors.ErrNotFound
	}
	r.accounts[account.AccountID] = account
	return nil
}

func (r *AccountRepository) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, exists := r.accounts[accountID]
	if !exists {
		return nil, apperrors.ErrNotFound
	}
	return &account, nil
}

func (r *AccountRepository) FindAccountByCode(_ context.Context, code string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	accountID, exists := r.byCode[code]
	if !exists {
		return nil, apperrors.ErrNotFound
	}
	account := r.accounts[accountID]
	return &account, nil
}

func (r *AccountRepository) FindAccountsByIDs(_ context.Context, accountIDs []string) (map[string]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	found := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if account, exists := r.accounts[id]; exists {
			found[id] = account
		}
	}
	return found, nil
}

func (r *AccountRepository) ListAccounts(_ context.Context, accountTypes []domain.AccountType, limit int, offset int) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[domain.AccountType]struct{}, len(accountTypes))
	for _, t := range accountTypes {
		wanted[t] = struct{}{}
	}

	all := make([]domain.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		if len(wanted) > 0 {
			if _, ok := wanted[account.AccountType]; !ok {
				continue
			}
		}
		all = append(all, account)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })

	if offset >= len(all) {
		return []domain.Account{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}
