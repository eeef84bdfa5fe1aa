package memory

import (
	portsrepo "github.com/corefin/ledgercore/internal/core/ports/repositories"
)

// NewRepositoryProvider wires a full in-memory repository set sharing one
// balance store, so entry posting and balance reads see the same state.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	balances := NewBalanceRepository()
	return portsrepo.RepositoryProvider{
		EntryRepo:   NewEntryRepository(balances),
		AccountRepo: NewAccountRepository(),
		BalanceRepo: balances,
		PeriodRepo:  NewPeriodRepository(),
		AuditRepo:   NewAuditRepository(),
	}
}
