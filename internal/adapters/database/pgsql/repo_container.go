package pgsql

import (
	portsrepo "github.com/corefin/ledgercore/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every pgx-backed repository against one pool.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		EntryRepo:   NewPgxEntryRepository(pool),
		AccountRepo: NewPgxAccountRepository(pool),
		BalanceRepo: NewPgxBalanceRepository(pool),
		PeriodRepo:  NewPgxPeriodRepository(pool),
		AuditRepo:   NewPgxAuditRepository(pool),
	}
}
