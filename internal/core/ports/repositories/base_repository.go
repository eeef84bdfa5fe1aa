package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// RepositoryProvider bundles every repository facade for service wiring.
type RepositoryProvider struct {
	EntryRepo   EntryRepositoryFacade
	AccountRepo AccountRepositoryFacade
	BalanceRepo BalanceRepositoryFacade
	PeriodRepo  PeriodRepositoryFacade
	AuditRepo   AuditRepositoryFacade
}

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	// Begin starts a new database transaction
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit commits a transaction
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback rolls back a transaction
	Rollback(ctx context.Context, tx pgx.Tx) error
}
