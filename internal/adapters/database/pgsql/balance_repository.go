package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/corefin/ledgercore/internal/apperrors"
	"github.com/corefin/ledgercore/internal/core/domain"
	portsrepo "github.com/corefin/ledgercore/internal/core/ports/repositories"
	"github.com/corefin/ledgercore/internal/models"
	"github.com/corefin/ledgercore/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxBalanceRepository stores one balance row per account. Period close rolls
// the row forward in place, so fiscal_year/fiscal_period describe the row's
// current period rather than keying separate rows.
type PgxBalanceRepository struct {
	pool *pgxpool.Pool
}

// NewPgxBalanceRepository creates a new repository for account balance data.
func NewPgxBalanceRepository(pool *pgxpool.Pool) portsrepo.BalanceRepositoryFacade {
	return &PgxBalanceRepository{pool: pool}
}

const balanceColumns = `account_id, account_type, currency_code, fiscal_year, fiscal_period, opening_balance, closing_balance, period_debits, period_credits, ytd_debits, ytd_credits, transaction_count, daily_balances, version, created_at, created_by, last_updated_at, last_updated_by`

func scanBalance(row pgx.Row) (*models.AccountBalance, error) {
	var m models.AccountBalance
	var dailyJSON []byte
	err := row.Scan(
		&m.AccountID,
		&m.AccountType,
		&m.CurrencyCode,
		&m.FiscalYear,
		&m.FiscalPeriod,
		&m.OpeningBalance,
		&m.ClosingBalance,
		&m.PeriodDebits,
		&m.PeriodCredits,
		&m.YTDDebits,
		&m.YTDCredits,
		&m.TransactionCount,
		&dailyJSON,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	m.DailyBalances = map[string]decimal.Decimal{}
	if len(dailyJSON) > 0 {
		if err := json.Unmarshal(dailyJSON, &m.DailyBalances); err != nil {
			return nil, fmt.Errorf("failed to decode daily balances for account %s: %w", m.AccountID, err)
		}
	}
	return &m, nil
}

// saveBalanceTx writes one balance row inside an existing transaction. A row
// with Version 0 is inserted; otherwise the update is version-checked and a
// stale version fails with ErrOptimisticLock. The stored version is bumped on
// every write; callers bump the in-memory Version only after commit.
func saveBalanceTx(ctx context.Context, tx pgx.Tx, balance *domain.AccountBalance) error {
	m := mapping.ToModelBalance(*balance)
	dailyJSON, err := json.Marshal(m.DailyBalances)
	if err != nil {
		return fmt.Errorf("failed to encode daily balances for account %s: %w", m.AccountID, err)
	}

	if m.Version == 0 {
		query := `
			INSERT INTO account_balances (` + balanceColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 1, $14, $15, $16, $17)
			ON CONFLICT (account_id) DO NOTHING;
		`
		tag, err := tx.Exec(ctx, query,
			m.AccountID,
			m.AccountType,
			m.CurrencyCode,
			m.FiscalYear,
			m.FiscalPeriod,
			m.OpeningBalance,
			m.ClosingBalance,
			m.PeriodDebits,
			m.PeriodCredits,
			m.YTDDebits,
			m.YTDCredits,
			m.TransactionCount,
			dailyJSON,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to insert balance for account %s: %w", m.AccountID, err)
		}
		if tag.RowsAffected() == 0 {
			// Someone created the row first; the caller re-reads and retries.
			return fmt.Errorf("%w: balance for account %s was concurrently created", apperrors.ErrOptimisticLock, m.AccountID)
		}
		return nil
	}

	query := `
		UPDATE account_balances
		SET account_type = $2, currency_code = $3, fiscal_year = $4, fiscal_period = $5,
		    opening_balance = $6, closing_balance = $7, period_debits = $8, period_credits = $9,
		    ytd_debits = $10, ytd_credits = $11, transaction_count = $12, daily_balances = $13,
		    version = version + 1, last_updated_at = $14, last_updated_by = $15
		WHERE account_id = $1 AND version = $16;
	`
	tag, err := tx.Exec(ctx, query,
		m.AccountID,
		m.AccountType,
		m.CurrencyCode,
		m.FiscalYear,
		m.FiscalPeriod,
		m.OpeningBalance,
		m.ClosingBalance,
		m.PeriodDebits,
		m.PeriodCredits,
		m.YTDDebits,
		m.YTDCredits,
		m.TransactionCount,
		dailyJSON,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update balance for account %s: %w", m.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: balance for account %s at version %d", apperrors.ErrOptimisticLock, m.AccountID, m.Version)
	}
	return nil
}

// SaveBalance persists a balance row with the optimistic version check.
func (r *PgxBalanceRepository) SaveBalance(ctx context.Context, balance *domain.AccountBalance) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := saveBalanceTx(ctx, tx, balance); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit balance for account %s: %w", balance.AccountID, err)
	}
	balance.Version++
	return nil
}

// FindBalance retrieves an account's balance row when it sits in the given
// fiscal period.
func (r *PgxBalanceRepository) FindBalance(ctx context.Context, accountID string, fiscalYear, fiscalPeriod int) (*domain.AccountBalance, error) {
	query := `SELECT ` + balanceColumns + ` FROM account_balances WHERE account_id = $1 AND fiscal_year = $2 AND fiscal_period = $3;`
	m, err := scanBalance(r.pool.QueryRow(ctx, query, accountID, fiscalYear, fiscalPeriod))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find balance for account %s: %w", accountID, err)
	}
	balance := mapping.ToDomainBalance(*m)
	return &balance, nil
}

// FindCurrentBalance retrieves an account's balance row.
func (r *PgxBalanceRepository) FindCurrentBalance(ctx context.Context, accountID string) (*domain.AccountBalance, error) {
	query := `SELECT ` + balanceColumns + ` FROM account_balances WHERE account_id = $1;`
	m, err := scanBalance(r.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find current balance for account %s: %w", accountID, err)
	}
	balance := mapping.ToDomainBalance(*m)
	return &balance, nil
}

// ListBalances retrieves every balance row sitting in the given fiscal period.
func (r *PgxBalanceRepository) ListBalances(ctx context.Context, fiscalYear, fiscalPeriod int) ([]*domain.AccountBalance, error) {
	query := `SELECT ` + balanceColumns + ` FROM account_balances WHERE fiscal_year = $1 AND fiscal_period = $2 ORDER BY account_id;`
	rows, err := r.pool.Query(ctx, query, fiscalYear, fiscalPeriod)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances for period %d-%d: %w", fiscalYear, fiscalPeriod, err)
	}
	defer rows.Close()

	balances := []*domain.AccountBalance{}
	for rows.Next() {
		m, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance row: %w", err)
		}
		balance := mapping.ToDomainBalance(*m)
		balances = append(balances, &balance)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance rows: %w", err)
	}
	return balances, nil
}
