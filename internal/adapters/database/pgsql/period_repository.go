package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/corefin/ledgercore/internal/apperrors"
	"github.com/corefin/ledgercore/internal/core/domain"
	portsrepo "github.com/corefin/ledgercore/internal/core/ports/repositories"
	"github.com/corefin/ledgercore/internal/models"
	"github.com/corefin/ledgercore/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxPeriodRepository struct {
	pool *pgxpool.Pool
}

// NewPgxPeriodRepository creates a new repository for accounting period data.
func NewPgxPeriodRepository(pool *pgxpool.Pool) portsrepo.PeriodRepositoryFacade {
	return &PgxPeriodRepository{pool: pool}
}

const periodColumns = `fiscal_year, fiscal_period, status, closed_by, closed_at, reopened_by, reopen_reason, closing_entry_ids, created_at, created_by, last_updated_at, last_updated_by`

// FindPeriod retrieves a period's lifecycle record.
func (r *PgxPeriodRepository) FindPeriod(ctx context.Context, fiscalYear, fiscalPeriod int) (*domain.AccountingPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM accounting_periods WHERE fiscal_year = $1 AND fiscal_period = $2;`
	var m models.AccountingPeriod
	err := r.pool.QueryRow(ctx, query, fiscalYear, fiscalPeriod).Scan(
		&m.FiscalYear,
		&m.FiscalPeriod,
		&m.Status,
		&m.ClosedBy,
		&m.ClosedAt,
		&m.ReopenedBy,
		&m.ReopenReason,
		&m.ClosingEntryIDs,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find period %d-%d: %w", fiscalYear, fiscalPeriod, err)
	}
	period := mapping.ToDomainPeriod(m)
	return &period, nil
}

// SavePeriod persists a new period record.
func (r *PgxPeriodRepository) SavePeriod(ctx context.Context, period domain.AccountingPeriod) error {
	m := mapping.ToModelPeriod(period)
	query := `
		INSERT INTO accounting_periods (` + periodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.pool.Exec(ctx, query,
		m.FiscalYear,
		m.FiscalPeriod,
		m.Status,
		m.ClosedBy,
		m.ClosedAt,
		m.ReopenedBy,
		m.ReopenReason,
		m.ClosingEntryIDs,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return fmt.Errorf("%w: period %d-%d", apperrors.ErrDuplicate, period.FiscalYear, period.FiscalPeriod)
		}
		return fmt.Errorf("failed to insert period %d-%d: %w", period.FiscalYear, period.FiscalPeriod, err)
	}
	return nil
}

// UpdatePeriod updates a period's status and close/reopen metadata.
func (r *PgxPeriodRepository) UpdatePeriod(ctx context.Context, period domain.AccountingPeriod) error {
	m := mapping.ToModelPeriod(period)
	query := `
		UPDATE accounting_periods
		SET status = $3, closed_by = $4, closed_at = $5, reopened_by = $6, reopen_reason = $7,
		    closing_entry_ids = $8, last_updated_at = $9, last_updated_by = $10
		WHERE fiscal_year = $1 AND fiscal_period = $2;
	`
	tag, err := r.pool.Exec(ctx, query,
		m.FiscalYear,
		m.FiscalPeriod,
		m.Status,
		m.ClosedBy,
		m.ClosedAt,
		m.ReopenedBy,
		m.ReopenReason,
		m.ClosingEntryIDs,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update period %d-%d: %w", period.FiscalYear, period.FiscalPeriod, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
