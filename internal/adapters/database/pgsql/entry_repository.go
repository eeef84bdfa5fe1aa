package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/corefin/ledgercore/internal/apperrors"
	"github.com/corefin/ledgercore/internal/core/domain"
	portsrepo "github.com/corefin/ledgercore/internal/core/ports/repositories"
	"github.com/corefin/ledgercore/internal/models"
	"github.com/corefin/ledgercore/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxEntryRepository struct {
	pool *pgxpool.Pool
}

// NewPgxEntryRepository creates a new repository for entry and line data.
func NewPgxEntryRepository(pool *pgxpool.Pool) portsrepo.EntryRepositoryFacade {
	return &PgxEntryRepository{pool: pool}
}

const entryColumns = `entry_id, entry_number, entry_date, posting_date, status, currency_code, description, notes, total_debit, total_credit, reversal_of_entry_id, reversed_by_entry_id, approved_by, posted_by, created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, account_id, side, amount, currency_code, description, conversion_rate, created_at, created_by, last_updated_at, last_updated_by`

const lineInsertQuery = `
	INSERT INTO ledger_lines (` + lineColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
`

func scanEntry(row pgx.Row) (*models.LedgerEntry, error) {
	var m models.LedgerEntry
	err := row.Scan(
		&m.EntryID,
		&m.EntryNumber,
		&m.EntryDate,
		&m.PostingDate,
		&m.Status,
		&m.CurrencyCode,
		&m.Description,
		&m.Notes,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.ReversalOfEntryID,
		&m.ReversedByEntryID,
		&m.ApprovedBy,
		&m.PostedBy,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanLine(row pgx.Row) (*models.LedgerLine, error) {
	var m models.LedgerLine
	err := row.Scan(
		&m.LineID,
		&m.EntryID,
		&m.AccountID,
		&m.Side,
		&m.Amount,
		&m.CurrencyCode,
		&m.Description,
		&m.ConversionRate,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func queueLineInserts(batch *pgx.Batch, entry domain.LedgerEntry) {
	for _, line := range entry.Lines {
		m := mapping.ToModelLine(line)
		batch.Queue(lineInsertQuery,
			m.LineID,
			entry.EntryID,
			m.AccountID,
			m.Side,
			m.Amount,
			m.CurrencyCode,
			m.Description,
			m.ConversionRate,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}
}

func insertEntryHeader(ctx context.Context, tx pgx.Tx, m models.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := tx.Exec(ctx, query,
		m.EntryID,
		m.EntryNumber,
		m.EntryDate,
		m.PostingDate,
		m.Status,
		m.CurrencyCode,
		m.Description,
		m.Notes,
		m.TotalDebit,
		m.TotalCredit,
		m.ReversalOfEntryID,
		m.ReversedByEntryID,
		m.ApprovedBy,
		m.PostedBy,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	return err
}

// SaveEntry persists a new entry header and all its lines in one transaction.
func (r *PgxEntryRepository) SaveEntry(ctx context.Context, entry domain.LedgerEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := insertEntryHeader(ctx, tx, mapping.ToModelEntry(entry)); err != nil {
		return fmt.Errorf("failed to insert entry %s: %w", entry.EntryID, err)
	}

	batch := &pgx.Batch{}
	queueLineInserts(batch, entry)
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to execute line batch for entry %s: %w", entry.EntryID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit entry %s: %w", entry.EntryID, err)
	}
	return nil
}

func updateEntryHeader(ctx context.Context, tx pgx.Tx, m models.LedgerEntry) error {
	query := `
		UPDATE ledger_entries
		SET entry_date = $2, posting_date = $3, status = $4, description = $5, notes = $6,
		    total_debit = $7, total_credit = $8, reversal_of_entry_id = $9, reversed_by_entry_id = $10,
		    approved_by = $11, posted_by = $12, last_updated_at = $13, last_updated_by = $14
		WHERE entry_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		m.EntryID,
		m.EntryDate,
		m.PostingDate,
		m.Status,
		m.Description,
		m.Notes,
		m.TotalDebit,
		m.TotalCredit,
		m.ReversalOfEntryID,
		m.ReversedByEntryID,
		m.ApprovedBy,
		m.PostedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateEntry persists workflow mutations of a not-yet-posted entry. Lines are
// replaced wholesale since drafts may add, remove, or change them.
func (r *PgxEntryRepository) UpdateEntry(ctx context.Context, entry domain.LedgerEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := updateEntryHeader(ctx, tx, mapping.ToModelEntry(entry)); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update entry %s: %w", entry.EntryID, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM ledger_lines WHERE entry_id = $1;`, entry.EntryID); err != nil {
		return fmt.Errorf("failed to clear lines for entry %s: %w", entry.EntryID, err)
	}
	batch := &pgx.Batch{}
	queueLineInserts(batch, entry)
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to execute line batch for entry %s: %w", entry.EntryID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit entry %s: %w", entry.EntryID, err)
	}
	return nil
}

// MarkPosted persists the posted entry header together with every affected
// account balance in a single transaction. Balance writes are version-checked;
// any stale version aborts the whole transaction with ErrOptimisticLock so the
// caller can retry from fresh reads. The ledgers never see a half-applied post.
func (r *PgxEntryRepository) MarkPosted(ctx context.Context, entry domain.LedgerEntry, balances []*domain.AccountBalance) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := updateEntryHeader(ctx, tx, mapping.ToModelEntry(entry)); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update entry %s: %w", entry.EntryID, err)
	}

	for _, balance := range balances {
		if err := saveBalanceTx(ctx, tx, balance); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit posting of entry %s: %w", entry.EntryID, err)
	}
	for _, balance := range balances {
		balance.Version++
	}
	return nil
}

// UpdateEntryStatusAndLinks updates the status and reversal linkage of an entry.
func (r *PgxEntryRepository) UpdateEntryStatusAndLinks(ctx context.Context, entryID string, status domain.EntryStatus, reversedByEntryID *string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE ledger_entries
		SET status = $2, reversed_by_entry_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE entry_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query, entryID, string(status), reversedByEntryID, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update status of entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxEntryRepository) loadLines(ctx context.Context, entryID string) ([]domain.LedgerLine, error) {
	query := `SELECT ` + lineColumns + ` FROM ledger_lines WHERE entry_id = $1 ORDER BY created_at, line_id;`
	rows, err := r.pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	lines := []models.LedgerLine{}
	for rows.Next() {
		m, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row for entry %s: %w", entryID, err)
		}
		lines = append(lines, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows for entry %s: %w", entryID, err)
	}
	return mapping.ToDomainLineSlice(lines), nil
}

func (r *PgxEntryRepository) findEntry(ctx context.Context, where string, arg any) (*domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE ` + where + ` = $1;`
	m, err := scanEntry(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by %s %v: %w", where, arg, err)
	}

	entry := mapping.ToDomainEntry(*m)
	entry.Lines, err = r.loadLines(ctx, entry.EntryID)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindEntryByID retrieves an entry with its lines by ID.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	return r.findEntry(ctx, "entry_id", entryID)
}

// FindEntryByNumber retrieves an entry with its lines by entry number.
func (r *PgxEntryRepository) FindEntryByNumber(ctx context.Context, entryNumber string) (*domain.LedgerEntry, error) {
	return r.findEntry(ctx, "entry_number", entryNumber)
}

// FindEntriesByDateRange retrieves entry headers in [from, to], optionally
// filtered by status. Lines are not loaded for range scans.
func (r *PgxEntryRepository) FindEntriesByDateRange(ctx context.Context, from, to time.Time, statuses []domain.EntryStatus) ([]domain.LedgerEntry, error) {
	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE entry_date >= $1 AND entry_date <= $2
		  AND (cardinality($3::text[]) = 0 OR status = ANY($3))
		ORDER BY entry_date, entry_number;
	`
	rows, err := r.pool.Query(ctx, query, from, to, statusStrings)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries by date range: %w", err)
	}
	defer rows.Close()

	entries := []domain.LedgerEntry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, mapping.ToDomainEntry(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}
	return entries, nil
}

// FindActivityByAccountID retrieves every line touching the account with entry
// date in [from, to], paired with its entry header, in chronological order.
func (r *PgxEntryRepository) FindActivityByAccountID(ctx context.Context, accountID string, from, to time.Time) ([]domain.AccountActivity, error) {
	query := `
		SELECT l.line_id, l.entry_id, l.account_id, l.side, l.amount, l.currency_code, l.description, l.conversion_rate,
		       l.created_at, l.created_by, l.last_updated_at, l.last_updated_by,
		       e.entry_number, e.entry_date, e.status, e.description, e.posting_date
		FROM ledger_lines l
		JOIN ledger_entries e ON e.entry_id = l.entry_id
		WHERE l.account_id = $1 AND e.entry_date >= $2 AND e.entry_date <= $3
		ORDER BY e.entry_date, e.entry_number, l.created_at;
	`
	rows, err := r.pool.Query(ctx, query, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity for account %s: %w", accountID, err)
	}
	defer rows.Close()

	activity := []domain.AccountActivity{}
	for rows.Next() {
		var line models.LedgerLine
		var act domain.AccountActivity
		var status string
		if err := rows.Scan(
			&line.LineID,
			&line.EntryID,
			&line.AccountID,
			&line.Side,
			&line.Amount,
			&line.CurrencyCode,
			&line.Description,
			&line.ConversionRate,
			&line.CreatedAt,
			&line.CreatedBy,
			&line.LastUpdatedAt,
			&line.LastUpdatedBy,
			&act.EntryNumber,
			&act.EntryDate,
			&status,
			&act.Description,
			&act.PostingDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity row for account %s: %w", accountID, err)
		}
		act.Line = mapping.ToDomainLine(line)
		act.EntryStatus = domain.EntryStatus(status)
		activity = append(activity, act)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows for account %s: %w", accountID, err)
	}
	return activity, nil
}
