package pgsql

import (
	"context"
	"fmt"

	"github.com/corefin/ledgercore/internal/core/domain"
	portsrepo "github.com/corefin/ledgercore/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAuditRepository struct {
	pool *pgxpool.Pool
}

// NewPgxAuditRepository creates a new repository for the append-only audit trail.
func NewPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{pool: pool}
}

// AppendAuditRecord appends one audit row. There is no update or delete path.
func (r *PgxAuditRepository) AppendAuditRecord(ctx context.Context, record domain.AuditRecord) error {
	query := `
		INSERT INTO audit_records (audit_id, action, entity_id, actor, timestamp, details)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.pool.Exec(ctx, query,
		record.AuditID,
		string(record.Action),
		record.EntityID,
		record.Actor,
		record.Timestamp,
		record.Details,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit record %s: %w", record.AuditID, err)
	}
	return nil
}
