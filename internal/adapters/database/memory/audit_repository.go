package memory

import (
	"context"
	"sync"

	"github.com/corefin/ledgercore/internal/core/domain"
	portsrepo "github.com/corefin/ledgercore/internal/core/ports/repositories"
)

// AuditRepository is an append-only in-memory audit trail.
type AuditRepository struct {
	mu      sync.Mutex
	records []domain.AuditRecord
}

// NewAuditRepository creates an empty in-memory audit repository.
func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

var _ portsrepo.AuditRepositoryFacade = (*AuditRepository)(nil)

func (r *AuditRepository) AppendAuditRecord(_ context.Context, record domain.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

// Records returns a copy of the appended records, for assertions in tests.
func (r *AuditRepository) Records() []domain.AuditRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AuditRecord(nil), r.records...)
}
