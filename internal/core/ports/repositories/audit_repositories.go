package repositories

import (
	"context"

	"github.com/corefin/ledgercore/internal/core/domain"
)

// AuditRepositoryFacade is the append-only audit-trail sink. The core writes
// a record after every state transition and never reads the trail back.
type AuditRepositoryFacade interface {
	AppendAuditRecord(ctx context.Context, record domain.AuditRecord) error
}
