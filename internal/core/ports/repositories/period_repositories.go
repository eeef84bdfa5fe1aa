package repositories

import (
	"context"

	"github.com/corefin/ledgercore/internal/core/domain"
)

// PeriodRepositoryFacade defines persistence for accounting period lifecycle state.
type PeriodRepositoryFacade interface {
	// FindPeriod retrieves a period's lifecycle record.
	FindPeriod(ctx context.Context, fiscalYear, fiscalPeriod int) (*domain.AccountingPeriod, error)

	// SavePeriod persists a new period record.
	SavePeriod(ctx context.Context, period domain.AccountingPeriod) error

	// UpdatePeriod updates a period's status and close/reopen metadata.
	UpdatePeriod(ctx context.Context, period domain.AccountingPeriod) error
}
