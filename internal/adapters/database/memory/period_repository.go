package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/corefin/ledgercore/internal/apperrors"
	"github.com/corefin/ledgercore/internal/core/domain"
	portsrepo "github.com/corefin/ledgercore/internal/core/ports/repositories"
)

// PeriodRepository is a mutex-guarded in-memory period store.
type PeriodRepository struct {
	mu      sync.RWMutex
	periods map[string]domain.AccountingPeriod
}

// NewPeriodRepository creates an empty in-memory period repository.
func NewPeriodRepository() *PeriodRepository {
	return &PeriodRepository{periods: make(map[string]domain.AccountingPeriod)}
}

var _ portsrepo.PeriodRepositoryFacade = (*PeriodRepository)(nil)

func periodKey(fiscalYear, fiscalPeriod int) string {
	return fmt.Sprintf("%d-%02d", fiscalYear, fiscalPeriod)
}

func (r *PeriodRepository) FindPeriod(_ context.Context, fiscalYear, fiscalPeriod int) (*domain.AccountingPeriod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	period, exists := r.periods[periodKey(fiscalYear, fiscalPeriod)]
	if !exists {
		return nil, apperrors.ErrNotFound
	}
	clone := period
	clone.ClosingEntryIDs = append([]string(nil), period.ClosingEntryIDs...)
	return &clone, nil
}

func (r *PeriodRepository) SavePeriod(_ context.Context, period domain.AccountingPeriod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := periodKey(period.FiscalYear, period.FiscalPeriod)
	if _, exists := r.periods[key]; exists {
		return fmt.Errorf("%w: period %s", apperrors.ErrDuplicate, key)
	}
	r.periods[key] = period
	return nil
}

func (r *PeriodRepository) UpdatePeriod(_ context.Context, period domain.AccountingPeriod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := periodKey(period.FiscalYear, period.FiscalPeriod)
	if _, exists := r.periods[key]; !exists {
		return apperrors.ErrNotFound
	}
	r.periods[key] = period
	return nil
}
