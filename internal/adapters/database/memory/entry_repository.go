package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/corefin/ledgercore/internal/apperrors"
	"github.com/corefin/ledgercore/internal/core/domain"
	portsrepo "github.com/corefin/ledgercore/internal/core/ports/repositories"
)

// EntryRepository is a mutex-guarded in-memory entry store. It shares the
// balance repository so MarkPosted can mimic the transactional all-or-nothing
// write of the SQL adapter.
type EntryRepository struct {
	mu       sync.RWMutex
	entries  map[string]domain.LedgerEntry
	byNumber map[string]string
	balances *BalanceRepository
}

// NewEntryRepository creates an in-memory entry repository writing balances
// through the given balance repository.
func NewEntryRepository(balances *BalanceRepository) *EntryRepository {
	return &EntryRepository{
		entries:  make(map[string]domain.LedgerEntry),
		byNumber: make(map[string]string),
		balances: balances,
	}
}

var _ portsrepo.EntryRepositoryFacade = (*EntryRepository)(nil)

func cloneEntry(e domain.LedgerEntry) domain.LedgerEntry {
	clone := e
	clone.Lines = append([]domain.LedgerLine(nil), e.Lines...)
	clone.Notes = append([]string(nil), e.Notes...)
	return clone
}

func (r *EntryRepository) SaveEntry(_ context.Context, entry domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[entry.EntryID]; exists {
		return apperrors.ErrDuplicate
	}
	r.entries[entry.EntryID] = cloneEntry(entry)
	r.byNumber[entry.EntryNumber] = entry.EntryID
	return nil
}

func (r *EntryRepository) UpdateEntry(_ context.Context, entry domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[entry.EntryID]; !exists {
		return apperrors.ErrNotFound
	}
	r.entries[entry.EntryID] = cloneEntry(entry)
	return nil
}

func (r *EntryRepository) MarkPosted(ctx context.Context, entry domain.LedgerEntry, balances []*domain.AccountBalance) error {
	// Check every balance version before mutating anything so a conflict
	// leaves no partial state, matching the SQL adapter's transaction.
	if err := r.balances.checkVersions(balances); err != nil {
		return err
	}

	r.mu.Lock()
	if _, exists := r.entries[entry.EntryID]; !exists {
		r.mu.Unlock()
		return apperrors.ErrNotFound
	}
	r.entries[entry.EntryID] = cloneEntry(entry)
	r.mu.Unlock()

	for _, balance := range balances {
		if err := r.balances.SaveBalance(ctx, balance); err != nil {
			return err
		}
	}
	return nil
}

func (r *EntryRepository) UpdateEntryStatusAndLinks(_ context.Context, entryID string, status domain.EntryStatus, reversedByEntryID *string, updatedBy string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, exists := r.entries[entryID]
	if !exists {
		return apperrors.ErrNotFound
	}
	entry.Status = status
	entry.ReversedByEntryID = reversedByEntryID
	entry.LastUpdatedAt = updatedAt
	entry.LastUpdatedBy = updatedBy
	r.entries[entryID] = entry
	return nil
}

func (r *EntryRepository) FindEntryByID(_ context.Context, entryID string) (*domain.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, exists := r.entries[entryID]
	if !exists {
		return nil, apperrors.ErrNotFound
	}
	clone := cloneEntry(entry)
	return &clone, nil
}

func (r *EntryRepository) FindEntryByNumber(_ context.Context, entryNumber string) (*domain.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entryID, exists := r.byNumber[entryNumber]
	if !exists {
		return nil, apperrors.ErrNotFound
	}
	clone := cloneEntry(r.entries[entryID])
	return &clone, nil
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func (r *EntryRepository) FindEntriesByDateRange(_ context.Context, from, to time.Time, statuses []domain.EntryStatus) ([]domain.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[domain.EntryStatus]struct{}, len(statuses))
	for _, s := range statuses {
		wanted[s] = struct{}{}
	}

	entries := []domain.LedgerEntry{}
	for _, entry := range r.entries {
		if !inRange(entry.EntryDate, from, to) {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[entry.Status]; !ok {
				continue
			}
		}
		entries = append(entries, cloneEntry(entry))
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].EntryDate.Equal(entries[j].EntryDate) {
			return entries[i].EntryDate.Before(entries[j].EntryDate)
		}
		return entries[i].EntryNumber < entries[j].EntryNumber
	})
	return entries, nil
}

func (r *EntryRepository) FindActivityByAccountID(_ context.Context, accountID string, from, to time.Time) ([]domain.AccountActivity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	activity := []domain.AccountActivity{}
	for _, entry := range r.entries {
		if !inRange(entry.EntryDate, from, to) {
			continue
		}
		for _, line := range entry.Lines {
			if line.AccountID != accountID {
				continue
			}
			activity = append(activity, domain.AccountActivity{
				Line:        line,
				EntryNumber: entry.EntryNumber,
				EntryDate:   entry.EntryDate,
				EntryStatus: entry.Status,
				Description: entry.Description,
				PostingDate: entry.PostingDate,
			})
		}
	}
	sort.Slice(activity, func(i, j int) bool {
		if !activity[i].EntryDate.Equal(activity[j].EntryDate) {
			return activity[i].EntryDate.Before(activity[j].EntryDate)
		}
		return activity[i].EntryNumber < activity[j].EntryNumber
	})
	return activity, nil
}
