package repositories

import (
	"context"
	"time"

	"github.com/corefin/ledgercore/internal/core/domain"
)

// EntryReader defines read operations for ledger entry data
type EntryReader interface {
	// FindEntryByID retrieves a specific entry, with its lines, by unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error)

	// FindEntryByNumber retrieves an entry by its unique entry number.
	FindEntryByNumber(ctx context.Context, entryNumber string) (*domain.LedgerEntry, error)

	// FindEntriesByDateRange retrieves entries whose entry date falls in [from, to],
	// optionally filtered by status. An empty status list means all statuses.
	FindEntriesByDateRange(ctx context.Context, from, to time.Time, statuses []domain.EntryStatus) ([]domain.LedgerEntry, error)
}

// EntryWriter defines write operations for ledger entry data
type EntryWriter interface {
	// SaveEntry persists a new entry and its lines.
	SaveEntry(ctx context.Context, entry domain.LedgerEntry) error

	// UpdateEntry persists workflow mutations (lines, totals, status, notes) of
	// a not-yet-posted entry.
	UpdateEntry(ctx context.Context, entry domain.LedgerEntry) error

	// MarkPosted atomically persists the posted entry together with every
	// affected account balance. Balance writes are version-checked; the whole
	// operation fails with apperrors.ErrOptimisticLock when any balance was
	// concurrently mutated, leaving no partial state behind.
	MarkPosted(ctx context.Context, entry domain.LedgerEntry, balances []*domain.AccountBalance) error

	// UpdateEntryStatusAndLinks updates the status and reversal linkage of an entry.
	UpdateEntryStatusAndLinks(ctx context.Context, entryID string, status domain.EntryStatus, reversedByEntryID *string, updatedBy string, updatedAt time.Time) error
}

// LineReader defines read operations over ledger lines across entries
type LineReader interface {
	// FindActivityByAccountID retrieves all lines touching an account with
	// entry date in [from, to], paired with their entry headers, in
	// chronological order.
	FindActivityByAccountID(ctx context.Context, accountID string, from, to time.Time) ([]domain.AccountActivity, error)
}

// EntryRepositoryFacade combines all entry-related repository interfaces
// This is a facade for clients that need access to all operations
type EntryRepositoryFacade interface {
	EntryReader
	EntryWriter
	LineReader
}

// EntryRepositoryWithTx extends EntryRepositoryFacade with transaction capabilities
type EntryRepositoryWithTx interface {
	EntryRepositoryFacade
	TransactionManager
}
