package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/corefin/ledgercore/internal/apperrors"
	"github.com/corefin/ledgercore/internal/core/domain"
	portsrepo "github.com/corefin/ledgercore/internal/core/ports/repositories"
	"github.com/corefin/ledgercore/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDraftEntryValidation(t *testing.T) {
	fx := newFixture(t)
	cash, revenue, _, _ := fx.seedChart()
	entryDate := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	_, err := fx.container.Ledger.CreateDraftEntry(fx.ctx, dto.CreateEntryRequest{
		EntryDate:    entryDate,
		CurrencyCode: "USD",
		Lines:        []dto.CreateLineRequest{},
	}, "tester")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = fx.container.Ledger.CreateDraftEntry(fx.ctx, dto.CreateEntryRequest{
		EntryDate:   entryDate,
		Description: "missing currency",
	}, "tester")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = fx.container.Ledger.CreateDraftEntry(fx.ctx, dto.CreateEntryRequest{
		EntryDate:    entryDate,
		CurrencyCode: "USD",
		Description:  "zero line",
		Lines: []dto.CreateLineRequest{
			{AccountID: cash.AccountID, Side: domain.Debit, Amount: decimal.Zero},
			{AccountID: revenue.AccountID, Side: domain.Credit, Amount: decimal.Zero},
		},
	}, "tester")
	assert.ErrorIs(t, err, apperrors.ErrZeroLineAmount)
}

func TestEntryWorkflowRejectAndRework(t *testing.T) {
	fx := newFixture(t)
	cash, revenue, _, _ := fx.seedChart()
	entry := fx.draftEntry(cash.AccountID, revenue.AccountID, "50", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))

	_, err := fx.container.Ledger.SubmitForApproval(fx.ctx, entry.EntryID, "tester")
	require.NoError(t, err)

	rejected, err := fx.container.Ledger.RejectEntry(fx.ctx, entry.EntryID, "wrong account", "approver")
	require.NoError(t, err)
	assert.Equal(t, domain.Rejected, rejected.Status)
	require.Len(t, rejected.Notes, 1)
	assert.Contains(t, rejected.Notes[0], "wrong account")
	assert.True(t, containsAction(fx.auditActions(), domain.AuditEntryRejected))

	reworked, err := fx.container.Ledger.ReworkEntry(fx.ctx, entry.EntryID, "tester")
	require.NoError(t, err)
	assert.Equal(t, domain.Draft, reworked.Status)

	_, err = fx.container.Ledger.SubmitForApproval(fx.ctx, entry.EntryID, "tester")
	require.NoError(t, err)
	approved, err := fx.container.Ledger.ApproveEntry(fx.ctx, entry.EntryID, "approver")
	require.NoError(t, err)
	assert.Equal(t, domain.Approved, approved.Status)
	assert.Equal(t, "approver", approved.ApprovedBy)
}

func TestPostAppliesLinesToBalances(t *testing.T) {
	fx := newFixture(t)
	cash, revenue, _, _ := fx.seedChart()
	postingDate := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	entry := fx.approvedEntry(cash.AccountID, revenue.AccountID, "100", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	result := fx.container.Ledger.Post(fx.ctx, entry.EntryID, postingDate, "poster", true)

	require.True(t, result.Success, "posting failed: %v", result.Errors)
	require.NotNil(t, result.PostingDate)
	assert.True(t, result.PostingDate.Equal(postingDate))

	posted, err := fx.container.Ledger.GetEntryByID(fx.ctx, entry.EntryID)
	require.NoError(t, err)
	assert.Equal(t, domain.Posted, posted.Status)
	assert.Equal(t, "poster", posted.PostedBy)

	cashBalance := fx.currentBalance(cash.AccountID)
	assert.True(t, cashBalance.ClosingBalance.Equal(mustDecimal("100")))
	assert.True(t, cashBalance.PeriodDebits.Equal(mustDecimal("100")))
	assert.Equal(t, 2025, cashBalance.FiscalYear)
	assert.Equal(t, 3, cashBalance.FiscalPeriod)
	assert.Equal(t, int64(1), cashBalance.Version)

	revenueBalance := fx.currentBalance(revenue.AccountID)
	assert.True(t, revenueBalance.ClosingBalance.Equal(mustDecimal("100")))
	assert.True(t, revenueBalance.PeriodCredits.Equal(mustDecimal("100")))

	assert.True(t, containsAction(fx.auditActions(), domain.AuditEntryPosted))
}

func TestPostIsIdempotent(t *testing.T) {
	fx := newFixture(t)
	cash, revenue, _, _ := fx.seedChart()
	postingDate := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	first := fx.postEntry(cash.AccountID, revenue.AccountID, "100", postingDate)

	second := fx.container.Ledger.Post(fx.ctx, first.EntryID, postingDate.AddDate(0, 0, 1), "someone-else", true)
	require.True(t, second.Success)
	require.Len(t, second.Warnings, 1)
	assert.Contains(t, second.Warnings[0], "already posted")
	require.NotNil(t, second.PostingDate)
	assert.True(t, second.PostingDate.Equal(postingDate))

	// Nothing was applied twice.
	assert.True(t, fx.currentBalance(cash.AccountID).ClosingBalance.Equal(mustDecimal("100")))
}

func TestPostRequiresApprovedEntry(t *testing.T) {
	fx := newFixture(t)
	cash, revenue, _, _ := fx.seedChart()
	entry := fx.draftEntry(cash.AccountID, revenue.AccountID, "100", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))

	result := fx.container.Ledger.Post(fx.ctx, entry.EntryID, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "poster", true)
	assert.False(t, result.Success)
	assert.Equal(t, apperrors.KindInvalidTransition, result.Kind)

	_, err := fx.repos.BalanceRepo.FindCurrentBalance(fx.ctx, cash.AccountID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostUnknownEntry(t *testing.T) {
	fx := newFixture(t)
	result := fx.container.Ledger.Post(fx.ctx, "no-such-entry", fx.clock.Now(), "poster", true)
	assert.False(t, result.Success)
	assert.Equal(t, apperrors.KindNotFound, result.Kind)
}

func TestPostAccountNotFound(t *testing.T) {
	fx := newFixture(t)
	cash, _, _, _ := fx.seedChart()
	entry := fx.approvedEntry(cash.AccountID, "ghost-account", "100", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))

	result := fx.container.Ledger.Post(fx.ctx, entry.EntryID, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "poster", true)
	assert.False(t, result.Success)
	assert.Equal(t, apperrors.KindAccountNotFound, result.Kind)
}

func TestPostInactiveAccount(t *testing.T) {
	fx := newFixture(t)
	cash, _, _, _ := fx.seedChart()
	supplies := fx.createAccount("5100", "Supplies", domain.Expense, "USD")
	entry := fx.approvedEntry(supplies.AccountID, cash.AccountID, "40", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))

	require.NoError(t, fx.container.Account.DeactivateAccount(fx.ctx, supplies.AccountID, "admin"))

	result := fx.container.Ledger.Post(fx.ctx, entry.EntryID, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "poster", true)
	assert.False(t, result.Success)
	assert.Equal(t, apperrors.KindInactiveAccount, result.Kind)
}

func TestPostAccountCurrencyMismatch(t *testing.T) {
	fx := newFixture(t)
	cash, _, _, _ := fx.seedChart()
	eurPayable := fx.createAccount("2100", "EUR Payable", domain.Liability, "EUR")
	entry := fx.approvedEntry(cash.AccountID, eurPayable.AccountID, "100", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))

	result := fx.container.Ledger.Post(fx.ctx, entry.EntryID, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "poster", true)
	assert.False(t, result.Success)
	assert.Equal(t, apperrors.KindCurrencyMismatch, result.Kind)
}

func TestPostIntoClosedPeriodRejected(t *testing.T) {
	fx := newFixture(t)
	cash, revenue, _, _ := fx.seedChart()
	now := fx.clock.Now()
	require.NoError(t, fx.repos.PeriodRepo.SavePeriod(fx.ctx, domain.AccountingPeriod{
		FiscalYear:   2025,
		FiscalPeriod: 3,
		Status:       domain.PeriodClosed,
		ClosedBy:     "controller",
		ClosedAt:     &now,
	}))

	entry := fx.approvedEntry(cash.AccountID, revenue.AccountID, "100", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	result := fx.container.Ledger.Post(fx.ctx, entry.EntryID, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "poster", true)
	assert.False(t, result.Success)
	assert.Equal(t, apperrors.KindPeriodClosed, result.Kind)

	// A different, never-closed period still accepts the posting.
	april := fx.container.Ledger.Post(fx.ctx, entry.EntryID, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), "poster", true)
	assert.True(t, april.Success, "posting into open period failed: %v", april.Errors)
}

func TestPostBackdatedEntryWarns(t *testing.T) {
	fx := newFixture(t)
	cash, revenue, _, _ := fx.seedChart()
	entry := fx.approvedEntry(cash.AccountID, revenue.AccountID, "100", time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC))

	result := fx.container.Ledger.Post(fx.ctx, entry.EntryID, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "poster", true)
	require.True(t, result.Success, "posting failed: %v", result.Errors)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "audit review")
}

func TestReverseZeroesBalances(t *testing.T) {
	fx := newFixture(t)
	cash, revenue, _, _ := fx.seedChart()
	postingDate := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	posted := fx.postEntry(cash.AccountID, revenue.AccountID, "100", postingDate)

	reversalDate := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	result := fx.container.Ledger.Reverse(fx.ctx, posted.EntryID, "duplicate capture", "reverser", reversalDate, true)
	require.True(t, result.Success, "reversal failed: %v", result.Errors)
	require.NotEmpty(t, result.ReversalEntryID)

	original, err := fx.container.Ledger.GetEntryByID(fx.ctx, posted.EntryID)
	require.NoError(t, err)
	assert.Equal(t, domain.Reversed, original.Status)
	require.NotNil(t, original.ReversedByEntryID)
	assert.Equal(t, result.ReversalEntryID, *original.ReversedByEntryID)

	reversal, err := fx.container.Ledger.GetEntryByID(fx.ctx, result.ReversalEntryID)
	require.NoError(t, err)
	assert.Equal(t, domain.Posted, reversal.Status)
	require.NotNil(t, reversal.ReversalOfEntryID)
	assert.Equal(t, posted.EntryID, *reversal.ReversalOfEntryID)
	assert.True(t, reversal.IsBalanced())

	assert.True(t, fx.currentBalance(cash.AccountID).ClosingBalance.IsZero())
	assert.True(t, fx.currentBalance(revenue.AccountID).ClosingBalance.IsZero())
	assert.True(t, containsAction(fx.auditActions(), domain.AuditEntryReversed))

	// Only Posted entries reverse; this one is now Reversed.
	again := fx.container.Ledger.Reverse(fx.ctx, posted.EntryID, "again", "reverser", reversalDate, true)
	assert.False(t, again.Success)
	assert.Equal(t, apperrors.KindNotPosted, again.Kind)

	// And re-posting a reversed entry is refused outright.
	repost := fx.container.Ledger.Post(fx.ctx, posted.EntryID, reversalDate, "poster", true)
	assert.False(t, repost.Success)
	assert.Equal(t, apperrors.KindAlreadyReversed, repost.Kind)
}

func TestReverseWithoutReversalEntry(t *testing.T) {
	fx := newFixture(t)
	cash, revenue, _, _ := fx.seedChart()
	postingDate := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	posted := fx.postEntry(cash.AccountID, revenue.AccountID, "100", postingDate)

	result := fx.container.Ledger.Reverse(fx.ctx, posted.EntryID, "migrated externally", "reverser", postingDate, false)
	require.True(t, result.Success, "reversal failed: %v", result.Errors)
	assert.Empty(t, result.ReversalEntryID)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "without a generated reversal entry")

	original, err := fx.container.Ledger.GetEntryByID(fx.ctx, posted.EntryID)
	require.NoError(t, err)
	assert.Equal(t, domain.Reversed, original.Status)
	assert.Nil(t, original.ReversedByEntryID)

	// No reversal entry means the balances keep the original effect.
	assert.True(t, fx.currentBalance(cash.AccountID).ClosingBalance.Equal(mustDecimal("100")))
}

func TestReverseRequiresPostedStatus(t *testing.T) {
	fx := newFixture(t)
	cash, revenue, _, _ := fx.seedChart()
	entry := fx.approvedEntry(cash.AccountID, revenue.AccountID, "100", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))

	result := fx.container.Ledger.Reverse(fx.ctx, entry.EntryID, "reason", "reverser", fx.clock.Now(), true)
	assert.False(t, result.Success)
	assert.Equal(t, apperrors.KindNotPosted, result.Kind)
}

func TestBatchPostHappyPath(t *testing.T) {
	fx := newFixture(t)
	cash, revenue, _, _ := fx.seedChart()
	entryDate := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	ids := make([]string, 0, 3)
	for _, amount := range []string{"10", "20", "30"} {
		ids = append(ids, fx.approvedEntry(cash.AccountID, revenue.AccountID, amount, entryDate).EntryID)
	}

	result := fx.container.Ledger.BatchPost(fx.ctx, ids, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "poster", false)
	require.True(t, result.Success, "batch failed: %v", result.Errors)
	assert.Equal(t, 3, result.Attempted)
	assert.Equal(t, 3, result.Posted)
	assert.Equal(t, 0, result.Failed)
	assert.True(t, fx.currentBalance(cash.AccountID).ClosingBalance.Equal(mustDecimal("60")))
}

func TestBatchPostEmpty(t *testing.T) {
	fx := newFixture(t)
	result := fx.container.Ledger.BatchPost(fx.ctx, nil, fx.clock.Now(), "poster", false)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.Attempted)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "no entries")
}

func TestBatchPostSizeLimit(t *testing.T) {
	policy := fastRetryPolicy()
	policy.MaxBatchSize = 2
	fx := newFixtureWithPolicy(t, policy)
	cash, revenue, _, _ := fx.seedChart()
	entryDate := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	ids := make([]string, 0, 3)
	for _, amount := range []string{"10", "20", "30"} {
		ids = append(ids, fx.approvedEntry(cash.AccountID, revenue.AccountID, amount, entryDate).EntryID)
	}

	result := fx.container.Ledger.BatchPost(fx.ctx, ids, fx.clock.Now(), "poster", false)
	assert.False(t, result.Success)
	assert.Equal(t, apperrors.KindBatchSizeExceeded, result.Kind)
	assert.Equal(t, 0, result.Attempted)
}

func TestBatchPostPrevalidationBlocksAll(t *testing.T) {
	fx := newFixture(t)
	cash, revenue, _, _ := fx.seedChart()
	entryDate := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	good := fx.approvedEntry(cash.AccountID, revenue.AccountID, "10", entryDate)
	stillDraft := fx.draftEntry(cash.AccountID, revenue.AccountID, "20", entryDate)

	result := fx.container.Ledger.BatchPost(fx.ctx, []string{good.EntryID, stillDraft.EntryID},
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "poster", false)
	assert.False(t, result.Success)
	assert.Equal(t, apperrors.KindInvalidTransition, result.Kind)
	assert.Equal(t, 0, result.Attempted)

	// Pre-validation failed, so not even the valid entry was posted.
	entry, err := fx.container.Ledger.GetEntryByID(fx.ctx, good.EntryID)
	require.NoError(t, err)
	assert.Equal(t, domain.Approved, entry.Status)
	_, err = fx.repos.BalanceRepo.FindCurrentBalance(fx.ctx, cash.AccountID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBatchPostContinueOnError(t *testing.T) {
	fx := newFixture(t)
	cash, revenue, _, _ := fx.seedChart()
	entryDate := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	first := fx.approvedEntry(cash.AccountID, revenue.AccountID, "10", entryDate)
	bad := fx.draftEntry(cash.AccountID, revenue.AccountID, "20", entryDate)
	last := fx.approvedEntry(cash.AccountID, revenue.AccountID, "30", entryDate)

	result := fx.container.Ledger.BatchPost(fx.ctx, []string{first.EntryID, bad.EntryID, last.EntryID},
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "poster", true)
	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Attempted)
	assert.Equal(t, 2, result.Posted)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Results, 3)
	assert.True(t, result.Results[0].Success)
	assert.False(t, result.Results[1].Success)
	assert.True(t, result.Results[2].Success)

	// The entries around the failure still landed.
	assert.True(t, fx.currentBalance(cash.AccountID).ClosingBalance.Equal(mustDecimal("40")))
}

// conflictingEntryRepo fails MarkPosted with an optimistic-lock conflict a
// fixed number of times before delegating, simulating concurrent balance
// writers.
type conflictingEntryRepo struct {
	portsrepo.EntryRepositoryFacade
	remaining int
}

func (r *conflictingEntryRepo) MarkPosted(ctx context.Context, entry domain.LedgerEntry, balances []*domain.AccountBalance) error {
	if r.remaining > 0 {
		r.remaining--
		return apperrors.ErrOptimisticLock
	}
	return r.EntryRepositoryFacade.MarkPosted(ctx, entry, balances)
}

func TestPostRetriesOptimisticConflicts(t *testing.T) {
	fx := newFixture(t)
	cash, revenue, _, _ := fx.seedChart()
	fx.repos.EntryRepo = &conflictingEntryRepo{EntryRepositoryFacade: fx.repos.EntryRepo, remaining: 2}
	fx.rebuildServices()

	entry := fx.approvedEntry(cash.AccountID, revenue.AccountID, "100", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	result := fx.container.Ledger.Post(fx.ctx, entry.EntryID, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "poster", true)

	require.True(t, result.Success, "posting failed: %v", result.Errors)
	// Each attempt re-reads the balance, so the effect lands exactly once.
	assert.True(t, fx.currentBalance(cash.AccountID).ClosingBalance.Equal(mustDecimal("100")))
}

func TestPostGivesUpAfterRetryBudget(t *testing.T) {
	fx := newFixture(t)
	cash, revenue, _, _ := fx.seedChart()
	fx.repos.EntryRepo = &conflictingEntryRepo{EntryRepositoryFacade: fx.repos.EntryRepo, remaining: 100}
	fx.rebuildServices()

	entry := fx.approvedEntry(cash.AccountID, revenue.AccountID, "100", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	result := fx.container.Ledger.Post(fx.ctx, entry.EntryID, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "poster", true)

	assert.False(t, result.Success)
	assert.Equal(t, apperrors.KindConcurrency, result.Kind)
	_, err := fx.repos.BalanceRepo.FindCurrentBalance(fx.ctx, cash.AccountID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
