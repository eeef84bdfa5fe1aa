package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/corefin/ledgercore/internal/adapters/database/memory"
	"github.com/corefin/ledgercore/internal/core/domain"
	portsrepo "github.com/corefin/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/corefin/ledgercore/internal/core/ports/services"
	"github.com/corefin/ledgercore/internal/core/services"
	"github.com/corefin/ledgercore/internal/dto"
	"github.com/corefin/ledgercore/internal/platform/metrics"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// fixedClock is a settable clock so timestamps and backdate checks are
// deterministic.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// seqIDs generates deterministic, ordered identifiers and entry numbers.
type seqIDs struct {
	n int
}

func (g *seqIDs) NewID() string {
	g.n++
	return fmt.Sprintf("id-%04d", g.n)
}

func (g *seqIDs) NewEntryNumber(at time.Time) string {
	g.n++
	return fmt.Sprintf("JE-%s-%04d", at.Format("20060102"), g.n)
}

var (
	_ portssvc.Clock       = (*fixedClock)(nil)
	_ portssvc.IDGenerator = (*seqIDs)(nil)
)

// fixture wires the full service container over in-memory repositories.
type fixture struct {
	t         *testing.T
	ctx       context.Context
	repos     portsrepo.RepositoryProvider
	container *portssvc.ServiceContainer
	clock     *fixedClock
	ids       *seqIDs
	policy    services.PostingPolicy
	audit     *memory.AuditRepository
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithPolicy(t, fastRetryPolicy())
}

func newFixtureWithPolicy(t *testing.T, policy services.PostingPolicy) *fixture {
	t.Helper()
	repos := memory.NewRepositoryProvider()
	clock := &fixedClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	ids := &seqIDs{}
	container := services.NewServiceContainer(policy, repos, clock, ids, metrics.NewNop())
	return &fixture{
		t:         t,
		ctx:       context.Background(),
		repos:     repos,
		container: container,
		clock:     clock,
		ids:       ids,
		policy:    policy,
		audit:     repos.AuditRepo.(*memory.AuditRepository),
	}
}

// rebuildServices rewires the container after a repository has been swapped,
// e.g. for a conflict-injecting wrapper.
func (fx *fixture) rebuildServices() {
	fx.container = services.NewServiceContainer(fx.policy, fx.repos, fx.clock, fx.ids, metrics.NewNop())
}

// fastRetryPolicy keeps the optimistic-lock backoff negligible for tests.
func fastRetryPolicy() services.PostingPolicy {
	policy := services.DefaultPostingPolicy()
	policy.RetryInitialBackoff = time.Millisecond
	return policy
}

func (fx *fixture) createAccount(code, name string, accountType domain.AccountType, currency string) domain.Account {
	fx.t.Helper()
	account, err := fx.container.Account.CreateAccount(fx.ctx, dto.CreateAccountRequest{
		Code:         code,
		Name:         name,
		AccountType:  accountType,
		CurrencyCode: currency,
	}, "tester")
	require.NoError(fx.t, err)
	return *account
}

// seedChart creates the standard four-account chart used across scenarios.
func (fx *fixture) seedChart() (cash, revenue, expense, summary domain.Account) {
	cash = fx.createAccount("1000", "Cash", domain.Asset, "USD")
	summary = fx.createAccount("3900", "Income Summary", domain.Equity, "USD")
	revenue = fx.createAccount("4000", "Sales Revenue", domain.Revenue, "USD")
	expense = fx.createAccount("5000", "Office Expense", domain.Expense, "USD")
	return cash, revenue, expense, summary
}

// approvedEntry drives a two-line balanced entry through draft, submit, and
// approve, ready for posting.
func (fx *fixture) approvedEntry(debitAccountID, creditAccountID, amount string, entryDate time.Time) *domain.LedgerEntry {
	fx.t.Helper()
	entry := fx.draftEntry(debitAccountID, creditAccountID, amount, entryDate)
	_, err := fx.container.Ledger.SubmitForApproval(fx.ctx, entry.EntryID, "tester")
	require.NoError(fx.t, err)
	approved, err := fx.container.Ledger.ApproveEntry(fx.ctx, entry.EntryID, "approver")
	require.NoError(fx.t, err)
	return approved
}

func (fx *fixture) draftEntry(debitAccountID, creditAccountID, amount string, entryDate time.Time) *domain.LedgerEntry {
	fx.t.Helper()
	entry, err := fx.container.Ledger.CreateDraftEntry(fx.ctx, dto.CreateEntryRequest{
		EntryDate:    entryDate,
		CurrencyCode: "USD",
		Description:  "test entry",
		Lines: []dto.CreateLineRequest{
			{AccountID: debitAccountID, Side: domain.Debit, Amount: decimal.RequireFromString(amount)},
			{AccountID: creditAccountID, Side: domain.Credit, Amount: decimal.RequireFromString(amount)},
		},
	}, "tester")
	require.NoError(fx.t, err)
	return entry
}

// postEntry runs the full workflow and posts on the given date.
func (fx *fixture) postEntry(debitAccountID, creditAccountID, amount string, date time.Time) domain.PostingResult {
	fx.t.Helper()
	entry := fx.approvedEntry(debitAccountID, creditAccountID, amount, date)
	result := fx.container.Ledger.Post(fx.ctx, entry.EntryID, date, "poster", true)
	require.True(fx.t, result.Success, "posting failed: %v", result.Errors)
	return result
}

func (fx *fixture) currentBalance(accountID string) *domain.AccountBalance {
	fx.t.Helper()
	balance, err := fx.repos.BalanceRepo.FindCurrentBalance(fx.ctx, accountID)
	require.NoError(fx.t, err)
	return balance
}

func (fx *fixture) auditActions() []domain.AuditAction {
	actions := make([]domain.AuditAction, 0)
	for _, record := range fx.audit.Records() {
		actions = append(actions, record.Action)
	}
	return actions
}

func containsAction(actions []domain.AuditAction, want domain.AuditAction) bool {
	for _, action := range actions {
		if action == want {
			return true
		}
	}
	return false
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
