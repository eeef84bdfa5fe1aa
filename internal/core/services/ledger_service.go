package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/corefin/ledgercore/internal/apperrors"
	"github.com/corefin/ledgercore/internal/core/domain"
	portsrepo "github.com/corefin/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/corefin/ledgercore/internal/core/ports/services"
	"github.com/corefin/ledgercore/internal/dto"
	"github.com/corefin/ledgercore/internal/platform/metrics"
	"github.com/shopspring/decimal"
)

// ledgerService owns the entry workflow and the posting, batch-posting, and
// reversal paths, including every cross-aggregate invariant along them.
type ledgerService struct {
	BaseService
	entryRepo   portsrepo.EntryRepositoryFacade
	accountSvc  portssvc.AccountSvcFacade
	balanceRepo portsrepo.BalanceRepositoryFacade
	periodRepo  portsrepo.PeriodRepositoryFacade
	auditRepo   portsrepo.AuditRepositoryFacade
	clock       portssvc.Clock
	ids         portssvc.IDGenerator
	policy      PostingPolicy
	metrics     *metrics.Metrics
	retrier     *retrier
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	entryRepo portsrepo.EntryRepositoryFacade,
	accountSvc portssvc.AccountSvcFacade,
	balanceRepo portsrepo.BalanceRepositoryFacade,
	periodRepo portsrepo.PeriodRepositoryFacade,
	auditRepo portsrepo.AuditRepositoryFacade,
	clock portssvc.Clock,
	ids portssvc.IDGenerator,
	policy PostingPolicy,
	m *metrics.Metrics,
) portssvc.LedgerSvcFacade {
	return &ledgerService{
		entryRepo:   entryRepo,
		accountSvc:  accountSvc,
		balanceRepo: balanceRepo,
		periodRepo:  periodRepo,
		auditRepo:   auditRepo,
		clock:       clock,
		ids:         ids,
		policy:      policy,
		metrics:     m,
		retrier:     newRetrier(policy, m),
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// FiscalCoords derives the fiscal year and period (calendar month) of a date.
func FiscalCoords(t time.Time) (int, int) {
	return t.Year(), int(t.Month())
}

// CreateDraftEntry builds and persists a Draft entry from the request.
func (s *ledgerService) CreateDraftEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.LedgerEntry, error) {
	if req.Description == "" {
		return nil, fmt.Errorf("%w: entry description is required", apperrors.ErrValidation)
	}
	if req.CurrencyCode == "" {
		return nil, fmt.Errorf("%w: entry currency code is required", apperrors.ErrValidation)
	}

	now := s.clock.Now()
	entry := &domain.LedgerEntry{
		EntryID:      s.ids.NewID(),
		EntryNumber:  s.ids.NewEntryNumber(now),
		EntryDate:    req.EntryDate,
		Status:       domain.Draft,
		CurrencyCode: req.CurrencyCode,
		Description:  req.Description,
		TotalDebit:   decimal.Zero,
		TotalCredit:  decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	for _, lineReq := range req.Lines {
		currency := lineReq.CurrencyCode
		if currency == "" {
			currency = req.CurrencyCode
		}
		line := domain.LedgerLine{
			LineID:         s.ids.NewID(),
			AccountID:      lineReq.AccountID,
			Side:           lineReq.Side,
			Amount:         domain.NewMoney(lineReq.Amount, currency),
			Description:    lineReq.Description,
			ConversionRate: lineReq.ConversionRate,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}
		if err := entry.AddLine(line); err != nil {
			return nil, err
		}
	}

	if err := s.entryRepo.SaveEntry(ctx, *entry); err != nil {
		s.LogError(ctx, err, "Failed to save draft entry", slog.String("entry_id", entry.EntryID))
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	s.LogInfo(ctx, "Draft entry created", slog.String("entry_id", entry.EntryID), slog.String("entry_number", entry.EntryNumber))
	return entry, nil
}

// GetEntryByID retrieves an entry with its lines.
func (s *ledgerService) GetEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find entry by ID", slog.String("entry_id", entryID))
		}
		return nil, err
	}
	return entry, nil
}

func (s *ledgerService) transition(ctx context.Context, entryID string, mutate func(*domain.LedgerEntry) error) (*domain.LedgerEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := mutate(entry); err != nil {
		return nil, err
	}
	if err := s.entryRepo.UpdateEntry(ctx, *entry); err != nil {
		s.LogError(ctx, err, "Failed to persist entry transition", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}
	return entry, nil
}

// SubmitForApproval moves a Draft entry to PendingApproval.
func (s *ledgerService) SubmitForApproval(ctx context.Context, entryID string, userID string) (*domain.LedgerEntry, error) {
	return s.transition(ctx, entryID, func(e *domain.LedgerEntry) error {
		return e.SubmitForApproval(userID, s.clock.Now())
	})
}

// ApproveEntry moves a PendingApproval entry to Approved.
func (s *ledgerService) ApproveEntry(ctx context.Context, entryID string, approver string) (*domain.LedgerEntry, error) {
	entry, err := s.transition(ctx, entryID, func(e *domain.LedgerEntry) error {
		return e.Approve(approver, s.clock.Now())
	})
	if err == nil {
		s.appendAudit(ctx, domain.AuditEntryApproved, entryID, approver, "entry approved")
	}
	return entry, err
}

// RejectEntry moves a PendingApproval entry to Rejected, recording the reason.
func (s *ledgerService) RejectEntry(ctx context.Context, entryID string, reason string, userID string) (*domain.LedgerEntry, error) {
	entry, err := s.transition(ctx, entryID, func(e *domain.LedgerEntry) error {
		return e.Reject(reason, userID, s.clock.Now())
	})
	if err == nil {
		s.appendAudit(ctx, domain.AuditEntryRejected, entryID, userID, reason)
	}
	return entry, err
}

// ReworkEntry returns a Rejected entry to Draft.
func (s *ledgerService) ReworkEntry(ctx context.Context, entryID string, userID string) (*domain.LedgerEntry, error) {
	return s.transition(ctx, entryID, func(e *domain.LedgerEntry) error {
		return e.ReturnToDraft(userID, s.clock.Now())
	})
}

// validateStructure checks the entry-local invariants: at least two lines,
// balanced totals, and valid line amounts. Zero-amount lines degrade to a
// warning; they cannot arise through the draft workflow but may appear in
// repaired historical data.
func (s *ledgerService) validateStructure(entry *domain.LedgerEntry, result *domain.OperationResult) {
	if len(entry.Lines) < 2 {
		result.Fail(apperrors.KindEmptyEntry, apperrors.ErrEmptyEntry.Error())
	}
	for _, line := range entry.Lines {
		if line.Amount.IsNegative() {
			result.Fail(apperrors.KindNegativeLineAmount,
				fmt.Sprintf("line %s on account %s has negative amount %s", line.LineID, line.AccountID, line.Amount.String()))
		} else if line.Amount.IsZero() {
			result.Warn(fmt.Sprintf("line %s on account %s has zero amount", line.LineID, line.AccountID))
		}
	}
	if !entry.IsBalanced() {
		result.Fail(apperrors.KindUnbalancedEntry,
			fmt.Sprintf("entry %s does not balance: debits %s, credits %s", entry.EntryNumber, entry.TotalDebit.String(), entry.TotalCredit.String()))
	}
}

// validateAccounts checks that every referenced account exists, is active,
// and matches its line's currency. Returns the fetched accounts for reuse.
func (s *ledgerService) validateAccounts(ctx context.Context, entry *domain.LedgerEntry, result *domain.OperationResult) map[string]domain.Account {
	accountIDs := make([]string, 0, len(entry.Lines))
	seen := make(map[string]struct{}, len(entry.Lines))
	for _, line := range entry.Lines {
		if _, ok := seen[line.AccountID]; !ok {
			seen[line.AccountID] = struct{}{}
			accountIDs = append(accountIDs, line.AccountID)
		}
	}

	accounts, err := s.accountSvc.GetAccountsByIDs(ctx, accountIDs)
	if err != nil {
		result.FailErr(fmt.Errorf("failed to fetch accounts: %w", err))
		return nil
	}

	for _, line := range entry.Lines {
		account, found := accounts[line.AccountID]
		if !found {
			result.Fail(apperrors.KindAccountNotFound, fmt.Sprintf("account %s not found", line.AccountID))
			continue
		}
		if !account.IsActive {
			result.Fail(apperrors.KindInactiveAccount, fmt.Sprintf("account %s is inactive", account.Code))
		}
		if line.Amount.CurrencyCode != account.CurrencyCode {
			result.Fail(apperrors.KindCurrencyMismatch,
				fmt.Sprintf("line currency %s does not match account %s currency %s", line.Amount.CurrencyCode, account.Code, account.CurrencyCode))
		}
		if line.Amount.CurrencyCode != entry.CurrencyCode && line.ConversionRate == nil {
			result.Fail(apperrors.KindCurrencyMismatch,
				fmt.Sprintf("line currency %s differs from entry currency %s with no conversion rate", line.Amount.CurrencyCode, entry.CurrencyCode))
		}
	}
	return accounts
}

func (s *ledgerService) checkPeriodOpen(ctx context.Context, postingDate time.Time, result *domain.OperationResult) {
	year, period := FiscalCoords(postingDate)
	record, err := s.periodRepo.FindPeriod(ctx, year, period)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			result.FailErr(fmt.Errorf("failed to check period status: %w", err))
		}
		return // No record means the period has never been closed
	}
	if record.Status == domain.PeriodClosed {
		result.Fail(apperrors.KindPeriodClosed,
			fmt.Sprintf("fiscal period %d-%02d is closed", year, period))
	}
}

// Post validates and posts an entry, applying every line to its account
// balance in one atomic unit. Already-Posted entries short-circuit with a
// warning. When validateBalances is false the account checks are skipped;
// that path is reserved for internally synthesized entries whose accounts
// were just resolved.
func (s *ledgerService) Post(ctx context.Context, entryID string, postingDate time.Time, poster string, validateBalances bool) domain.PostingResult {
	result := domain.PostingResult{OperationResult: domain.OperationResult{Success: true}, EntryID: entryID}

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		result.FailErr(err)
		return result
	}
	result.EntryNumber = entry.EntryNumber

	// Idempotent short-circuit: re-posting an already posted entry is a
	// warning, never a failure, and mutates nothing.
	if entry.Status == domain.Posted {
		result.Warn(fmt.Sprintf("entry %s is already posted", entry.EntryNumber))
		result.PostingDate = entry.PostingDate
		return result
	}
	if entry.Status == domain.Reversed {
		result.Fail(apperrors.KindAlreadyReversed, fmt.Sprintf("entry %s has been reversed", entry.EntryNumber))
		return result
	}

	s.validateStructure(entry, &result.OperationResult)
	if validateBalances {
		s.validateAccounts(ctx, entry, &result.OperationResult)
	}
	s.checkPeriodOpen(ctx, postingDate, &result.OperationResult)
	if !result.Success {
		s.countPostingError(result.Kind)
		return result
	}

	if age := postingDate.Sub(entry.EntryDate); age > time.Duration(s.policy.BackdateWarningDays)*24*time.Hour {
		result.Warn(fmt.Sprintf("entry %s is dated %d days before its posting date; flagged for audit review",
			entry.EntryNumber, int(age.Hours()/24)))
	}

	if err := entry.Post(poster, postingDate); err != nil {
		result.FailErr(err)
		s.countPostingError(result.Kind)
		return result
	}

	if err := s.applyAndPersist(ctx, entry, postingDate, poster); err != nil {
		result.FailErr(err)
		s.countPostingError(result.Kind)
		return result
	}

	result.PostingDate = entry.PostingDate
	if s.metrics != nil {
		s.metrics.EntriesPosted.Inc()
	}
	s.appendAudit(ctx, domain.AuditEntryPosted, entry.EntryID, poster,
		fmt.Sprintf("entry %s posted with %d lines, total %s %s", entry.EntryNumber, len(entry.Lines), entry.TotalDebit.String(), entry.CurrencyCode))
	s.LogInfo(ctx, "Entry posted", slog.String("entry_id", entry.EntryID), slog.String("entry_number", entry.EntryNumber))
	return result
}

// applyAndPersist folds the entry's lines into their account balances and
// writes entry and balances in one atomic repository operation, retrying the
// whole unit from fresh reads on optimistic-lock conflicts.
func (s *ledgerService) applyAndPersist(ctx context.Context, entry *domain.LedgerEntry, postingDate time.Time, poster string) error {
	return s.retrier.Retry(ctx, func() error {
		now := s.clock.Now()
		balancesByAccount := make(map[string]*domain.AccountBalance)
		ordered := make([]*domain.AccountBalance, 0, len(entry.Lines))

		for _, line := range entry.Lines {
			balance, ok := balancesByAccount[line.AccountID]
			if !ok {
				var err error
				balance, err = s.balanceRepo.FindCurrentBalance(ctx, line.AccountID)
				if errors.Is(err, apperrors.ErrNotFound) {
					account, accErr := s.accountSvc.GetAccountByID(ctx, line.AccountID)
					if accErr != nil {
						return fmt.Errorf("%w: ID %s", apperrors.ErrAccountNotFound, line.AccountID)
					}
					year, period := FiscalCoords(postingDate)
					balance = domain.NewAccountBalance(*account, year, period, poster, now)
				} else if err != nil {
					return fmt.Errorf("failed to load balance for account %s: %w", line.AccountID, err)
				}
				balancesByAccount[line.AccountID] = balance
				ordered = append(ordered, balance)
			}
			if line.Amount.IsZero() {
				continue
			}
			if err := balance.PostSide(line.Side, line.Amount, postingDate, poster, now); err != nil {
				return err
			}
		}

		return s.entryRepo.MarkPosted(ctx, *entry, ordered)
	})
}

// BatchPost posts a bounded batch of entries sequentially. Without
// continueOnError, every entry is pre-validated before any posting begins and
// the batch stops at the first posting failure; with it, each entry is
// attempted independently and failures are collected.
func (s *ledgerService) BatchPost(ctx context.Context, entryIDs []string, postingDate time.Time, poster string, continueOnError bool) domain.BatchPostingResult {
	result := domain.BatchPostingResult{OperationResult: domain.OperationResult{Success: true}}

	if len(entryIDs) == 0 {
		result.Warn("batch contains no entries")
		return result
	}
	if len(entryIDs) > s.policy.MaxBatchSize {
		result.Fail(apperrors.KindBatchSizeExceeded,
			fmt.Sprintf("batch of %d entries exceeds maximum of %d", len(entryIDs), s.policy.MaxBatchSize))
		if s.metrics != nil {
			s.metrics.BatchFailures.Inc()
		}
		return result
	}

	if !continueOnError {
		// Pre-validate everything so the batch never leaves a partial trail
		// of postings behind a validation failure.
		for _, entryID := range entryIDs {
			if preErr := s.prevalidate(ctx, entryID); preErr != nil {
				result.Fail(apperrors.KindOf(preErr), fmt.Sprintf("entry %s failed pre-validation: %s", entryID, preErr.Error()))
			}
		}
		if !result.Success {
			if s.metrics != nil {
				s.metrics.BatchFailures.Inc()
			}
			return result
		}
	}

	for _, entryID := range entryIDs {
		posting := s.Post(ctx, entryID, postingDate, poster, true)
		result.Results = append(result.Results, posting)
		result.Attempted++
		if posting.Success {
			result.Posted++
			continue
		}
		result.Failed++
		result.Errors = append(result.Errors, posting.Errors...)
		if result.Kind == apperrors.KindNone {
			result.Kind = posting.Kind
		}
		if !continueOnError {
			result.Success = false
			break
		}
	}

	if result.Failed > 0 {
		result.Success = false
		if s.metrics != nil {
			s.metrics.BatchFailures.Inc()
		}
	} else if s.metrics != nil {
		s.metrics.BatchesPosted.Inc()
	}
	s.LogInfo(ctx, "Batch posting completed",
		slog.Int("attempted", result.Attempted), slog.Int("posted", result.Posted), slog.Int("failed", result.Failed))
	return result
}

// prevalidate runs the posting checks without mutating anything.
func (s *ledgerService) prevalidate(ctx context.Context, entryID string) error {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.Status == domain.Posted {
		return nil // Idempotent at posting time
	}
	if entry.Status != domain.Approved {
		return fmt.Errorf("%w: entry %s has status %s, expected APPROVED", apperrors.ErrInvalidTransition, entry.EntryNumber, entry.Status)
	}

	var check domain.OperationResult
	check.Success = true
	s.validateStructure(entry, &check)
	s.validateAccounts(ctx, entry, &check)
	if !check.Success {
		return fmt.Errorf("%w: %s", kindSentinel(check.Kind), check.Errors[0])
	}
	return nil
}

// Reverse cancels a Posted entry by building, approving, and posting a linked
// entry with every line's side flipped, then marking the original Reversed.
// The original is marked only after the reversal is durably posted.
func (s *ledgerService) Reverse(ctx context.Context, entryID string, reason string, reverser string, reversalDate time.Time, createReversalEntry bool) domain.ReversalResult {
	result := domain.ReversalResult{OperationResult: domain.OperationResult{Success: true}, OriginalEntryID: entryID}

	original, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		result.FailErr(err)
		return result
	}
	if original.Status != domain.Posted {
		result.Fail(apperrors.KindNotPosted,
			fmt.Sprintf("entry %s has status %s, only posted entries can be reversed", original.EntryNumber, original.Status))
		return result
	}
	if original.ReversedByEntryID != nil {
		result.Fail(apperrors.KindAlreadyReversed,
			fmt.Sprintf("entry %s is already reversed by %s", original.EntryNumber, *original.ReversedByEntryID))
		return result
	}

	now := s.clock.Now()

	if createReversalEntry {
		lineIDs := make([]string, len(original.Lines))
		for i := range original.Lines {
			lineIDs[i] = s.ids.NewID()
		}
		reversal, err := original.BuildReversal(s.ids.NewID(), s.ids.NewEntryNumber(now), lineIDs, reversalDate, reason, reverser, now)
		if err != nil {
			result.FailErr(err)
			return result
		}
		if err := s.entryRepo.SaveEntry(ctx, *reversal); err != nil {
			result.FailErr(fmt.Errorf("failed to save reversal entry: %w", err))
			return result
		}
		if err := reversal.SubmitForApproval(reverser, now); err != nil {
			result.FailErr(err)
			return result
		}
		if err := reversal.Approve(reverser, now); err != nil {
			result.FailErr(err)
			return result
		}
		if err := s.entryRepo.UpdateEntry(ctx, *reversal); err != nil {
			result.FailErr(fmt.Errorf("failed to update reversal entry: %w", err))
			return result
		}

		posting := s.Post(ctx, reversal.EntryID, reversalDate, reverser, true)
		if !posting.Success {
			result.Kind = posting.Kind
			result.Success = false
			result.Errors = append(result.Errors, posting.Errors...)
			return result
		}
		result.ReversalEntryID = reversal.EntryID
	} else {
		result.Warn(fmt.Sprintf("entry %s marked reversed without a generated reversal entry", original.EntryNumber))
	}

	// Phase two: the reversal is durably posted, only now flip the original.
	var reversalID *string
	if result.ReversalEntryID != "" {
		id := result.ReversalEntryID
		reversalID = &id
	}
	if err := original.MarkReversed(result.ReversalEntryID, reverser, now); err != nil {
		result.FailErr(err)
		return result
	}
	if err := s.entryRepo.UpdateEntryStatusAndLinks(ctx, original.EntryID, domain.Reversed, reversalID, reverser, now); err != nil {
		result.FailErr(fmt.Errorf("failed to mark original entry reversed: %w", err))
		return result
	}

	if s.metrics != nil {
		s.metrics.EntriesReversed.Inc()
	}
	s.appendAudit(ctx, domain.AuditEntryReversed, original.EntryID, reverser,
		fmt.Sprintf("entry %s reversed: %s", original.EntryNumber, reason))
	s.LogInfo(ctx, "Entry reversed",
		slog.String("entry_id", original.EntryID), slog.String("reversal_entry_id", result.ReversalEntryID))
	return result
}

func (s *ledgerService) countPostingError(kind apperrors.Kind) {
	if s.metrics != nil {
		s.metrics.PostingErrors.WithLabelValues(string(kind)).Inc()
	}
}

func (s *ledgerService) appendAudit(ctx context.Context, action domain.AuditAction, entityID, actor, details string) {
	record := domain.AuditRecord{
		AuditID:   s.ids.NewID(),
		Action:    action,
		EntityID:  entityID,
		Actor:     actor,
		Timestamp: s.clock.Now(),
		Details:   details,
	}
	if err := s.auditRepo.AppendAuditRecord(ctx, record); err != nil {
		// The audit sink is append-only and best effort from the core's view;
		// a write failure must not roll back a committed posting.
		s.LogError(ctx, err, "Failed to append audit record", slog.String("entity_id", entityID), slog.String("action", string(action)))
	}
}

// kindSentinel maps a result kind back to its sentinel for error wrapping in
// pre-validation, where failures travel as errors rather than results.
func kindSentinel(kind apperrors.Kind) error {
	switch kind {
	case apperrors.KindUnbalancedEntry:
		return apperrors.ErrUnbalancedEntry
	case apperrors.KindEmptyEntry:
		return apperrors.ErrEmptyEntry
	case apperrors.KindNegativeLineAmount:
		return apperrors.ErrNegativeLineAmount
	case apperrors.KindCurrencyMismatch:
		return apperrors.ErrCurrencyMismatch
	case apperrors.KindInactiveAccount:
		return apperrors.ErrInactiveAccount
	case apperrors.KindAccountNotFound:
		return apperrors.ErrAccountNotFound
	case apperrors.KindPeriodClosed:
		return apperrors.ErrPeriodClosed
	default:
		return apperrors.ErrValidation
	}
}
