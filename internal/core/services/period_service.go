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

// periodService owns the period close/reopen lifecycle: it synthesizes the
// income-summary closing entry, posts it through the regular posting path, and
// rolls every account balance forward.
type periodService struct {
	BaseService
	ledgerSvc    portssvc.LedgerSvcFacade
	reportingSvc portssvc.ReportingSvcFacade
	accountRepo  portsrepo.AccountReader
	balanceRepo  portsrepo.BalanceRepositoryFacade
	periodRepo   portsrepo.PeriodRepositoryFacade
	auditRepo    portsrepo.AuditRepositoryFacade
	clock        portssvc.Clock
	ids          portssvc.IDGenerator
	policy       PostingPolicy
	metrics      *metrics.Metrics
	retrier      *retrier
}

// NewPeriodService creates a new PeriodService.
func NewPeriodService(
	ledgerSvc portssvc.LedgerSvcFacade,
	reportingSvc portssvc.ReportingSvcFacade,
	accountRepo portsrepo.AccountReader,
	balanceRepo portsrepo.BalanceRepositoryFacade,
	periodRepo portsrepo.PeriodRepositoryFacade,
	auditRepo portsrepo.AuditRepositoryFacade,
	clock portssvc.Clock,
	ids portssvc.IDGenerator,
	policy PostingPolicy,
	m *metrics.Metrics,
) portssvc.PeriodSvcFacade {
	return &periodService{
		ledgerSvc:    ledgerSvc,
		reportingSvc: reportingSvc,
		accountRepo:  accountRepo,
		balanceRepo:  balanceRepo,
		periodRepo:   periodRepo,
		auditRepo:    auditRepo,
		clock:        clock,
		ids:          ids,
		policy:       policy,
		metrics:      m,
		retrier:      newRetrier(policy, m),
	}
}

var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

// periodEndDate returns the last day of a fiscal period (calendar month).
func periodEndDate(fiscalYear, fiscalPeriod int) time.Time {
	firstOfNext := time.Date(fiscalYear, time.Month(fiscalPeriod), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}

// CloseAccountingPeriod closes a fiscal period: validates the trial balance,
// posts one closing entry folding every Revenue/Expense balance into the
// income-summary account, rolls every balance into the next period, and marks
// the period closed. Any failure before the final mark leaves the period open.
func (s *periodService) CloseAccountingPeriod(ctx context.Context, fiscalYear, fiscalPeriod int, closedBy string, performPreCloseValidation bool) domain.PeriodClosingResult {
	result := domain.PeriodClosingResult{
		OperationResult: domain.OperationResult{Success: true},
		FiscalYear:      fiscalYear,
		FiscalPeriod:    fiscalPeriod,
		NetIncome:       decimal.Zero,
	}

	existing, err := s.periodRepo.FindPeriod(ctx, fiscalYear, fiscalPeriod)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		result.FailErr(fmt.Errorf("failed to load period record: %w", err))
		return result
	}
	if existing != nil && existing.Status == domain.PeriodClosed {
		result.Fail(apperrors.KindPeriodClosed,
			fmt.Sprintf("fiscal period %d-%02d is already closed", fiscalYear, fiscalPeriod))
		return result
	}

	endDate := periodEndDate(fiscalYear, fiscalPeriod)

	if performPreCloseValidation {
		trial, err := s.reportingSvc.GenerateTrialBalance(ctx, endDate, true, "", nil)
		if err != nil {
			result.FailErr(fmt.Errorf("pre-close trial balance failed: %w", err))
			return result
		}
		if !trial.IsBalanced {
			result.Fail(apperrors.KindIntegrity,
				fmt.Sprintf("trial balance is out of balance by %s as of %s; period cannot close",
					trial.BalanceDiscrepancy.String(), endDate.Format(domain.DailyBalanceKeyFormat)))
			return result
		}
	}

	incomeSummary, err := s.accountRepo.FindAccountByCode(ctx, s.policy.IncomeSummaryAccountCode)
	if err != nil {
		result.FailErr(fmt.Errorf("income summary account %s: %w", s.policy.IncomeSummaryAccountCode, err))
		return result
	}

	balances, err := s.balanceRepo.ListBalances(ctx, fiscalYear, fiscalPeriod)
	if err != nil {
		result.FailErr(fmt.Errorf("failed to list period balances: %w", err))
		return result
	}

	closingLines, netIncome := s.buildClosingLines(balances, incomeSummary)
	result.NetIncome = netIncome

	if len(closingLines) > 0 {
		entryID, err := s.postClosingEntry(ctx, closingLines, incomeSummary.CurrencyCode, fiscalYear, fiscalPeriod, endDate, closedBy)
		if err != nil {
			result.FailErr(err)
			return result
		}
		result.ClosingEntryIDs = append(result.ClosingEntryIDs, entryID)
	} else {
		result.Warn(fmt.Sprintf("no revenue or expense activity in period %d-%02d; closing without a closing entry", fiscalYear, fiscalPeriod))
	}

	// The closing entry has moved the temporary balances to zero (net of the
	// income summary). Now roll every balance into the next period.
	closed, err := s.rollBalances(ctx, fiscalYear, fiscalPeriod, closedBy)
	if err != nil {
		result.FailErr(err)
		return result
	}
	result.AccountsClosed = closed

	now := s.clock.Now()
	record := domain.AccountingPeriod{
		FiscalYear:      fiscalYear,
		FiscalPeriod:    fiscalPeriod,
		Status:          domain.PeriodClosed,
		ClosedBy:        closedBy,
		ClosedAt:        &now,
		ClosingEntryIDs: result.ClosingEntryIDs,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     closedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: closedBy,
		},
	}
	if existing != nil {
		record.AuditFields = existing.AuditFields
		record.LastUpdatedAt = now
		record.LastUpdatedBy = closedBy
		err = s.periodRepo.UpdatePeriod(ctx, record)
	} else {
		err = s.periodRepo.SavePeriod(ctx, record)
	}
	if err != nil {
		result.FailErr(fmt.Errorf("failed to persist period close: %w", err))
		return result
	}

	if s.metrics != nil {
		s.metrics.PeriodsClosed.Inc()
	}
	s.appendAudit(ctx, domain.AuditPeriodClosed, fmt.Sprintf("%d-%02d", fiscalYear, fiscalPeriod), closedBy,
		fmt.Sprintf("period closed, net income %s, %d accounts rolled", netIncome.String(), closed))
	s.LogInfo(ctx, "Accounting period closed",
		slog.Int("fiscal_year", fiscalYear), slog.Int("fiscal_period", fiscalPeriod),
		slog.String("net_income", netIncome.String()))
	return result
}

// buildClosingLines derives the closing-entry lines that zero each temporary
// account, plus the single balancing income-summary line. Net income is the
// signed sum moved to the summary: positive for profit.
func (s *periodService) buildClosingLines(balances []*domain.AccountBalance, incomeSummary *domain.Account) ([]dto.CreateLineRequest, decimal.Decimal) {
	var lines []dto.CreateLineRequest
	netIncome := decimal.Zero

	for _, balance := range balances {
		if balance.AccountType.IsBalanceSheet() || balance.ClosingBalance.IsZero() {
			continue
		}
		if balance.AccountID == incomeSummary.AccountID {
			continue
		}

		// Zeroing a temporary account means hitting its opposite side for the
		// balance magnitude; a contra (negative) balance hits the normal side.
		side := domain.NormalSide(balance.AccountType).Opposite()
		magnitude := balance.ClosingBalance
		if magnitude.IsNegative() {
			side = side.Opposite()
			magnitude = magnitude.Neg()
		}
		lines = append(lines, dto.CreateLineRequest{
			AccountID:    balance.AccountID,
			Side:         side,
			Amount:       magnitude,
			CurrencyCode: balance.CurrencyCode,
			Description:  "Period close",
		})

		if balance.AccountType == domain.Revenue {
			netIncome = netIncome.Add(balance.ClosingBalance)
		} else {
			netIncome = netIncome.Sub(balance.ClosingBalance)
		}
	}

	if len(lines) == 0 {
		return nil, netIncome
	}

	// Net income credits the summary (an equity account); a loss debits it.
	summarySide := domain.Credit
	summaryAmount := netIncome
	if summaryAmount.IsNegative() {
		summarySide = domain.Debit
		summaryAmount = summaryAmount.Neg()
	}
	if !summaryAmount.IsZero() {
		lines = append(lines, dto.CreateLineRequest{
			AccountID:    incomeSummary.AccountID,
			Side:         summarySide,
			Amount:       summaryAmount,
			CurrencyCode: incomeSummary.CurrencyCode,
			Description:  "Period close net income",
		})
	}
	return lines, netIncome
}

// postClosingEntry drives a synthesized closing entry through the regular
// draft/approve/post workflow so it carries the same audit trail as any other
// entry.
func (s *periodService) postClosingEntry(ctx context.Context, lines []dto.CreateLineRequest, currencyCode string, fiscalYear, fiscalPeriod int, endDate time.Time, closedBy string) (string, error) {
	req := dto.CreateEntryRequest{
		EntryDate:    endDate,
		CurrencyCode: currencyCode,
		Description:  fmt.Sprintf("Closing entry for period %d-%02d", fiscalYear, fiscalPeriod),
		Lines:        lines,
	}
	entry, err := s.ledgerSvc.CreateDraftEntry(ctx, req, closedBy)
	if err != nil {
		return "", fmt.Errorf("failed to create closing entry: %w", err)
	}
	if _, err := s.ledgerSvc.SubmitForApproval(ctx, entry.EntryID, closedBy); err != nil {
		return "", fmt.Errorf("failed to submit closing entry: %w", err)
	}
	if _, err := s.ledgerSvc.ApproveEntry(ctx, entry.EntryID, closedBy); err != nil {
		return "", fmt.Errorf("failed to approve closing entry: %w", err)
	}
	posting := s.ledgerSvc.Post(ctx, entry.EntryID, endDate, closedBy, true)
	if !posting.Success {
		return "", fmt.Errorf("%w: closing entry rejected: %v", apperrors.ErrInternal, posting.Errors)
	}
	return entry.EntryID, nil
}

// rollBalances applies the carry-forward rule to every balance of the period,
// each write retried through the optimistic-lock retrier.
func (s *periodService) rollBalances(ctx context.Context, fiscalYear, fiscalPeriod int, actor string) (int, error) {
	balances, err := s.balanceRepo.ListBalances(ctx, fiscalYear, fiscalPeriod)
	if err != nil {
		return 0, fmt.Errorf("failed to list balances for roll-forward: %w", err)
	}

	rolled := 0
	for _, stale := range balances {
		accountID := stale.AccountID
		err := s.retrier.Retry(ctx, func() error {
			balance, err := s.balanceRepo.FindBalance(ctx, accountID, fiscalYear, fiscalPeriod)
			if err != nil {
				return err
			}
			balance.ClosePeriod(actor, s.clock.Now())
			return s.balanceRepo.SaveBalance(ctx, balance)
		})
		if err != nil {
			return rolled, fmt.Errorf("failed to roll balance for account %s: %w", accountID, err)
		}
		rolled++
	}
	return rolled, nil
}

// ReopenAccountingPeriod reopens a closed period by marking it open and then
// reversing its closing entries through the regular reversal path. If a
// reversal fails the period is restored to closed, never left half-open.
func (s *periodService) ReopenAccountingPeriod(ctx context.Context, fiscalYear, fiscalPeriod int, reopenedBy string, reason string) domain.PeriodReopenResult {
	result := domain.PeriodReopenResult{
		OperationResult: domain.OperationResult{Success: true},
		FiscalYear:      fiscalYear,
		FiscalPeriod:    fiscalPeriod,
	}

	if reason == "" {
		result.Fail(apperrors.KindValidation, "a reopen reason is required")
		return result
	}

	record, err := s.periodRepo.FindPeriod(ctx, fiscalYear, fiscalPeriod)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			result.Fail(apperrors.KindPeriodNotClosed,
				fmt.Sprintf("fiscal period %d-%02d has never been closed", fiscalYear, fiscalPeriod))
		} else {
			result.FailErr(err)
		}
		return result
	}
	if record.Status != domain.PeriodClosed {
		result.Fail(apperrors.KindPeriodNotClosed,
			fmt.Sprintf("fiscal period %d-%02d is not closed", fiscalYear, fiscalPeriod))
		return result
	}

	now := s.clock.Now()

	// Mark open first so the reversal entries can post into this period.
	reopened := *record
	reopened.Status = domain.PeriodOpen
	reopened.ReopenedBy = reopenedBy
	reopened.ReopenReason = reason
	reopened.LastUpdatedAt = now
	reopened.LastUpdatedBy = reopenedBy
	if err := s.periodRepo.UpdatePeriod(ctx, reopened); err != nil {
		result.FailErr(fmt.Errorf("failed to reopen period: %w", err))
		return result
	}

	reversalDate := periodEndDate(fiscalYear, fiscalPeriod)
	for _, entryID := range record.ClosingEntryIDs {
		reversal := s.ledgerSvc.Reverse(ctx, entryID, fmt.Sprintf("Period reopen: %s", reason), reopenedBy, reversalDate, true)
		if !reversal.Success {
			// Restore the closed state so a failed reopen is not silently
			// treated as an open period.
			restored := *record
			restored.LastUpdatedAt = s.clock.Now()
			restored.LastUpdatedBy = reopenedBy
			if restoreErr := s.periodRepo.UpdatePeriod(ctx, restored); restoreErr != nil {
				s.LogError(ctx, restoreErr, "Failed to restore closed period after reopen failure",
					slog.Int("fiscal_year", fiscalYear), slog.Int("fiscal_period", fiscalPeriod))
			}
			result.Kind = reversal.Kind
			result.Success = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("failed to reverse closing entry %s", entryID))
			result.Errors = append(result.Errors, reversal.Errors...)
			return result
		}
		result.ReversedEntryIDs = append(result.ReversedEntryIDs, reversal.ReversalEntryID)
	}

	if s.metrics != nil {
		s.metrics.PeriodsReopened.Inc()
	}
	s.appendAudit(ctx, domain.AuditPeriodReopened, fmt.Sprintf("%d-%02d", fiscalYear, fiscalPeriod), reopenedBy, reason)
	s.LogInfo(ctx, "Accounting period reopened",
		slog.Int("fiscal_year", fiscalYear), slog.Int("fiscal_period", fiscalPeriod), slog.String("reason", reason))
	return result
}

func (s *periodService) appendAudit(ctx context.Context, action domain.AuditAction, entityID, actor, details string) {
	record := domain.AuditRecord{
		AuditID:   s.ids.NewID(),
		Action:    action,
		EntityID:  entityID,
		Actor:     actor,
		Timestamp: s.clock.Now(),
		Details:   details,
	}
	if err := s.auditRepo.AppendAuditRecord(ctx, record); err != nil {
		s.LogError(ctx, err, "Failed to append audit record", slog.String("entity_id", entityID), slog.String("action", string(action)))
	}
}
