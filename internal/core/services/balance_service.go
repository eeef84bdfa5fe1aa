package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/corefin/ledgercore/internal/apperrors"
	"github.com/corefin/ledgercore/internal/core/domain"
	portsrepo "github.com/corefin/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/corefin/ledgercore/internal/core/ports/services"
	"github.com/corefin/ledgercore/internal/platform/metrics"
	"github.com/shopspring/decimal"
)

// balanceService owns the out-of-band balance operations that bypass the
// posting path: adjustments, reconciliation, and the fiscal-year rollover.
type balanceService struct {
	BaseService
	balanceRepo portsrepo.BalanceRepositoryFacade
	auditRepo   portsrepo.AuditRepositoryFacade
	clock       portssvc.Clock
	ids         portssvc.IDGenerator
	policy      PostingPolicy
	metrics     *metrics.Metrics
	retrier     *retrier
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(
	balanceRepo portsrepo.BalanceRepositoryFacade,
	auditRepo portsrepo.AuditRepositoryFacade,
	clock portssvc.Clock,
	ids portssvc.IDGenerator,
	policy PostingPolicy,
	m *metrics.Metrics,
) portssvc.BalanceSvcFacade {
	return &balanceService{
		balanceRepo: balanceRepo,
		auditRepo:   auditRepo,
		clock:       clock,
		ids:         ids,
		policy:      policy,
		metrics:     m,
		retrier:     newRetrier(policy, m),
	}
}

var _ portssvc.BalanceSvcFacade = (*balanceService)(nil)

// ApplyAdjustment applies a signed correction to an account's current closing
// balance. The correction deliberately skips debit/credit totals so the
// reconciliation math stays honest about what was posted versus repaired.
func (s *balanceService) ApplyAdjustment(ctx context.Context, accountID string, amount domain.Money, reason string, approver string) error {
	if reason == "" {
		return fmt.Errorf("%w: an adjustment reason is required", apperrors.ErrValidation)
	}
	if amount.IsZero() {
		return fmt.Errorf("%w: adjustment amount must not be zero", apperrors.ErrZeroLineAmount)
	}

	err := s.retrier.Retry(ctx, func() error {
		balance, err := s.balanceRepo.FindCurrentBalance(ctx, accountID)
		if err != nil {
			return err
		}
		if err := balance.ApplyAdjustment(amount, approver, s.clock.Now()); err != nil {
			return err
		}
		return s.balanceRepo.SaveBalance(ctx, balance)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to apply balance adjustment", slog.String("account_id", accountID))
		return err
	}

	s.appendAudit(ctx, domain.AuditAdjustment, accountID, approver,
		fmt.Sprintf("adjustment of %s applied: %s", amount.String(), reason))
	s.LogInfo(ctx, "Balance adjustment applied",
		slog.String("account_id", accountID), slog.String("amount", amount.String()), slog.String("approver", approver))
	return nil
}

// Reconcile compares an account's closing balance against an externally
// supplied balance. Variance is reported, never corrected here; corrections go
// through ApplyAdjustment with their own approval.
func (s *balanceService) Reconcile(ctx context.Context, accountID string, externalBalance domain.Money, actor string) domain.ReconciliationResult {
	result := domain.ReconciliationResult{
		OperationResult: domain.OperationResult{Success: true},
		AccountID:       accountID,
		ExternalBalance: externalBalance.Amount,
	}

	balance, err := s.balanceRepo.FindCurrentBalance(ctx, accountID)
	if err != nil {
		result.FailErr(err)
		return result
	}
	result.LedgerBalance = balance.ClosingBalance

	variance, err := balance.Reconcile(externalBalance)
	if err != nil {
		result.FailErr(err)
		return result
	}
	result.Variance = variance.Amount
	result.HasVariance = !variance.IsZero()

	if result.HasVariance {
		result.Warn(fmt.Sprintf("account %s has reconciliation variance %s", accountID, variance.String()))
		if exceedsAlertThreshold(variance.Amount, externalBalance.Amount, s.policy.VarianceAlertPercent) {
			result.VarianceAlert = true
			result.Warn(fmt.Sprintf("variance exceeds %.1f%% of the external balance; flagged for review", s.policy.VarianceAlertPercent))
			if s.metrics != nil {
				s.metrics.ReconciliationVariances.Inc()
			}
		}
	}

	s.appendAudit(ctx, domain.AuditReconciliation, accountID, actor,
		fmt.Sprintf("reconciled against external balance %s, variance %s", externalBalance.String(), variance.String()))
	return result
}

// exceedsAlertThreshold reports whether |variance| is more than pct percent of
// |external|. A non-zero variance against a zero external balance always
// alerts.
func exceedsAlertThreshold(variance, external decimal.Decimal, pct float64) bool {
	if variance.IsZero() {
		return false
	}
	if external.IsZero() {
		return true
	}
	threshold := external.Abs().Mul(decimal.NewFromFloat(pct / 100))
	return variance.Abs().GreaterThan(threshold)
}

// StartNewFiscalYear rolls every balance of the prior year's final period into
// period 1 of the given year, resetting year-to-date counters and daily
// history.
func (s *balanceService) StartNewFiscalYear(ctx context.Context, year int, actor string) error {
	priorYear := year - 1
	balances, err := s.balanceRepo.ListBalances(ctx, priorYear, 12)
	if err != nil {
		return fmt.Errorf("failed to list balances for fiscal year %d: %w", priorYear, err)
	}
	if len(balances) == 0 {
		// Period 13 covers ledgers whose December was already closed, which
		// bumps the period past year end.
		balances, err = s.balanceRepo.ListBalances(ctx, priorYear, 13)
		if err != nil {
			return fmt.Errorf("failed to list balances for fiscal year %d: %w", priorYear, err)
		}
	}

	for _, stale := range balances {
		accountID := stale.AccountID
		fiscalPeriod := stale.FiscalPeriod
		err := s.retrier.Retry(ctx, func() error {
			balance, err := s.balanceRepo.FindBalance(ctx, accountID, priorYear, fiscalPeriod)
			if err != nil {
				return err
			}
			balance.StartNewFiscalYear(year, actor, s.clock.Now())
			return s.balanceRepo.SaveBalance(ctx, balance)
		})
		if err != nil {
			return fmt.Errorf("failed to roll account %s into fiscal year %d: %w", accountID, year, err)
		}
	}

	s.LogInfo(ctx, "Fiscal year rollover completed", slog.Int("year", year), slog.Int("accounts", len(balances)))
	return nil
}

func (s *balanceService) appendAudit(ctx context.Context, action domain.AuditAction, entityID, actor, details string) {
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
