package services

import (
	"context"

	"github.com/corefin/ledgercore/internal/core/domain"
)

// PeriodSvcFacade owns period close and reopen, including the synthesized
// income-summary closing entries.
type PeriodSvcFacade interface {
	// CloseAccountingPeriod validates the period's trial balance, posts one
	// closing entry zeroing Revenue/Expense into the income-summary account,
	// and rolls every account balance into the next period. Fails fast with
	// no partial close.
	CloseAccountingPeriod(ctx context.Context, fiscalYear, fiscalPeriod int, closedBy string, performPreCloseValidation bool) domain.PeriodClosingResult

	// ReopenAccountingPeriod reverses the period's closing entries and
	// restores the period status to open.
	ReopenAccountingPeriod(ctx context.Context, fiscalYear, fiscalPeriod int, reopenedBy string, reason string) domain.PeriodReopenResult
}

// BalanceSvcFacade exposes the out-of-band balance operations that do not run
// through the posting path.
type BalanceSvcFacade interface {
	// ApplyAdjustment applies a signed correction to an account's closing
	// balance, recorded with its own audit entry.
	ApplyAdjustment(ctx context.Context, accountID string, amount domain.Money, reason string, approver string) error

	// Reconcile compares the closing balance against an external balance and
	// reports the variance without mutating anything.
	Reconcile(ctx context.Context, accountID string, externalBalance domain.Money, actor string) domain.ReconciliationResult

	// StartNewFiscalYear rolls every account balance into the given year,
	// resetting year-to-date counters and daily history.
	StartNewFiscalYear(ctx context.Context, year int, actor string) error
}
