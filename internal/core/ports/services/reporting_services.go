package services

import (
	"context"
	"time"

	"github.com/corefin/ledgercore/internal/core/domain"
)

// ReportingSvcFacade produces balances and reports by recomputing from posted
// lines, treating the cached running balances only as a cross-check.
type ReportingSvcFacade interface {
	// CalculateAccountBalance recomputes an account's balance as of a date by
	// summing posted (optionally plus unposted) lines, reporting divergence
	// from the cached running balance.
	CalculateAccountBalance(ctx context.Context, accountID string, asOfDate time.Time, includeUnposted bool) domain.AccountBalanceResult

	// GenerateTrialBalance builds the debit/credit column report over the
	// accounts in scope. A currencyCode or accountTypes filter narrows scope;
	// zero-balance accounts are skipped unless includeZeroBalances is set.
	GenerateTrialBalance(ctx context.Context, asOfDate time.Time, includeZeroBalances bool, currencyCode string, accountTypes []domain.AccountType) (*domain.TrialBalanceReport, error)

	// GenerateGeneralLedgerReport lists an account's activity in the window
	// with running balances, seeded from the balance the day before startDate.
	GenerateGeneralLedgerReport(ctx context.Context, accountID string, startDate, endDate time.Time, includeUnposted bool) (*domain.GeneralLedgerReport, error)
}
