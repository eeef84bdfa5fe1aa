package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/corefin/ledgercore/internal/apperrors"
	"github.com/corefin/ledgercore/internal/core/domain"
	portsrepo "github.com/corefin/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/corefin/ledgercore/internal/core/ports/services"
	"github.com/corefin/ledgercore/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// reportingService recomputes balances and reports from the raw posted lines.
// The cached AccountBalance records are only ever a cross-check here.
type reportingService struct {
	BaseService
	entryRepo   portsrepo.EntryRepositoryFacade
	accountSvc  portssvc.AccountSvcFacade
	balanceRepo portsrepo.BalanceReader
}

// NewReportingService creates a new ReportingService.
func NewReportingService(
	entryRepo portsrepo.EntryRepositoryFacade,
	accountSvc portssvc.AccountSvcFacade,
	balanceRepo portsrepo.BalanceReader,
) portssvc.ReportingSvcFacade {
	return &reportingService{
		entryRepo:   entryRepo,
		accountSvc:  accountSvc,
		balanceRepo: balanceRepo,
	}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// reportingEpoch bounds open-ended account activity scans.
var reportingEpoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// countsTowardBalance reports whether a line in this entry status affects a
// recomputed balance. Reversed originals still count: their effect is undone
// by the posted reversal entry's flipped lines, not by exclusion.
func countsTowardBalance(status domain.EntryStatus, includeUnposted bool) bool {
	switch status {
	case domain.Posted, domain.Reversed:
		return true
	case domain.Draft, domain.PendingApproval, domain.Approved:
		return includeUnposted
	default:
		return false
	}
}

// CalculateAccountBalance recomputes an account's balance as of a date from
// its lines, reporting divergence from the cached running balance.
func (s *reportingService) CalculateAccountBalance(ctx context.Context, accountID string, asOfDate time.Time, includeUnposted bool) domain.AccountBalanceResult {
	result := domain.AccountBalanceResult{
		OperationResult: domain.OperationResult{Success: true},
		AccountID:       accountID,
		AsOfDate:        asOfDate,
		IncludeUnposted: includeUnposted,
	}

	account, err := s.accountSvc.GetAccountByID(ctx, accountID)
	if err != nil {
		result.FailErr(err)
		return result
	}
	result.CurrencyCode = account.CurrencyCode

	activity, err := s.entryRepo.FindActivityByAccountID(ctx, accountID, reportingEpoch, asOfDate)
	if err != nil {
		result.FailErr(fmt.Errorf("failed to load account activity: %w", err))
		return result
	}

	balance := decimal.Zero
	for _, act := range activity {
		if !countsTowardBalance(act.EntryStatus, includeUnposted) {
			continue
		}
		balance = balance.Add(accounting.SignedDelta(account.NormalSide(), act.Line.Side, act.Line.Amount.Amount))
	}
	result.Balance = balance

	cached, err := s.balanceRepo.FindCurrentBalance(ctx, accountID)
	switch {
	case err == nil:
		result.CachedBalance = cached.BalanceAsOf(asOfDate)
		result.Divergence = result.Balance.Sub(result.CachedBalance)
		if !includeUnposted && !result.Divergence.IsZero() {
			result.Warn(fmt.Sprintf("recomputed balance %s diverges from cached balance %s by %s for account %s",
				result.Balance.String(), result.CachedBalance.String(), result.Divergence.String(), account.Code))
			s.LogError(ctx, apperrors.ErrIntegrity, "Cached balance diverges from line recomputation",
				slog.String("account_id", accountID), slog.String("divergence", result.Divergence.String()))
		}
	case !errors.Is(err, apperrors.ErrNotFound):
		result.FailErr(fmt.Errorf("failed to load cached balance: %w", err))
	}
	return result
}

// listAllAccounts pages through the chart of accounts until exhausted.
func (s *reportingService) listAllAccounts(ctx context.Context, accountTypes []domain.AccountType) ([]domain.Account, error) {
	const pageSize = 200
	var all []domain.Account
	for offset := 0; ; offset += pageSize {
		page, err := s.accountSvc.ListAccounts(ctx, accountTypes, pageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}

// GenerateTrialBalance builds the debit/credit column report over the in-scope
// accounts, each balance recomputed from lines. Debits must equal credits; a
// discrepancy marks the report unbalanced rather than failing it, so the
// defect is visible to reviewers.
func (s *reportingService) GenerateTrialBalance(ctx context.Context, asOfDate time.Time, includeZeroBalances bool, currencyCode string, accountTypes []domain.AccountType) (*domain.TrialBalanceReport, error) {
	accounts, err := s.listAllAccounts(ctx, accountTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	report := &domain.TrialBalanceReport{
		AsOfDate:     asOfDate,
		CurrencyCode: currencyCode,
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}

	for _, account := range accounts {
		if currencyCode != "" && account.CurrencyCode != currencyCode {
			continue
		}

		calc := s.CalculateAccountBalance(ctx, account.AccountID, asOfDate, false)
		if !calc.Success {
			return nil, fmt.Errorf("%w: failed to compute balance for account %s: %v", apperrors.ErrInternal, account.Code, calc.Errors)
		}
		if calc.Balance.IsZero() && !includeZeroBalances {
			continue
		}

		row := domain.TrialBalanceRow{
			AccountID:   account.AccountID,
			AccountCode: account.Code,
			AccountName: account.Name,
			AccountType: account.AccountType,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
		// A positive balance sits on the account's normal side; a negative
		// (contra) balance flips to the opposite column with its sign dropped.
		column := account.NormalSide()
		magnitude := calc.Balance
		if magnitude.IsNegative() {
			column = column.Opposite()
			magnitude = magnitude.Neg()
		}
		if column == domain.Debit {
			row.Debit = magnitude
			report.TotalDebits = report.TotalDebits.Add(magnitude)
		} else {
			row.Credit = magnitude
			report.TotalCredits = report.TotalCredits.Add(magnitude)
		}
		report.Rows = append(report.Rows, row)
	}

	sort.Slice(report.Rows, func(i, j int) bool {
		return report.Rows[i].AccountCode < report.Rows[j].AccountCode
	})

	report.BalanceDiscrepancy = report.TotalDebits.Sub(report.TotalCredits)
	report.IsBalanced = report.BalanceDiscrepancy.IsZero()
	if !report.IsBalanced {
		s.LogError(ctx, apperrors.ErrIntegrity, "Trial balance does not balance",
			slog.String("as_of", asOfDate.Format(domain.DailyBalanceKeyFormat)),
			slog.String("discrepancy", report.BalanceDiscrepancy.String()))
	}
	return report, nil
}

// GenerateGeneralLedgerReport lists one account's activity in [startDate,
// endDate] with running balances, seeded from the recomputed balance as of the
// day before the window opens.
func (s *reportingService) GenerateGeneralLedgerReport(ctx context.Context, accountID string, startDate, endDate time.Time, includeUnposted bool) (*domain.GeneralLedgerReport, error) {
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: end date %s precedes start date %s", apperrors.ErrValidation,
			endDate.Format(domain.DailyBalanceKeyFormat), startDate.Format(domain.DailyBalanceKeyFormat))
	}

	account, err := s.accountSvc.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	opening := s.CalculateAccountBalance(ctx, accountID, startDate.AddDate(0, 0, -1), includeUnposted)
	if !opening.Success {
		return nil, fmt.Errorf("%w: failed to compute opening balance: %v", apperrors.ErrInternal, opening.Errors)
	}

	activity, err := s.entryRepo.FindActivityByAccountID(ctx, accountID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load account activity: %w", err)
	}

	report := &domain.GeneralLedgerReport{
		AccountID:      accountID,
		AccountName:    account.Name,
		CurrencyCode:   account.CurrencyCode,
		StartDate:      startDate,
		EndDate:        endDate,
		OpeningBalance: opening.Balance,
	}

	running := opening.Balance
	for _, act := range activity {
		if !countsTowardBalance(act.EntryStatus, includeUnposted) {
			continue
		}
		running = running.Add(accounting.SignedDelta(account.NormalSide(), act.Line.Side, act.Line.Amount.Amount))
		report.Rows = append(report.Rows, domain.GeneralLedgerRow{
			EntryID:        act.Line.EntryID,
			EntryNumber:    act.EntryNumber,
			EntryDate:      act.EntryDate,
			Description:    act.Description,
			Side:           act.Line.Side,
			Amount:         act.Line.Amount.Amount,
			RunningBalance: running,
			Posted:         act.EntryStatus == domain.Posted || act.EntryStatus == domain.Reversed,
		})
	}
	report.ClosingBalance = running
	return report, nil
}
