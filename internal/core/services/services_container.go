package services

import (
	portsrepo "github.com/corefin/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/corefin/ledgercore/internal/core/ports/services"
	"github.com/corefin/ledgercore/internal/platform/metrics"
	"github.com/corefin/ledgercore/pkg/config"
)

// PolicyFromConfig maps the loaded configuration onto a posting policy.
func PolicyFromConfig(cfg *config.Config) PostingPolicy {
	policy := DefaultPostingPolicy()
	if cfg == nil {
		return policy
	}
	if cfg.MaxBatchSize > 0 {
		policy.MaxBatchSize = cfg.MaxBatchSize
	}
	if cfg.BackdateWarningDays > 0 {
		policy.BackdateWarningDays = cfg.BackdateWarningDays
	}
	if cfg.MaxPostingRetries > 0 {
		policy.MaxPostingRetries = cfg.MaxPostingRetries
	}
	if cfg.RetryInitialBackoff > 0 {
		policy.RetryInitialBackoff = cfg.RetryInitialBackoff
	}
	if cfg.IncomeSummaryAccountCode != "" {
		policy.IncomeSummaryAccountCode = cfg.IncomeSummaryAccountCode
	}
	if cfg.ReconciliationCadenceDays > 0 {
		policy.ReconciliationCadenceDays = cfg.ReconciliationCadenceDays
	}
	if cfg.VarianceAlertPercent > 0 {
		policy.VarianceAlertPercent = cfg.VarianceAlertPercent
	}
	return policy
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(
	policy PostingPolicy,
	repos portsrepo.RepositoryProvider,
	clock portssvc.Clock,
	ids portssvc.IDGenerator,
	m *metrics.Metrics,
) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Account service first since the ledger and reporting services depend on it
	container.Account = NewAccountService(repos.AccountRepo, repos.BalanceRepo, clock, ids)

	container.Ledger = NewLedgerService(
		repos.EntryRepo,
		container.Account,
		repos.BalanceRepo,
		repos.PeriodRepo,
		repos.AuditRepo,
		clock,
		ids,
		policy,
		m,
	)

	container.Reporting = NewReportingService(repos.EntryRepo, container.Account, repos.BalanceRepo)

	container.Balance = NewBalanceService(repos.BalanceRepo, repos.AuditRepo, clock, ids, policy, m)

	container.Period = NewPeriodService(
		container.Ledger,
		container.Reporting,
		repos.AccountRepo,
		repos.BalanceRepo,
		repos.PeriodRepo,
		repos.AuditRepo,
		clock,
		ids,
		policy,
		m,
	)

	return container
}
