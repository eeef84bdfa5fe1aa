package services

import "time"

// Clock supplies the current time. Injected rather than read from the system
// directly so the core stays deterministic under test.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces the identifiers the core needs: opaque entity ids and
// unique, lexicographically sortable entry numbers.
type IDGenerator interface {
	NewID() string
	NewEntryNumber(at time.Time) string
}

// ServiceContainer holds all the service facades wired against one
// repository provider.
type ServiceContainer struct {
	Account   AccountSvcFacade
	Ledger    LedgerSvcFacade
	Reporting ReportingSvcFacade
	Balance   BalanceSvcFacade
	Period    PeriodSvcFacade
}
