package domain

import "time"

// PeriodStatus indicates whether an accounting period accepts postings.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
)

// AccountingPeriod tracks the close/reopen lifecycle of a fiscal period and
// the closing entries synthesized when it was closed.
type AccountingPeriod struct {
	FiscalYear      int          `json:"fiscalYear"`
	FiscalPeriod    int          `json:"fiscalPeriod"`
	Status          PeriodStatus `json:"status"`
	ClosedBy        string       `json:"closedBy"`
	ClosedAt        *time.Time   `json:"closedAt"`
	ReopenedBy      string       `json:"reopenedBy"`
	ReopenReason    string       `json:"reopenReason"`
	ClosingEntryIDs []string     `json:"closingEntryIDs"` // Entries reversed on reopen
	AuditFields
}
