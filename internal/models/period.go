package models

import "time"

// AccountingPeriod is the persistence shape of a period lifecycle row.
type AccountingPeriod struct {
	FiscalYear      int        `db:"fiscal_year"`
	FiscalPeriod    int        `db:"fiscal_period"`
	Status          string     `db:"status"`
	ClosedBy        string     `db:"closed_by"`
	ClosedAt        *time.Time `db:"closed_at"`
	ReopenedBy      string     `db:"reopened_by"`
	ReopenReason    string     `db:"reopen_reason"`
	ClosingEntryIDs []string   `db:"closing_entry_ids"`
	AuditFields
}
