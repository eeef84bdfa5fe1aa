package domain

import "time"

// AuditAction names a state transition recorded in the audit trail.
type AuditAction string

const (
	AuditEntryPosted    AuditAction = "ENTRY_POSTED"
	AuditEntryReversed  AuditAction = "ENTRY_REVERSED"
	AuditEntryRejected  AuditAction = "ENTRY_REJECTED"
	AuditEntryApproved  AuditAction = "ENTRY_APPROVED"
	AuditAdjustment     AuditAction = "BALANCE_ADJUSTMENT"
	AuditReconciliation AuditAction = "RECONCILIATION"
	AuditPeriodClosed   AuditAction = "PERIOD_CLOSED"
	AuditPeriodReopened AuditAction = "PERIOD_REOPENED"
)

// AuditRecord is one append-only entry in the audit trail. The core writes
// these after every state transition and never reads them back.
type AuditRecord struct {
	AuditID   string      `json:"auditID"`
	Action    AuditAction `json:"action"`
	EntityID  string      `json:"entityID"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Details   string      `json:"details"`
}
