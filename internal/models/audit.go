package models

import "time"

// AuditRecord is the persistence shape of one append-only audit-trail row.
type AuditRecord struct {
	AuditID   string    `db:"audit_id"`
	Action    string    `db:"action"`
	EntityID  string    `db:"entity_id"`
	Actor     string    `db:"actor"`
	Timestamp time.Time `db:"timestamp"`
	Details   string    `db:"details"`
}
