package mapping

import (
	"github.com/corefin/ledgercore/internal/core/domain"
	"github.com/corefin/ledgercore/internal/models"
)

// ToModelPeriod converts a domain AccountingPeriod to a model AccountingPeriod
func ToModelPeriod(d domain.AccountingPeriod) models.AccountingPeriod {
	return models.AccountingPeriod{
		FiscalYear:      d.FiscalYear,
		FiscalPeriod:    d.FiscalPeriod,
		Status:          string(d.Status),
		ClosedBy:        d.ClosedBy,
		ClosedAt:        d.ClosedAt,
		ReopenedBy:      d.ReopenedBy,
		ReopenReason:    d.ReopenReason,
		ClosingEntryIDs: d.ClosingEntryIDs,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPeriod converts a model AccountingPeriod to a domain AccountingPeriod
func ToDomainPeriod(m models.AccountingPeriod) domain.AccountingPeriod {
	return domain.AccountingPeriod{
		FiscalYear:      m.FiscalYear,
		FiscalPeriod:    m.FiscalPeriod,
		Status:          domain.PeriodStatus(m.Status),
		ClosedBy:        m.ClosedBy,
		ClosedAt:        m.ClosedAt,
		ReopenedBy:      m.ReopenedBy,
		ReopenReason:    m.ReopenReason,
		ClosingEntryIDs: m.ClosingEntryIDs,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}
