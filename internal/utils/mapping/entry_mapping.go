package mapping

import (
	"github.com/corefin/ledgercore/internal/core/domain"
	"github.com/corefin/ledgercore/internal/models"
)

// ToModelEntry converts a domain LedgerEntry header to a model LedgerEntry
func ToModelEntry(d domain.LedgerEntry) models.LedgerEntry {
	return models.LedgerEntry{
		EntryID:           d.EntryID,
		EntryNumber:       d.EntryNumber,
		EntryDate:         d.EntryDate,
		PostingDate:       d.PostingDate,
		Status:            string(d.Status),
		CurrencyCode:      d.CurrencyCode,
		Description:       d.Description,
		Notes:             d.Notes,
		TotalDebit:        d.TotalDebit,
		TotalCredit:       d.TotalCredit,
		ReversalOfEntryID: d.ReversalOfEntryID,
		ReversedByEntryID: d.ReversedByEntryID,
		ApprovedBy:        d.ApprovedBy,
		PostedBy:          d.PostedBy,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainEntry converts a model LedgerEntry header to a domain LedgerEntry.
// Lines are loaded and attached separately by the repository.
func ToDomainEntry(m models.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:           m.EntryID,
		EntryNumber:       m.EntryNumber,
		EntryDate:         m.EntryDate,
		PostingDate:       m.PostingDate,
		Status:            domain.EntryStatus(m.Status),
		CurrencyCode:      m.CurrencyCode,
		Description:       m.Description,
		Notes:             m.Notes,
		TotalDebit:        m.TotalDebit,
		TotalCredit:       m.TotalCredit,
		ReversalOfEntryID: m.ReversalOfEntryID,
		ReversedByEntryID: m.ReversedByEntryID,
		ApprovedBy:        m.ApprovedBy,
		PostedBy:          m.PostedBy,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLine converts a domain LedgerLine to a model LedgerLine
func ToModelLine(d domain.LedgerLine) models.LedgerLine {
	return models.LedgerLine{
		LineID:         d.LineID,
		EntryID:        d.EntryID,
		AccountID:      d.AccountID,
		Side:           string(d.Side),
		Amount:         d.Amount.Amount,
		CurrencyCode:   d.Amount.CurrencyCode,
		Description:    d.Description,
		ConversionRate: d.ConversionRate,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLine converts a model LedgerLine to a domain LedgerLine
func ToDomainLine(m models.LedgerLine) domain.LedgerLine {
	return domain.LedgerLine{
		LineID:         m.LineID,
		EntryID:        m.EntryID,
		AccountID:      m.AccountID,
		Side:           domain.Side(m.Side),
		Amount:         domain.NewMoney(m.Amount, m.CurrencyCode),
		Description:    m.Description,
		ConversionRate: m.ConversionRate,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLineSlice converts a slice of model LedgerLines to domain LedgerLines
func ToDomainLineSlice(ms []models.LedgerLine) []domain.LedgerLine {
	ds := make([]domain.LedgerLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLine(m)
	}
	return ds
}
