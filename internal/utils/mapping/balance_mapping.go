package mapping

import (
	"github.com/corefin/ledgercore/internal/core/domain"
	"github.com/corefin/ledgercore/internal/models"
)

// ToModelBalance converts a domain AccountBalance to a model AccountBalance
func ToModelBalance(d domain.AccountBalance) models.AccountBalance {
	return models.AccountBalance{
		AccountID:        d.AccountID,
		AccountType:      string(d.AccountType),
		CurrencyCode:     d.CurrencyCode,
		FiscalYear:       d.FiscalYear,
		FiscalPeriod:     d.FiscalPeriod,
		OpeningBalance:   d.OpeningBalance,
		ClosingBalance:   d.ClosingBalance,
		PeriodDebits:     d.PeriodDebits,
		PeriodCredits:    d.PeriodCredits,
		YTDDebits:        d.YTDDebits,
		YTDCredits:       d.YTDCredits,
		TransactionCount: d.TransactionCount,
		DailyBalances:    d.DailyBalances,
		Version:          d.Version,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBalance converts a model AccountBalance to a domain AccountBalance
func ToDomainBalance(m models.AccountBalance) domain.AccountBalance {
	return domain.AccountBalance{
		AccountID:        m.AccountID,
		AccountType:      domain.AccountType(m.AccountType),
		CurrencyCode:     m.CurrencyCode,
		FiscalYear:       m.FiscalYear,
		FiscalPeriod:     m.FiscalPeriod,
		OpeningBalance:   m.OpeningBalance,
		ClosingBalance:   m.ClosingBalance,
		PeriodDebits:     m.PeriodDebits,
		PeriodCredits:    m.PeriodCredits,
		YTDDebits:        m.YTDDebits,
		YTDCredits:       m.YTDCredits,
		TransactionCount: m.TransactionCount,
		DailyBalances:    m.DailyBalances,
		Version:          m.Version,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}
