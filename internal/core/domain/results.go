package domain

import (
	"time"

	"github.com/corefin/ledgercore/internal/apperrors"
	"github.com/shopspring/decimal"
)

// OperationResult is the discriminated outcome shared by every service
// operation: expected business-rule violations come back as structured
// failures, never as panics or bare errors across the component boundary.
type OperationResult struct {
	Success  bool           `json:"success"`
	Kind     apperrors.Kind `json:"kind,omitempty"`
	Errors   []string       `json:"errors,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// Fail records a failure with its machine-checkable kind.
func (r *OperationResult) Fail(kind apperrors.Kind, msg string) {
	r.Success = false
	if r.Kind == apperrors.KindNone {
		r.Kind = kind
	}
	r.Errors = append(r.Errors, msg)
}

// FailErr classifies err and records its message.
func (r *OperationResult) FailErr(err error) {
	r.Fail(apperrors.KindOf(err), err.Error())
}

// Warn records a non-fatal observation.
func (r *OperationResult) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// PostingResult reports the outcome of posting a single entry.
type PostingResult struct {
	OperationResult
	EntryID     string     `json:"entryID"`
	EntryNumber string     `json:"entryNumber"`
	PostingDate *time.Time `json:"postingDate,omitempty"`
}

// BatchPostingResult reports per-entry outcomes for a batch. Partial success
// is explicit: Posted + Failed always account for every attempted entry.
type BatchPostingResult struct {
	OperationResult
	Attempted int             `json:"attempted"`
	Posted    int             `json:"posted"`
	Failed    int             `json:"failed"`
	Results   []PostingResult `json:"results"`
}

// ReversalResult reports the outcome of reversing a posted entry.
type ReversalResult struct {
	OperationResult
	OriginalEntryID string `json:"originalEntryID"`
	ReversalEntryID string `json:"reversalEntryID,omitempty"`
}

// AccountBalanceResult carries a balance recomputed from raw lines alongside
// the cached running balance, enabling divergence detection.
type AccountBalanceResult struct {
	OperationResult
	AccountID       string          `json:"accountID"`
	AsOfDate        time.Time       `json:"asOfDate"`
	CurrencyCode    string          `json:"currencyCode"`
	Balance         decimal.Decimal `json:"balance"`       // Recomputed, the source of truth
	CachedBalance   decimal.Decimal `json:"cachedBalance"` // Running AccountBalance value
	Divergence      decimal.Decimal `json:"divergence"`
	IncludeUnposted bool            `json:"includeUnposted"`
}

// PeriodClosingResult reports the outcome of closing an accounting period.
type PeriodClosingResult struct {
	OperationResult
	FiscalYear      int             `json:"fiscalYear"`
	FiscalPeriod    int             `json:"fiscalPeriod"`
	ClosingEntryIDs []string        `json:"closingEntryIDs,omitempty"`
	NetIncome       decimal.Decimal `json:"netIncome"`
	AccountsClosed  int             `json:"accountsClosed"`
}

// PeriodReopenResult reports the outcome of reopening a closed period.
type PeriodReopenResult struct {
	OperationResult
	FiscalYear       int      `json:"fiscalYear"`
	FiscalPeriod     int      `json:"fiscalPeriod"`
	ReversedEntryIDs []string `json:"reversedEntryIDs,omitempty"`
}

// ReconciliationResult reports the variance between the ledger's closing
// balance and an externally supplied balance. HasVariance is an observable
// signal for audit review, not a failure.
type ReconciliationResult struct {
	OperationResult
	AccountID       string          `json:"accountID"`
	LedgerBalance   decimal.Decimal `json:"ledgerBalance"`
	ExternalBalance decimal.Decimal `json:"externalBalance"`
	Variance        decimal.Decimal `json:"variance"`
	HasVariance     bool            `json:"hasVariance"`
	VarianceAlert   bool            `json:"varianceAlert"` // Variance exceeds the configured alert threshold
}
