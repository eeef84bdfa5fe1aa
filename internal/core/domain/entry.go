package domain

import (
	"fmt"
	"time"

	"github.com/corefin/ledgercore/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Side indicates whether a ledger line is a debit or a credit.
type Side string

const (
	Debit  Side = "DEBIT"
	Credit Side = "CREDIT"
)

// Opposite returns the flipped side, used when building reversal entries.
func (s Side) Opposite() Side {
	if s == Debit {
		return Credit
	}
	return Debit
}

// EntryStatus indicates the lifecycle state of a ledger entry.
type EntryStatus string

const (
	Draft           EntryStatus = "DRAFT"
	PendingApproval EntryStatus = "PENDING_APPROVAL"
	Approved        EntryStatus = "APPROVED"
	Posted          EntryStatus = "POSTED"
	Rejected        EntryStatus = "REJECTED"
	Reversed        EntryStatus = "REVERSED"
)

// LedgerLine represents a single debit or credit line within a LedgerEntry,
// affecting one account. Lines never exist outside their owning entry.
type LedgerLine struct {
	LineID         string           `json:"lineID"`
	EntryID        string           `json:"entryID"`
	AccountID      string           `json:"accountID"`
	Side           Side             `json:"side"`
	Amount         Money            `json:"amount"`         // Strictly positive
	Description    string           `json:"description"`    // Nullable
	ConversionRate *decimal.Decimal `json:"conversionRate"` // Set when line currency differs from entry currency
	AuditFields
}

// LedgerEntry is the double-entry aggregate: an ordered list of lines with a
// lifecycle state machine. While Posted, totals are immutable and
// TotalDebit == TotalCredit holds exactly; history is never edited in place,
// only reversed through a linked entry.
type LedgerEntry struct {
	EntryID           string       `json:"entryID"`
	EntryNumber       string       `json:"entryNumber"` // Unique, sortable
	EntryDate         time.Time    `json:"entryDate"`   // Date the event occurred
	PostingDate       *time.Time   `json:"postingDate"` // Set when posted
	Status            EntryStatus  `json:"status"`
	CurrencyCode      string       `json:"currencyCode"` // Base currency of the entry
	Description       string       `json:"description"`
	Notes             []string     `json:"notes"` // Rejection reasons and review annotations
	Lines             []LedgerLine `json:"lines"`
	TotalDebit        decimal.Decimal `json:"totalDebit"`
	TotalCredit       decimal.Decimal `json:"totalCredit"`
	ReversalOfEntryID *string      `json:"reversalOfEntryID"` // Set on a reversal entry
	ReversedByEntryID *string      `json:"reversedByEntryID"` // Back-reference set once reversed
	ApprovedBy        string       `json:"approvedBy"`
	PostedBy          string       `json:"postedBy"`
	AuditFields
}

// recomputeTotals refreshes TotalDebit/TotalCredit after every line mutation.
func (e *LedgerEntry) recomputeTotals() {
	debits := decimal.Zero
	credits := decimal.Zero
	for _, line := range e.Lines {
		if line.Side == Debit {
			debits = debits.Add(line.Amount.Amount)
		} else {
			credits = credits.Add(line.Amount.Amount)
		}
	}
	e.TotalDebit = debits
	e.TotalCredit = credits
}

// IsBalanced reports whether debits equal credits exactly. No epsilon.
func (e *LedgerEntry) IsBalanced() bool {
	return e.TotalDebit.Equal(e.TotalCredit)
}

func (e *LedgerEntry) requireStatus(op string, allowed ...EntryStatus) error {
	for _, s := range allowed {
		if e.Status == s {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot %s entry %s in status %s", apperrors.ErrInvalidTransition, op, e.EntryID, e.Status)
}

func (e *LedgerEntry) validateLine(line LedgerLine) error {
	if line.Amount.IsNegative() {
		return fmt.Errorf("%w: account %s", apperrors.ErrNegativeLineAmount, line.AccountID)
	}
	if line.Amount.IsZero() {
		return fmt.Errorf("%w: account %s", apperrors.ErrZeroLineAmount, line.AccountID)
	}
	if line.Amount.CurrencyCode != e.CurrencyCode && line.ConversionRate == nil {
		return fmt.Errorf("%w: line currency %s does not match entry currency %s and no conversion rate supplied",
			apperrors.ErrCurrencyMismatch, line.Amount.CurrencyCode, e.CurrencyCode)
	}
	return nil
}

// AddLine appends a line to a Draft entry and recomputes totals.
func (e *LedgerEntry) AddLine(line LedgerLine) error {
	if err := e.requireStatus("add line to", Draft); err != nil {
		return err
	}
	if err := e.validateLine(line); err != nil {
		return err
	}
	line.EntryID = e.EntryID
	e.Lines = append(e.Lines, line)
	e.recomputeTotals()
	return nil
}

// RemoveLine deletes a line from a Draft entry and recomputes totals.
func (e *LedgerEntry) RemoveLine(lineID string) error {
	if err := e.requireStatus("remove line from", Draft); err != nil {
		return err
	}
	for i, line := range e.Lines {
		if line.LineID == lineID {
			e.Lines = append(e.Lines[:i], e.Lines[i+1:]...)
			e.recomputeTotals()
			return nil
		}
	}
	return fmt.Errorf("%w: line %s", apperrors.ErrNotFound, lineID)
}

// UpdateLineAmount replaces a Draft line's amount and recomputes totals.
func (e *LedgerEntry) UpdateLineAmount(lineID string, amount Money) error {
	if err := e.requireStatus("update line on", Draft); err != nil {
		return err
	}
	for i := range e.Lines {
		if e.Lines[i].LineID == lineID {
			candidate := e.Lines[i]
			candidate.Amount = amount
			if err := e.validateLine(candidate); err != nil {
				return err
			}
			e.Lines[i].Amount = amount
			e.recomputeTotals()
			return nil
		}
	}
	return fmt.Errorf("%w: line %s", apperrors.ErrNotFound, lineID)
}

// SubmitForApproval moves Draft to PendingApproval after the balance check.
func (e *LedgerEntry) SubmitForApproval(actor string, now time.Time) error {
	if err := e.requireStatus("submit", Draft); err != nil {
		return err
	}
	if len(e.Lines) < 2 {
		return apperrors.ErrEmptyEntry
	}
	if !e.IsBalanced() {
		return fmt.Errorf("%w: debits %s, credits %s", apperrors.ErrUnbalancedEntry,
			e.TotalDebit.String(), e.TotalCredit.String())
	}
	e.Status = PendingApproval
	e.touch(actor, now)
	return nil
}

// Approve moves PendingApproval to Approved, recording the approver.
func (e *LedgerEntry) Approve(approver string, now time.Time) error {
	if err := e.requireStatus("approve", PendingApproval); err != nil {
		return err
	}
	e.Status = Approved
	e.ApprovedBy = approver
	e.touch(approver, now)
	return nil
}

// Reject moves PendingApproval to Rejected, appending the reason to notes.
// The entry returns to Draft via ReturnToDraft for rework; Rejected is not terminal.
func (e *LedgerEntry) Reject(reason, actor string, now time.Time) error {
	if err := e.requireStatus("reject", PendingApproval); err != nil {
		return err
	}
	e.Status = Rejected
	e.Notes = append(e.Notes, fmt.Sprintf("rejected: %s", reason))
	e.touch(actor, now)
	return nil
}

// ReturnToDraft reopens a Rejected entry for rework.
func (e *LedgerEntry) ReturnToDraft(actor string, now time.Time) error {
	if err := e.requireStatus("rework", Rejected); err != nil {
		return err
	}
	e.Status = Draft
	e.touch(actor, now)
	return nil
}

// Post moves Approved to Posted. The balance invariant is re-validated here
// even though submission already checked it, guarding against concurrent
// mutation between approval and posting. Balance application against accounts
// happens in the service's atomic posting path, never here.
func (e *LedgerEntry) Post(poster string, postingDate time.Time) error {
	if err := e.requireStatus("post", Approved); err != nil {
		return err
	}
	if len(e.Lines) < 2 {
		return apperrors.ErrEmptyEntry
	}
	if !e.IsBalanced() {
		return fmt.Errorf("%w: debits %s, credits %s", apperrors.ErrUnbalancedEntry,
			e.TotalDebit.String(), e.TotalCredit.String())
	}
	e.Status = Posted
	e.PostedBy = poster
	e.PostingDate = &postingDate
	e.touch(poster, postingDate)
	return nil
}

// BuildReversal produces a new Draft entry with every line's side flipped and
// amounts copied, linked back to this entry. Permitted only from Posted and
// only once. The caller drives the new entry through submit/approve/post and
// then calls MarkReversed; this entry is not mutated here.
func (e *LedgerEntry) BuildReversal(entryID, entryNumber string, lineIDs []string, reversalDate time.Time, reason, author string, now time.Time) (*LedgerEntry, error) {
	if e.Status != Posted {
		return nil, fmt.Errorf("%w: entry %s has status %s", apperrors.ErrNotPosted, e.EntryID, e.Status)
	}
	if e.ReversedByEntryID != nil {
		return nil, fmt.Errorf("%w: entry %s reversed by %s", apperrors.ErrAlreadyReversed, e.EntryID, *e.ReversedByEntryID)
	}
	if len(lineIDs) != len(e.Lines) {
		return nil, fmt.Errorf("%w: expected %d line ids, got %d", apperrors.ErrInternal, len(e.Lines), len(lineIDs))
	}

	originalID := e.EntryID
	reversal := &LedgerEntry{
		EntryID:           entryID,
		EntryNumber:       entryNumber,
		EntryDate:         reversalDate,
		Status:            Draft,
		CurrencyCode:      e.CurrencyCode,
		Description:       fmt.Sprintf("Reversal of %s: %s", e.EntryNumber, reason),
		ReversalOfEntryID: &originalID,
		AuditFields: AuditFields{
			CreatedAt:     now,
			CreatedBy:     author,
			LastUpdatedAt: now,
			LastUpdatedBy: author,
		},
	}
	for i, line := range e.Lines {
		reversal.Lines = append(reversal.Lines, LedgerLine{
			LineID:         lineIDs[i],
			EntryID:        entryID,
			AccountID:      line.AccountID,
			Side:           line.Side.Opposite(),
			Amount:         line.Amount,
			Description:    line.Description,
			ConversionRate: line.ConversionRate,
			AuditFields: AuditFields{
				CreatedAt:     now,
				CreatedBy:     author,
				LastUpdatedAt: now,
				LastUpdatedBy: author,
			},
		})
	}
	reversal.recomputeTotals()
	return reversal, nil
}

// MarkReversed records the one-time Posted to Reversed transition, linking the
// reversal entry. Callers invoke this only after the reversal entry has itself
// been durably posted.
func (e *LedgerEntry) MarkReversed(reversalEntryID, actor string, now time.Time) error {
	if e.Status != Posted {
		return fmt.Errorf("%w: entry %s has status %s", apperrors.ErrNotPosted, e.EntryID, e.Status)
	}
	if e.ReversedByEntryID != nil {
		return fmt.Errorf("%w: entry %s reversed by %s", apperrors.ErrAlreadyReversed, e.EntryID, *e.ReversedByEntryID)
	}
	e.Status = Reversed
	e.ReversedByEntryID = &reversalEntryID
	e.touch(actor, now)
	return nil
}

func (e *LedgerEntry) touch(actor string, now time.Time) {
	e.LastUpdatedAt = now
	e.LastUpdatedBy = actor
}
