package services

import (
	"context"
	"time"

	"github.com/corefin/ledgercore/internal/core/domain"
	"github.com/corefin/ledgercore/internal/dto"
)

// EntryWorkflowSvc drives a draft entry through its lifecycle up to the point
// of posting. Expected guard violations surface as apperrors sentinels.
type EntryWorkflowSvc interface {
	// CreateDraftEntry builds and persists a Draft entry from the request.
	CreateDraftEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.LedgerEntry, error)

	// GetEntryByID retrieves an entry with its lines.
	GetEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error)

	// SubmitForApproval moves a Draft entry to PendingApproval.
	SubmitForApproval(ctx context.Context, entryID string, userID string) (*domain.LedgerEntry, error)

	// ApproveEntry moves a PendingApproval entry to Approved.
	ApproveEntry(ctx context.Context, entryID string, approver string) (*domain.LedgerEntry, error)

	// RejectEntry moves a PendingApproval entry to Rejected, recording the reason.
	RejectEntry(ctx context.Context, entryID string, reason string, userID string) (*domain.LedgerEntry, error)

	// ReworkEntry returns a Rejected entry to Draft.
	ReworkEntry(ctx context.Context, entryID string, userID string) (*domain.LedgerEntry, error)
}

// PostingSvc owns the posting, batch-posting, and reversal paths. Outcomes are
// discriminated results; business-rule violations never surface as errors.
type PostingSvc interface {
	// Post validates and posts an Approved entry, applying every line to its
	// account balance atomically. Posting an already-Posted entry is an
	// idempotent warning, not a failure.
	Post(ctx context.Context, entryID string, postingDate time.Time, poster string, validateBalances bool) domain.PostingResult

	// BatchPost posts a bounded batch sequentially. Unless continueOnError is
	// set, every entry is pre-validated before any posting begins and the
	// batch stops at the first failure.
	BatchPost(ctx context.Context, entryIDs []string, postingDate time.Time, poster string, continueOnError bool) domain.BatchPostingResult

	// Reverse cancels a Posted entry by posting a linked entry with every
	// line's side flipped, then marking the original Reversed.
	Reverse(ctx context.Context, entryID string, reason string, reverser string, reversalDate time.Time, createReversalEntry bool) domain.ReversalResult
}

// LedgerSvcFacade combines the entry workflow and posting interfaces
type LedgerSvcFacade interface {
	EntryWorkflowSvc
	PostingSvc
}
