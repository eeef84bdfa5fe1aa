package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the requested operation is illegal in the entity's current state.
var ErrConflict = errors.New("operation conflicts with current state")

// ErrInternal indicates an unexpected failure that callers cannot correct.
var ErrInternal = errors.New("internal error")

// ErrOptimisticLock indicates a version check failed on a concurrent balance update.
// Transient; callers retry a bounded number of times before surfacing it.
var ErrOptimisticLock = errors.New("optimistic lock conflict")

// ErrIntegrity indicates a broken invariant that should be impossible if the
// posting path is correct. Never retried, always surfaced and logged critical.
var ErrIntegrity = errors.New("data integrity violation")

// Validation errors.
var (
	ErrUnbalancedEntry    = errors.New("entry debits and credits do not balance")
	ErrEmptyEntry         = errors.New("entry must have at least two lines")
	ErrNegativeLineAmount = errors.New("line amount must be positive")
	ErrZeroLineAmount     = errors.New("line amount must not be zero")
	ErrCurrencyMismatch   = errors.New("currency mismatch")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountHasBalance  = errors.New("account has a non-zero balance")
)

// State errors.
var (
	ErrAlreadyPosted     = errors.New("entry is already posted")
	ErrNotPosted         = errors.New("entry is not posted")
	ErrAlreadyReversed   = errors.New("entry has already been reversed")
	ErrInvalidTransition = errors.New("invalid entry status transition")
	ErrPeriodClosed      = errors.New("accounting period is already closed")
	ErrPeriodNotClosed   = errors.New("accounting period is not closed")
	ErrBatchSizeExceeded = errors.New("batch size exceeds configured maximum")
	ErrTooManyConflicts  = errors.New("balance update retries exhausted")
)

// Kind is the machine-checkable classification attached to operation results.
// Human-readable detail travels separately as error strings.
type Kind string

const (
	KindNone               Kind = ""
	KindValidation         Kind = "VALIDATION"
	KindUnbalancedEntry    Kind = "UNBALANCED_ENTRY"
	KindEmptyEntry         Kind = "EMPTY_ENTRY"
	KindNegativeLineAmount Kind = "NEGATIVE_LINE_AMOUNT"
	KindCurrencyMismatch   Kind = "CURRENCY_MISMATCH"
	KindInactiveAccount    Kind = "INACTIVE_ACCOUNT"
	KindAccountNotFound    Kind = "ACCOUNT_NOT_FOUND"
	KindAccountHasBalance  Kind = "ACCOUNT_HAS_BALANCE"
	KindAlreadyPosted      Kind = "ALREADY_POSTED"
	KindNotPosted          Kind = "NOT_POSTED"
	KindAlreadyReversed    Kind = "ALREADY_REVERSED"
	KindInvalidTransition  Kind = "INVALID_TRANSITION"
	KindPeriodClosed       Kind = "PERIOD_ALREADY_CLOSED"
	KindPeriodNotClosed    Kind = "PERIOD_NOT_CLOSED"
	KindBatchSizeExceeded  Kind = "BATCH_SIZE_EXCEEDED"
	KindConcurrency        Kind = "OPTIMISTIC_LOCK_CONFLICT"
	KindIntegrity          Kind = "INTEGRITY_VIOLATION"
	KindNotFound           Kind = "NOT_FOUND"
	KindInternal           Kind = "INTERNAL"
)

// KindOf maps an error chain to its result Kind. Unrecognized errors map to
// KindInternal so callers always get a classification.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrUnbalancedEntry):
		return KindUnbalancedEntry
	case errors.Is(err, ErrEmptyEntry):
		return KindEmptyEntry
	case errors.Is(err, ErrNegativeLineAmount), errors.Is(err, ErrZeroLineAmount):
		return KindNegativeLineAmount
	case errors.Is(err, ErrCurrencyMismatch):
		return KindCurrencyMismatch
	case errors.Is(err, ErrInactiveAccount):
		return KindInactiveAccount
	case errors.Is(err, ErrAccountNotFound):
		return KindAccountNotFound
	case errors.Is(err, ErrAccountHasBalance):
		return KindAccountHasBalance
	case errors.Is(err, ErrAlreadyPosted):
		return KindAlreadyPosted
	case errors.Is(err, ErrNotPosted):
		return KindNotPosted
	case errors.Is(err, ErrAlreadyReversed):
		return KindAlreadyReversed
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrPeriodClosed):
		return KindPeriodClosed
	case errors.Is(err, ErrPeriodNotClosed):
		return KindPeriodNotClosed
	case errors.Is(err, ErrBatchSizeExceeded):
		return KindBatchSizeExceeded
	case errors.Is(err, ErrOptimisticLock), errors.Is(err, ErrTooManyConflicts):
		return KindConcurrency
	case errors.Is(err, ErrIntegrity):
		return KindIntegrity
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}
