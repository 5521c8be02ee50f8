package ledger

import "errors"

// Error kinds surfaced by the engine. Controllers map these onto HTTP
// statuses; none of them leave partial state behind because every
// multi-document effect runs inside a single transaction.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnknownProduct    = errors.New("unknown product")
	ErrUnknownProvider   = errors.New("unknown provider")
	ErrUnknownWorker     = errors.New("unknown worker")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrShiftAlreadyOpen  = errors.New("a shift is already open")
	ErrNoOpenShift       = errors.New("no open shift")
	ErrNothingToSettle   = errors.New("nothing to settle")

	// ErrTxnConflict means a concurrent transaction committed first. The
	// engine does not retry; the caller decides whether to try again.
	ErrTxnConflict = errors.New("transaction conflict")
)
