package fees

import "errors"

// Rejection reasons surfaced by the reconciliation path. Handlers map
// these onto HTTP statuses; none of them leaves the ledger mutated.
var (
	// ErrAccountNotFound: no fee account exists for the student.
	ErrAccountNotFound = errors.New("fee account not found")
	// ErrInvalidAmount: the payment amount is not positive.
	ErrInvalidAmount = errors.New("payment amount must be positive")
	// ErrAmountExceedsDue: the payment would push paid above total.
	ErrAmountExceedsDue = errors.New("payment amount exceeds due balance")
	// ErrMissingDedupeKey: the caller supplied no idempotency token.
	ErrMissingDedupeKey = errors.New("missing idempotency token")
	// ErrOrderNotFound: the confirmation references an order that does not
	// exist or has expired.
	ErrOrderNotFound = errors.New("unknown order")
	// ErrSignatureMismatch: the confirmation signature failed verification.
	ErrSignatureMismatch = errors.New("signature mismatch")
	// ErrTransient: store contention persisted past the bounded retry
	// budget; the caller may retry.
	ErrTransient = errors.New("transient store failure, retry")
)
