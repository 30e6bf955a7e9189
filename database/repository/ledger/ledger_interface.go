package ledgerRepo

import (
	"context"
	"errors"

	"institute/models"
)

// ErrNotFound is returned when no fee account exists for a student.
var ErrNotFound = errors.New("fee account not found")

// ErrContention is returned after the bounded retry budget for a
// conflicting concurrent update is exhausted.
var ErrContention = errors.New("fee account update contention")

// AccountRepository is the ledger store: durable keyed storage for fee
// accounts with atomic per-account read-modify-write.
type AccountRepository interface {
	// Create inserts a new fee account. Exactly one account may exist per student.
	Create(ctx context.Context, acct *models.FeeAccount) error
	// GetByStudentID retrieves a read-only snapshot of an account.
	GetByStudentID(ctx context.Context, studentID string) (*models.FeeAccount, error)
	// WithAccount acquires exclusive access to one account, applies fn to a
	// mutable view, persists the result and releases, as one atomic unit.
	// If fn returns an error nothing is persisted and the error propagates.
	// Calls on distinct student IDs proceed independently.
	WithAccount(ctx context.Context, studentID string, fn func(*models.FeeAccount) error) (*models.FeeAccount, error)
}
