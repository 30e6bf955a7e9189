package fees

import (
	"context"
	"errors"
	"fmt"
	"time"

	ledgerRepo "institute/database/repository/ledger"
	"institute/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine is the single choke point for all payment mutations of the
// ledger. Every committed payment, whether staff-entered or confirmed by
// the gateway, passes through Commit.
type Engine struct {
	accounts         ledgerRepo.AccountRepository
	logger           *zap.Logger
	allowOverpayment bool
}

// NewEngine builds a reconciliation engine over the ledger store.
func NewEngine(accounts ledgerRepo.AccountRepository, logger *zap.Logger, allowOverpayment bool) *Engine {
	return &Engine{
		accounts:         accounts,
		logger:           logger,
		allowOverpayment: allowOverpayment,
	}
}

// Commit turns a verified payment event into a durable ledger mutation.
// dedupeKey uniquely identifies the payment attempt: the order ID for
// gateway payments, a caller-supplied token for manual ones. Replaying a
// dedupeKey returns the originally committed record without mutating
// anything, so duplicate webhook deliveries and retried manual
// submissions collapse to one history entry.
func (e *Engine) Commit(ctx context.Context, studentID string, amount int64, method models.PaymentMethod, dedupeKey string) (*models.PaymentRecord, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if dedupeKey == "" {
		return nil, ErrMissingDedupeKey
	}

	var committed models.PaymentRecord
	var replayed bool

	_, err := e.accounts.WithAccount(ctx, studentID, func(acct *models.FeeAccount) error {
		if existing := acct.FindRecordByDedupeKey(dedupeKey); existing != nil {
			committed = *existing
			replayed = true
			return nil
		}

		if !e.allowOverpayment && acct.Paid+amount > acct.Total {
			return ErrAmountExceedsDue
		}

		rec := models.PaymentRecord{
			ID:        uuid.New().String(),
			Amount:    amount,
			Method:    method,
			DedupeKey: dedupeKey,
			Timestamp: commitTimestamp(acct),
			Status:    "committed",
		}
		if method == models.PaymentMethodGateway {
			rec.GatewayOrderID = dedupeKey
		}

		acct.History = append(acct.History, rec)
		acct.Paid += amount
		committed = rec
		return nil
	})
	if err != nil {
		if errors.Is(err, ledgerRepo.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		if errors.Is(err, ledgerRepo.ErrContention) {
			return nil, fmt.Errorf("%w: %v", ErrTransient, err)
		}
		return nil, err
	}

	if replayed {
		// Duplicate delivery resolved to the original record; the audit
		// trail must not show a second commit.
		e.logger.Info("duplicate payment replayed",
			zap.String("studentId", studentID),
			zap.String("recordId", committed.ID),
			zap.String("dedupeKey", dedupeKey),
		)
		return &committed, nil
	}

	e.logger.Info("payment committed",
		zap.String("studentId", studentID),
		zap.String("recordId", committed.ID),
		zap.String("method", string(committed.Method)),
		zap.Int64("amount", committed.Amount),
	)
	return &committed, nil
}

// commitTimestamp returns the current time, nudged forward if the clock
// reads at or before the last committed record so per-account timestamps
// stay strictly monotonic.
func commitTimestamp(acct *models.FeeAccount) time.Time {
	now := time.Now()
	if n := len(acct.History); n > 0 {
		if last := acct.History[n-1].Timestamp; !now.After(last) {
			return last.Add(time.Nanosecond)
		}
	}
	return now
}
