package fees

import (
	"context"

	"institute/models"
)

// Recorder applies staff-entered payments. It is a thin trusted caller of
// the reconciliation engine; the caller must supply a stable idempotency
// token so a retried submission does not double-credit.
type Recorder struct {
	engine *Engine
}

// NewRecorder builds a manual payment recorder.
func NewRecorder(engine *Engine) *Recorder {
	return &Recorder{engine: engine}
}

// Record commits a manual payment against the student's account.
func (r *Recorder) Record(ctx context.Context, studentID string, amount int64, idempotencyToken string) (*models.PaymentRecord, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if idempotencyToken == "" {
		return nil, ErrMissingDedupeKey
	}
	return r.engine.Commit(ctx, studentID, amount, models.PaymentMethodManual, idempotencyToken)
}
