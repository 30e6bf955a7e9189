package notification

import (
	"context"

	"institute/models"
)

// Notifier surfaces events to students. The reconciliation path treats it
// as fire-and-forget: a failed notification never affects the ledger.
type Notifier interface {
	// PaymentSucceeded announces a committed payment.
	PaymentSucceeded(ctx context.Context, studentID string, rec *models.PaymentRecord) error
	// PaymentFailed announces a failed online payment attempt.
	PaymentFailed(ctx context.Context, studentID, orderID, reason string) error
	// Announce delivers a staff message to a student.
	Announce(ctx context.Context, studentID, title, body string) error
}
