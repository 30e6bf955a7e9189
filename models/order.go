package models

import "time"

// OrderState tracks a payment order through its one-way lifecycle.
type OrderState string

const (
	OrderStateCreated              OrderState = "created"
	OrderStateAwaitingConfirmation OrderState = "awaiting_confirmation"
	OrderStateVerified             OrderState = "verified"
	OrderStateCommitted            OrderState = "committed"
	OrderStateFailed               OrderState = "failed"
	OrderStateExpired              OrderState = "expired"
)

// Terminal reports whether the state can never be left again.
func (s OrderState) Terminal() bool {
	return s == OrderStateCommitted || s == OrderStateFailed || s == OrderStateExpired
}

// PaymentOrder is the transient record of one attempted online payment.
// The order ID doubles as the dedupe key when the payment is committed
// to the ledger.
type PaymentOrder struct {
	OrderID          string     `bson:"orderId" json:"orderId"`
	StudentID        string     `bson:"studentId" json:"studentId"`
	Amount           int64      `bson:"amount" json:"amount"`
	State            OrderState `bson:"state" json:"state"`
	GatewayPaymentID string     `bson:"gatewayPaymentId,omitempty" json:"gatewayPaymentId,omitempty"`
	RecordID         string     `bson:"recordId,omitempty" json:"recordId,omitempty"`
	FailureReason    string     `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
	CreatedAt        time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// CheckoutInfo is handed back to the client to launch the gateway checkout.
type CheckoutInfo struct {
	OrderID    string `json:"orderId"`
	GatewayKey string `json:"key"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
}

// ConfirmationResult reports the terminal outcome of a confirmation attempt.
type ConfirmationResult struct {
	OrderID  string     `json:"orderId"`
	State    OrderState `json:"status"`
	RecordID string     `json:"recordId,omitempty"`
	Reason   string     `json:"reason,omitempty"`
}
