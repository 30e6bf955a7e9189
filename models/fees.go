package models

import "time"

// PaymentMethod identifies how a payment reached the ledger.
type PaymentMethod string

const (
	PaymentMethodManual  PaymentMethod = "manual"
	PaymentMethodGateway PaymentMethod = "gateway"
)

// PaymentRecord is one committed payment in an account's history.
// Records are only materialized once committed; pending online attempts
// live in PaymentOrder instead.
type PaymentRecord struct {
	ID             string        `bson:"id" json:"id"`
	Amount         int64         `bson:"amount" json:"amount"`
	Method         PaymentMethod `bson:"method" json:"method"`
	GatewayOrderID string        `bson:"gatewayOrderId,omitempty" json:"gatewayOrderId,omitempty"`
	DedupeKey      string        `bson:"dedupeKey" json:"dedupeKey"`
	Timestamp      time.Time     `bson:"timestamp" json:"timestamp"`
	Status         string        `bson:"status" json:"status"` // always "committed"
}

// FeeAccount is the per-student financial state. Amounts are in paise.
// Paid is monotonically non-decreasing and history is append-only in
// commit order; due is always derived, never stored.
type FeeAccount struct {
	StudentID string          `bson:"studentId" json:"studentId"`
	Total     int64           `bson:"total" json:"total"`
	Paid      int64           `bson:"paid" json:"paid"`
	History   []PaymentRecord `bson:"history" json:"history"`
	Version   int64           `bson:"version" json:"-"`
	CreatedAt time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// Due returns the outstanding balance.
func (a *FeeAccount) Due() int64 {
	return a.Total - a.Paid
}

// FindRecordByDedupeKey returns the committed record carrying dedupeKey, if any.
func (a *FeeAccount) FindRecordByDedupeKey(dedupeKey string) *PaymentRecord {
	for i := range a.History {
		if a.History[i].DedupeKey == dedupeKey {
			return &a.History[i]
		}
	}
	return nil
}

// AccountView is the read-only projection returned to clients.
type AccountView struct {
	StudentID string          `json:"studentId"`
	Total     int64           `json:"total"`
	Paid      int64           `json:"paid"`
	Due       int64           `json:"due"`
	History   []PaymentRecord `json:"history"`
}

// View builds the client projection with the derived due amount.
func (a *FeeAccount) View() *AccountView {
	history := a.History
	if history == nil {
		history = []PaymentRecord{}
	}
	return &AccountView{
		StudentID: a.StudentID,
		Total:     a.Total,
		Paid:      a.Paid,
		Due:       a.Due(),
		History:   history,
	}
}
