package orderRepo

import (
	"context"
	"errors"

	"institute/models"
)

// ErrNotFound is returned when no payment order exists for an order ID.
var ErrNotFound = errors.New("payment order not found")

// OrderRepository stores transient payment orders and enforces one-way
// state transitions.
type OrderRepository interface {
	// Create persists a freshly created order.
	Create(ctx context.Context, order *models.PaymentOrder) error
	// GetByOrderID retrieves an order by the gateway-issued order ID.
	GetByOrderID(ctx context.Context, orderID string) (*models.PaymentOrder, error)
	// Transition atomically moves an order from one of the given states to
	// the target state, applying extra field updates. It returns false when
	// the order was not in any of the from states, which means the caller
	// lost a transition race and must re-read the order.
	Transition(ctx context.Context, orderID string, from []models.OrderState, to models.OrderState, set map[string]interface{}) (bool, error)
}
