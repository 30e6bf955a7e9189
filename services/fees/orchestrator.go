package fees

import (
	"context"
	"errors"
	"time"

	ledgerRepo "institute/database/repository/ledger"
	orderRepo "institute/database/repository/order"
	"institute/models"
	"institute/services/gateway"
	"institute/services/notification"

	"go.uber.org/zap"
)

// ExpiryScheduler queues a deferred expiry sweep for an order.
type ExpiryScheduler interface {
	ScheduleExpiry(ctx context.Context, orderID string, after time.Duration) error
}

// Orchestrator drives online payments: it creates gateway orders, tracks
// their lifecycle and reconciles verified confirmations into the ledger.
// Client callbacks and server-to-server webhooks both land in Confirm and
// are collapsed by the order-ID dedupe key.
type Orchestrator struct {
	orders           orderRepo.OrderRepository
	accounts         ledgerRepo.AccountRepository
	engine           *Engine
	gateway          gateway.Client
	verifier         *gateway.Verifier
	notifier         notification.Notifier
	expiry           ExpiryScheduler
	logger           *zap.Logger
	currency         string
	orderTTL         time.Duration
	allowOverpayment bool
}

// OrchestratorDeps carries the collaborators an Orchestrator needs.
type OrchestratorDeps struct {
	Orders           orderRepo.OrderRepository
	Accounts         ledgerRepo.AccountRepository
	Engine           *Engine
	Gateway          gateway.Client
	Verifier         *gateway.Verifier
	Notifier         notification.Notifier
	Expiry           ExpiryScheduler
	Logger           *zap.Logger
	Currency         string
	OrderTTL         time.Duration
	AllowOverpayment bool
}

// NewOrchestrator wires up an online payment orchestrator.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	return &Orchestrator{
		orders:           deps.Orders,
		accounts:         deps.Accounts,
		engine:           deps.Engine,
		gateway:          deps.Gateway,
		verifier:         deps.Verifier,
		notifier:         deps.Notifier,
		expiry:           deps.Expiry,
		logger:           deps.Logger,
		currency:         deps.Currency,
		orderTTL:         deps.OrderTTL,
		allowOverpayment: deps.AllowOverpayment,
	}
}

// CreateOrder validates the request, registers an order with the gateway
// and persists it. A gateway failure leaves nothing persisted, so the
// call is safe to retry.
func (o *Orchestrator) CreateOrder(ctx context.Context, studentID string, amount int64) (*models.CheckoutInfo, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	acct, err := o.accounts.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, ledgerRepo.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if !o.allowOverpayment && amount > acct.Due() {
		return nil, ErrAmountExceedsDue
	}

	gwOrder, err := o.gateway.CreateOrder(ctx, amount, o.currency)
	if err != nil {
		return nil, err
	}

	order := &models.PaymentOrder{
		OrderID:   gwOrder.ID,
		StudentID: studentID,
		Amount:    amount,
		State:     models.OrderStateCreated,
	}
	if err := o.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	if o.expiry != nil {
		if err := o.expiry.ScheduleExpiry(ctx, order.OrderID, o.orderTTL); err != nil {
			o.logger.Warn("failed to schedule order expiry", zap.String("orderId", order.OrderID), zap.Error(err))
		}
	}

	// Checkout parameters are about to be handed to the client; the order
	// now waits for its confirmation.
	if _, err := o.orders.Transition(ctx, order.OrderID,
		[]models.OrderState{models.OrderStateCreated},
		models.OrderStateAwaitingConfirmation, nil); err != nil {
		return nil, err
	}

	o.logger.Info("payment order created",
		zap.String("studentId", studentID),
		zap.String("orderId", order.OrderID),
		zap.Int64("amount", amount),
	)
	return &models.CheckoutInfo{
		OrderID:    order.OrderID,
		GatewayKey: gwOrder.Key,
		Amount:     amount,
		Currency:   o.currency,
	}, nil
}

// Confirm handles an asynchronous gateway confirmation. Confirmations may
// arrive more than once and from more than one source; a terminal order
// replays its stored outcome, an expired or unknown order is rejected as
// "unknown order", and only a signature-verified confirmation ever
// reaches the reconciliation engine.
func (o *Orchestrator) Confirm(ctx context.Context, orderID, paymentID, signature string) (*models.ConfirmationResult, error) {
	order, err := o.orders.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderRepo.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.State.Terminal() {
		return o.terminalResult(order)
	}

	if !o.verifier.Verify(orderID, paymentID, signature) {
		o.failOrder(ctx, order, paymentID, "signature mismatch",
			[]models.OrderState{models.OrderStateCreated, models.OrderStateAwaitingConfirmation})
		return nil, ErrSignatureMismatch
	}

	if order.State != models.OrderStateVerified {
		ok, err := o.orders.Transition(ctx, orderID,
			[]models.OrderState{models.OrderStateCreated, models.OrderStateAwaitingConfirmation},
			models.OrderStateVerified,
			map[string]interface{}{"gatewayPaymentId": paymentID})
		if err != nil {
			return nil, err
		}
		if !ok {
			// Lost a race against expiry or a concurrent confirmation.
			order, err = o.orders.GetByOrderID(ctx, orderID)
			if err != nil {
				return nil, err
			}
			if order.State.Terminal() {
				return o.terminalResult(order)
			}
			// A concurrent confirmation verified the order first; the commit
			// below is idempotent on the order ID, so proceeding is safe.
		}
	}

	rec, err := o.engine.Commit(ctx, order.StudentID, order.Amount, models.PaymentMethodGateway, orderID)
	if err != nil {
		if errors.Is(err, ErrTransient) {
			// Leave the order verified; a redelivered confirmation retries.
			return nil, err
		}
		o.failOrder(ctx, order, paymentID, err.Error(),
			[]models.OrderState{models.OrderStateVerified})
		return nil, err
	}

	committed, err := o.orders.Transition(ctx, orderID,
		[]models.OrderState{models.OrderStateVerified},
		models.OrderStateCommitted,
		map[string]interface{}{"recordId": rec.ID, "gatewayPaymentId": paymentID})
	if err != nil {
		return nil, err
	}
	if !committed {
		// A concurrent confirmation finished first; replay its outcome.
		order, err = o.orders.GetByOrderID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return o.terminalResult(order)
	}

	o.logger.Info("online payment committed",
		zap.String("orderId", orderID),
		zap.String("studentId", order.StudentID),
		zap.String("recordId", rec.ID),
	)
	if o.notifier != nil {
		if err := o.notifier.PaymentSucceeded(ctx, order.StudentID, rec); err != nil {
			o.logger.Warn("payment success notification failed", zap.Error(err))
		}
	}
	return &models.ConfirmationResult{
		OrderID:  orderID,
		State:    models.OrderStateCommitted,
		RecordID: rec.ID,
	}, nil
}

// Expire moves a still-pending order to expired. Losing the race against
// a legitimate confirmation that lands at the same moment is a no-op:
// whichever transition persists first wins.
func (o *Orchestrator) Expire(ctx context.Context, orderID string) error {
	ok, err := o.orders.Transition(ctx, orderID,
		[]models.OrderState{models.OrderStateCreated, models.OrderStateAwaitingConfirmation},
		models.OrderStateExpired,
		map[string]interface{}{"failureReason": "expired"})
	if err != nil {
		return err
	}
	if ok {
		o.logger.Info("payment order expired", zap.String("orderId", orderID))
	}
	return nil
}

// Order exposes the read-only terminal record for audit/status queries.
func (o *Orchestrator) Order(ctx context.Context, orderID string) (*models.PaymentOrder, error) {
	order, err := o.orders.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderRepo.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// terminalResult replays the stored outcome of a terminal order. An
// expired order is indistinguishable from an unknown one to the caller.
func (o *Orchestrator) terminalResult(order *models.PaymentOrder) (*models.ConfirmationResult, error) {
	switch order.State {
	case models.OrderStateCommitted:
		return &models.ConfirmationResult{
			OrderID:  order.OrderID,
			State:    models.OrderStateCommitted,
			RecordID: order.RecordID,
		}, nil
	case models.OrderStateFailed:
		return &models.ConfirmationResult{
			OrderID: order.OrderID,
			State:   models.OrderStateFailed,
			Reason:  order.FailureReason,
		}, nil
	default: // expired
		return nil, ErrOrderNotFound
	}
}

func (o *Orchestrator) failOrder(ctx context.Context, order *models.PaymentOrder, paymentID, reason string, from []models.OrderState) {
	set := map[string]interface{}{"failureReason": reason}
	if paymentID != "" {
		set["gatewayPaymentId"] = paymentID
	}
	ok, err := o.orders.Transition(ctx, order.OrderID, from, models.OrderStateFailed, set)
	if err != nil {
		o.logger.Error("failed to mark order as failed", zap.String("orderId", order.OrderID), zap.Error(err))
		return
	}
	if !ok {
		// Lost the race to another transition; the persisted state wins
		// and the student must not hear about a failure that never was.
		return
	}
	o.logger.Warn("online payment failed",
		zap.String("orderId", order.OrderID),
		zap.String("studentId", order.StudentID),
		zap.String("reason", reason),
	)
	if o.notifier != nil {
		if err := o.notifier.PaymentFailed(ctx, order.StudentID, order.OrderID, reason); err != nil {
			o.logger.Warn("payment failure notification failed", zap.Error(err))
		}
	}
}
