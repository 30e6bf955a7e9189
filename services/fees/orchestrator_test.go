package fees

import (
	"context"
	"errors"
	"testing"
	"time"

	"institute/models"
	"institute/services/gateway"

	"go.uber.org/zap"
)

const testGatewaySecret = "test-key-secret"

type orchestratorFixture struct {
	orch      *Orchestrator
	accounts  *memAccountRepo
	orders    *memOrderRepo
	gateway   *fakeGateway
	scheduler *fakeScheduler
	notifier  *recordingNotifier
	verifier  *gateway.Verifier
}

func newOrchestratorFixture(t *testing.T) *orchestratorFixture {
	t.Helper()
	accounts := newMemAccountRepo()
	orders := newMemOrderRepo()
	gw := &fakeGateway{}
	scheduler := &fakeScheduler{}
	notifier := &recordingNotifier{}
	verifier := gateway.NewVerifier(testGatewaySecret)

	orch := NewOrchestrator(OrchestratorDeps{
		Orders:   orders,
		Accounts: accounts,
		Engine:   NewEngine(accounts, zap.NewNop(), false),
		Gateway:  gw,
		Verifier: verifier,
		Notifier: notifier,
		Expiry:   scheduler,
		Logger:   zap.NewNop(),
		Currency: "INR",
		OrderTTL: 30 * time.Minute,
	})
	return &orchestratorFixture{
		orch:      orch,
		accounts:  accounts,
		orders:    orders,
		gateway:   gw,
		scheduler: scheduler,
		notifier:  notifier,
		verifier:  verifier,
	}
}

// TestOnlinePaymentHappyPath runs checkout through confirmation and
// verifies the order and the ledger agree at the end.
func TestOnlinePaymentHappyPath(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()
	mustCreateAccount(t, f.accounts, "stu-1", 500000)

	checkout, err := f.orch.CreateOrder(ctx, "stu-1", 200000)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if checkout.Currency != "INR" {
		t.Errorf("currency: got %s, want INR", checkout.Currency)
	}
	if checkout.GatewayKey != "key_test" {
		t.Errorf("gateway key: got %s, want key_test", checkout.GatewayKey)
	}

	order, err := f.orders.GetByOrderID(ctx, checkout.OrderID)
	if err != nil {
		t.Fatalf("GetByOrderID: %v", err)
	}
	if order.State != models.OrderStateAwaitingConfirmation {
		t.Errorf("state after checkout: got %s, want %s", order.State, models.OrderStateAwaitingConfirmation)
	}

	sig := f.verifier.Sign(checkout.OrderID, "pay_1")
	result, err := f.orch.Confirm(ctx, checkout.OrderID, "pay_1", sig)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if result.State != models.OrderStateCommitted {
		t.Errorf("result state: got %s, want %s", result.State, models.OrderStateCommitted)
	}
	if result.RecordID == "" {
		t.Error("result carries no record ID")
	}

	acct, _ := f.accounts.GetByStudentID(ctx, "stu-1")
	if acct.Paid != 200000 {
		t.Errorf("paid: got %d, want 200000", acct.Paid)
	}
	if len(acct.History) != 1 {
		t.Fatalf("history: got %d entries, want 1", len(acct.History))
	}
	rec := acct.History[0]
	if rec.Method != models.PaymentMethodGateway {
		t.Errorf("method: got %s, want %s", rec.Method, models.PaymentMethodGateway)
	}
	if rec.GatewayOrderID != checkout.OrderID {
		t.Errorf("gateway order ID: got %s, want %s", rec.GatewayOrderID, checkout.OrderID)
	}

	order, _ = f.orders.GetByOrderID(ctx, checkout.OrderID)
	if order.State != models.OrderStateCommitted {
		t.Errorf("order state: got %s, want %s", order.State, models.OrderStateCommitted)
	}
	if order.RecordID != result.RecordID {
		t.Errorf("order record ID: got %s, want %s", order.RecordID, result.RecordID)
	}
	if order.GatewayPaymentID != "pay_1" {
		t.Errorf("gateway payment ID: got %s, want pay_1", order.GatewayPaymentID)
	}
	if len(f.notifier.succeeded) != 1 {
		t.Errorf("success notifications: got %d, want 1", len(f.notifier.succeeded))
	}
}

// TestDuplicateConfirmation replays a confirmation, as redelivered
// webhooks do, and expects the stored outcome with no second ledger entry.
func TestDuplicateConfirmation(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()
	mustCreateAccount(t, f.accounts, "stu-1", 500000)

	checkout, err := f.orch.CreateOrder(ctx, "stu-1", 200000)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	sig := f.verifier.Sign(checkout.OrderID, "pay_1")

	first, err := f.orch.Confirm(ctx, checkout.OrderID, "pay_1", sig)
	if err != nil {
		t.Fatalf("first Confirm: %v", err)
	}
	second, err := f.orch.Confirm(ctx, checkout.OrderID, "pay_1", sig)
	if err != nil {
		t.Fatalf("second Confirm: %v", err)
	}
	if second.RecordID != first.RecordID {
		t.Errorf("replayed record ID: got %s, want %s", second.RecordID, first.RecordID)
	}

	acct, _ := f.accounts.GetByStudentID(ctx, "stu-1")
	if acct.Paid != 200000 {
		t.Errorf("paid after replay: got %d, want 200000", acct.Paid)
	}
	if len(acct.History) != 1 {
		t.Errorf("history after replay: got %d entries, want 1", len(acct.History))
	}
}

func TestTamperedSignatureFailsOrder(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()
	mustCreateAccount(t, f.accounts, "stu-1", 500000)

	checkout, err := f.orch.CreateOrder(ctx, "stu-1", 200000)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if _, err := f.orch.Confirm(ctx, checkout.OrderID, "pay_1", "deadbeef"); !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("tampered signature: got %v, want ErrSignatureMismatch", err)
	}

	order, _ := f.orders.GetByOrderID(ctx, checkout.OrderID)
	if order.State != models.OrderStateFailed {
		t.Errorf("order state: got %s, want %s", order.State, models.OrderStateFailed)
	}
	acct, _ := f.accounts.GetByStudentID(ctx, "stu-1")
	if acct.Paid != 0 || len(acct.History) != 0 {
		t.Errorf("ledger mutated by rejected confirmation: paid=%d history=%d", acct.Paid, len(acct.History))
	}
	if len(f.notifier.failed) != 1 {
		t.Errorf("failure notifications: got %d, want 1", len(f.notifier.failed))
	}

	// A failed order replays its stored failure on later confirmations.
	sig := f.verifier.Sign(checkout.OrderID, "pay_1")
	result, err := f.orch.Confirm(ctx, checkout.OrderID, "pay_1", sig)
	if err != nil {
		t.Fatalf("Confirm on failed order: %v", err)
	}
	if result.State != models.OrderStateFailed {
		t.Errorf("replayed state: got %s, want %s", result.State, models.OrderStateFailed)
	}
}

// TestExpiredOrderRejectsConfirmation covers the late-arrival case: a
// valid signature on an expired order must not reach the ledger.
func TestExpiredOrderRejectsConfirmation(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()
	mustCreateAccount(t, f.accounts, "stu-1", 500000)

	checkout, err := f.orch.CreateOrder(ctx, "stu-1", 200000)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if err := f.orch.Expire(ctx, checkout.OrderID); err != nil {
		t.Fatalf("Expire: %v", err)
	}

	sig := f.verifier.Sign(checkout.OrderID, "pay_1")
	if _, err := f.orch.Confirm(ctx, checkout.OrderID, "pay_1", sig); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("confirmation of expired order: got %v, want ErrOrderNotFound", err)
	}

	acct, _ := f.accounts.GetByStudentID(ctx, "stu-1")
	if acct.Paid != 0 {
		t.Errorf("paid: got %d, want 0", acct.Paid)
	}
}

// TestExpireLosesRaceToConfirmation checks that a sweep firing after the
// order committed is a silent no-op.
func TestExpireLosesRaceToConfirmation(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()
	mustCreateAccount(t, f.accounts, "stu-1", 500000)

	checkout, err := f.orch.CreateOrder(ctx, "stu-1", 200000)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	sig := f.verifier.Sign(checkout.OrderID, "pay_1")
	if _, err := f.orch.Confirm(ctx, checkout.OrderID, "pay_1", sig); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if err := f.orch.Expire(ctx, checkout.OrderID); err != nil {
		t.Fatalf("Expire after commit: %v", err)
	}
	order, _ := f.orders.GetByOrderID(ctx, checkout.OrderID)
	if order.State != models.OrderStateCommitted {
		t.Errorf("order state after late expiry: got %s, want %s", order.State, models.OrderStateCommitted)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()
	mustCreateAccount(t, f.accounts, "stu-1", 1000)

	if _, err := f.orch.CreateOrder(ctx, "stu-1", 0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount: got %v, want ErrInvalidAmount", err)
	}
	if _, err := f.orch.CreateOrder(ctx, "stu-1", 5000); !errors.Is(err, ErrAmountExceedsDue) {
		t.Errorf("amount above due: got %v, want ErrAmountExceedsDue", err)
	}
	if _, err := f.orch.CreateOrder(ctx, "nobody", 100); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("unknown student: got %v, want ErrAccountNotFound", err)
	}
	if f.gateway.seq != 0 {
		t.Errorf("gateway called %d times for rejected orders, want 0", f.gateway.seq)
	}
}

func TestCreateOrderSchedulesExpiry(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()
	mustCreateAccount(t, f.accounts, "stu-1", 1000)

	checkout, err := f.orch.CreateOrder(ctx, "stu-1", 1000)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if len(f.scheduler.orderIDs) != 1 || f.scheduler.orderIDs[0] != checkout.OrderID {
		t.Fatalf("scheduled expiries: got %v, want [%s]", f.scheduler.orderIDs, checkout.OrderID)
	}
	if f.scheduler.delays[0] != 30*time.Minute {
		t.Errorf("expiry delay: got %s, want 30m", f.scheduler.delays[0])
	}
}

func TestCreateOrderGatewayFailureLeavesNothing(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()
	mustCreateAccount(t, f.accounts, "stu-1", 1000)
	f.gateway.fail = true

	if _, err := f.orch.CreateOrder(ctx, "stu-1", 1000); !errors.Is(err, gateway.ErrUnavailable) {
		t.Fatalf("gateway down: got %v, want ErrUnavailable", err)
	}
	if len(f.orders.orders) != 0 {
		t.Errorf("orders persisted despite gateway failure: %d", len(f.orders.orders))
	}
	if len(f.scheduler.orderIDs) != 0 {
		t.Errorf("expiry scheduled despite gateway failure: %v", f.scheduler.orderIDs)
	}
}

// TestConfirmRejectsOverpayment covers a confirmation whose commit would
// push paid over total: both orders pass the create-time due check, but
// only the first commit fits. The second order fails and the ledger is
// untouched by it.
func TestConfirmRejectsOverpayment(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()
	mustCreateAccount(t, f.accounts, "stu-1", 1000)

	first, err := f.orch.CreateOrder(ctx, "stu-1", 800)
	if err != nil {
		t.Fatalf("CreateOrder first: %v", err)
	}
	second, err := f.orch.CreateOrder(ctx, "stu-1", 800)
	if err != nil {
		t.Fatalf("CreateOrder second: %v", err)
	}

	if _, err := f.orch.Confirm(ctx, first.OrderID, "pay_1", f.verifier.Sign(first.OrderID, "pay_1")); err != nil {
		t.Fatalf("Confirm first: %v", err)
	}

	_, err = f.orch.Confirm(ctx, second.OrderID, "pay_2", f.verifier.Sign(second.OrderID, "pay_2"))
	if !errors.Is(err, ErrAmountExceedsDue) {
		t.Fatalf("Confirm second: got %v, want ErrAmountExceedsDue", err)
	}

	order, _ := f.orders.GetByOrderID(ctx, second.OrderID)
	if order.State != models.OrderStateFailed {
		t.Errorf("second order state: got %s, want %s", order.State, models.OrderStateFailed)
	}
	if order.FailureReason == "" {
		t.Error("second order carries no failure reason")
	}

	acct, _ := f.accounts.GetByStudentID(ctx, "stu-1")
	if acct.Paid != 800 {
		t.Errorf("paid: got %d, want 800", acct.Paid)
	}
	if len(acct.History) != 1 {
		t.Errorf("history: got %d entries, want 1", len(acct.History))
	}
	if len(f.notifier.failed) != 1 {
		t.Errorf("failure notifications: got %d, want 1", len(f.notifier.failed))
	}
}

// TestFailOrderLosesRace feeds failOrder a stale snapshot of an order
// that has since committed: the guarded transition matches nothing, so no
// failure may be recorded or announced.
func TestFailOrderLosesRace(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()
	mustCreateAccount(t, f.accounts, "stu-1", 1000)

	checkout, err := f.orch.CreateOrder(ctx, "stu-1", 1000)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	stale, err := f.orders.GetByOrderID(ctx, checkout.OrderID)
	if err != nil {
		t.Fatalf("GetByOrderID: %v", err)
	}

	if _, err := f.orch.Confirm(ctx, checkout.OrderID, "pay_1", f.verifier.Sign(checkout.OrderID, "pay_1")); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	f.orch.failOrder(ctx, stale, "pay_forged", "signature mismatch",
		[]models.OrderState{models.OrderStateCreated, models.OrderStateAwaitingConfirmation})

	order, _ := f.orders.GetByOrderID(ctx, checkout.OrderID)
	if order.State != models.OrderStateCommitted {
		t.Errorf("order state: got %s, want %s", order.State, models.OrderStateCommitted)
	}
	if len(f.notifier.failed) != 0 {
		t.Errorf("failure notifications after lost race: got %d, want 0", len(f.notifier.failed))
	}
}

func TestConfirmUnknownOrder(t *testing.T) {
	f := newOrchestratorFixture(t)
	if _, err := f.orch.Confirm(context.Background(), "order_missing", "pay_1", "sig"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("unknown order: got %v, want ErrOrderNotFound", err)
	}
}
