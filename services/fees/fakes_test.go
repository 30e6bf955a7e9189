package fees

import (
	"context"
	"fmt"
	"sync"
	"time"

	ledgerRepo "institute/database/repository/ledger"
	orderRepo "institute/database/repository/order"
	"institute/models"
	"institute/services/gateway"
)

// memAccountRepo is an in-memory ledger store with the same atomicity
// contract as the Mongo implementation.
type memAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*models.FeeAccount
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: make(map[string]*models.FeeAccount)}
}

func (r *memAccountRepo) Create(ctx context.Context, acct *models.FeeAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[acct.StudentID]; ok {
		return fmt.Errorf("account already exists for student %s", acct.StudentID)
	}
	cp := cloneAccount(acct)
	cp.Version = 1
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.accounts[acct.StudentID] = cp
	return nil
}

func (r *memAccountRepo) GetByStudentID(ctx context.Context, studentID string) (*models.FeeAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.accounts[studentID]
	if !ok {
		return nil, ledgerRepo.ErrNotFound
	}
	return cloneAccount(acct), nil
}

func (r *memAccountRepo) WithAccount(ctx context.Context, studentID string, fn func(*models.FeeAccount) error) (*models.FeeAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.accounts[studentID]
	if !ok {
		return nil, ledgerRepo.ErrNotFound
	}
	work := cloneAccount(acct)
	if err := fn(work); err != nil {
		return nil, err
	}
	work.Version = acct.Version + 1
	work.UpdatedAt = time.Now()
	r.accounts[studentID] = work
	return cloneAccount(work), nil
}

func cloneAccount(acct *models.FeeAccount) *models.FeeAccount {
	cp := *acct
	cp.History = append([]models.PaymentRecord(nil), acct.History...)
	return &cp
}

// memOrderRepo is an in-memory order store with guarded transitions.
type memOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*models.PaymentOrder
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*models.PaymentOrder)}
}

func (r *memOrderRepo) Create(ctx context.Context, order *models.PaymentOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.OrderID]; ok {
		return fmt.Errorf("order %s already exists", order.OrderID)
	}
	cp := *order
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.orders[order.OrderID] = &cp
	return nil
}

func (r *memOrderRepo) GetByOrderID(ctx context.Context, orderID string) (*models.PaymentOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return nil, orderRepo.ErrNotFound
	}
	cp := *order
	return &cp, nil
}

func (r *memOrderRepo) Transition(ctx context.Context, orderID string, from []models.OrderState, to models.OrderState, set map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return false, nil
	}
	matched := false
	for _, s := range from {
		if order.State == s {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	order.State = to
	order.UpdatedAt = time.Now()
	for k, v := range set {
		switch k {
		case "recordId":
			order.RecordID = v.(string)
		case "gatewayPaymentId":
			order.GatewayPaymentID = v.(string)
		case "failureReason":
			order.FailureReason = v.(string)
		}
	}
	return true, nil
}

// fakeGateway issues sequential order IDs and can be told to fail.
type fakeGateway struct {
	mu   sync.Mutex
	seq  int
	fail bool
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency string) (*gateway.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return nil, fmt.Errorf("create order: %w", gateway.ErrUnavailable)
	}
	g.seq++
	return &gateway.Order{ID: fmt.Sprintf("order_test%d", g.seq), Key: "key_test"}, nil
}

// fakeScheduler records scheduled expiries instead of enqueuing them.
type fakeScheduler struct {
	mu       sync.Mutex
	orderIDs []string
	delays   []time.Duration
}

func (s *fakeScheduler) ScheduleExpiry(ctx context.Context, orderID string, after time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderIDs = append(s.orderIDs, orderID)
	s.delays = append(s.delays, after)
	return nil
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu        sync.Mutex
	succeeded []string
	failed    []string
}

func (n *recordingNotifier) PaymentSucceeded(ctx context.Context, studentID string, rec *models.PaymentRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.succeeded = append(n.succeeded, studentID)
	return nil
}

func (n *recordingNotifier) PaymentFailed(ctx context.Context, studentID, orderID, reason string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, reason)
	return nil
}

func (n *recordingNotifier) Announce(ctx context.Context, studentID, title, body string) error {
	return nil
}
