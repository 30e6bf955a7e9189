package fees

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"institute/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestEngine(t *testing.T) (*Engine, *memAccountRepo) {
	t.Helper()
	repo := newMemAccountRepo()
	return NewEngine(repo, zap.NewNop(), false), repo
}

func mustCreateAccount(t *testing.T, repo *memAccountRepo, studentID string, total int64) {
	t.Helper()
	if err := repo.Create(context.Background(), &models.FeeAccount{StudentID: studentID, Total: total}); err != nil {
		t.Fatalf("create account: %v", err)
	}
}

// TestManualPaymentLifecycle walks one student through an opening balance,
// a manual payment, and a replayed submission of the same payment.
func TestManualPaymentLifecycle(t *testing.T) {
	engine, repo := newTestEngine(t)
	recorder := NewRecorder(engine)
	ctx := context.Background()

	mustCreateAccount(t, repo, "stu-1", 900000)

	rec, err := recorder.Record(ctx, "stu-1", 300000, "tok-1")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if rec.Method != models.PaymentMethodManual {
		t.Errorf("method: got %s, want %s", rec.Method, models.PaymentMethodManual)
	}

	acct, err := repo.GetByStudentID(ctx, "stu-1")
	if err != nil {
		t.Fatalf("GetByStudentID: %v", err)
	}
	if acct.Paid != 300000 {
		t.Errorf("paid: got %d, want 300000", acct.Paid)
	}
	if acct.Due() != 600000 {
		t.Errorf("due: got %d, want 600000", acct.Due())
	}
	if len(acct.History) != 1 {
		t.Fatalf("history: got %d entries, want 1", len(acct.History))
	}

	// Replaying the same idempotency token must return the original record
	// and leave the account untouched.
	replay, err := recorder.Record(ctx, "stu-1", 300000, "tok-1")
	if err != nil {
		t.Fatalf("Record replay: %v", err)
	}
	if replay.ID != rec.ID {
		t.Errorf("replay record ID: got %s, want %s", replay.ID, rec.ID)
	}
	acct, _ = repo.GetByStudentID(ctx, "stu-1")
	if acct.Paid != 300000 {
		t.Errorf("paid after replay: got %d, want 300000", acct.Paid)
	}
	if len(acct.History) != 1 {
		t.Errorf("history after replay: got %d entries, want 1", len(acct.History))
	}
}

func TestCommitValidation(t *testing.T) {
	engine, repo := newTestEngine(t)
	ctx := context.Background()

	mustCreateAccount(t, repo, "stu-1", 1000)

	if _, err := engine.Commit(ctx, "stu-1", 0, models.PaymentMethodManual, "tok-1"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount: got %v, want ErrInvalidAmount", err)
	}
	if _, err := engine.Commit(ctx, "stu-1", -50, models.PaymentMethodManual, "tok-1"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative amount: got %v, want ErrInvalidAmount", err)
	}
	if _, err := engine.Commit(ctx, "stu-1", 100, models.PaymentMethodManual, ""); !errors.Is(err, ErrMissingDedupeKey) {
		t.Errorf("missing dedupe key: got %v, want ErrMissingDedupeKey", err)
	}
	if _, err := engine.Commit(ctx, "nobody", 100, models.PaymentMethodManual, "tok-1"); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("unknown account: got %v, want ErrAccountNotFound", err)
	}

	acct, _ := repo.GetByStudentID(ctx, "stu-1")
	if acct.Paid != 0 || len(acct.History) != 0 {
		t.Errorf("rejected commits mutated the account: paid=%d history=%d", acct.Paid, len(acct.History))
	}
}

func TestCommitRejectsOverpayment(t *testing.T) {
	engine, repo := newTestEngine(t)
	ctx := context.Background()

	mustCreateAccount(t, repo, "stu-1", 1000)

	if _, err := engine.Commit(ctx, "stu-1", 600, models.PaymentMethodManual, "tok-1"); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if _, err := engine.Commit(ctx, "stu-1", 600, models.PaymentMethodManual, "tok-2"); !errors.Is(err, ErrAmountExceedsDue) {
		t.Errorf("overpayment: got %v, want ErrAmountExceedsDue", err)
	}

	acct, _ := repo.GetByStudentID(ctx, "stu-1")
	if acct.Paid != 600 {
		t.Errorf("paid after rejected overpayment: got %d, want 600", acct.Paid)
	}
	if len(acct.History) != 1 {
		t.Errorf("history after rejected overpayment: got %d entries, want 1", len(acct.History))
	}
}

func TestCommitAllowsOverpaymentWhenEnabled(t *testing.T) {
	repo := newMemAccountRepo()
	engine := NewEngine(repo, zap.NewNop(), true)
	ctx := context.Background()

	mustCreateAccount(t, repo, "stu-1", 1000)

	if _, err := engine.Commit(ctx, "stu-1", 1500, models.PaymentMethodManual, "tok-1"); err != nil {
		t.Fatalf("overpayment with override: %v", err)
	}
	acct, _ := repo.GetByStudentID(ctx, "stu-1")
	if acct.Due() != -500 {
		t.Errorf("due: got %d, want -500", acct.Due())
	}
}

// TestConcurrentCommits fires distinct-key commits from many goroutines
// against one account and checks that every paise is accounted for.
func TestConcurrentCommits(t *testing.T) {
	engine, repo := newTestEngine(t)
	ctx := context.Background()

	const workers = 20
	mustCreateAccount(t, repo, "stu-1", workers*100)

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := engine.Commit(ctx, "stu-1", 100, models.PaymentMethodManual, fmt.Sprintf("tok-%d", i)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent commit: %v", err)
	}

	acct, _ := repo.GetByStudentID(ctx, "stu-1")
	if acct.Paid != workers*100 {
		t.Errorf("paid: got %d, want %d", acct.Paid, workers*100)
	}
	if len(acct.History) != workers {
		t.Fatalf("history: got %d entries, want %d", len(acct.History), workers)
	}

	var sum int64
	for i, rec := range acct.History {
		sum += rec.Amount
		if i > 0 && !rec.Timestamp.After(acct.History[i-1].Timestamp) {
			t.Errorf("history timestamps not strictly increasing at entry %d", i)
		}
	}
	if sum != acct.Paid {
		t.Errorf("history sum: got %d, want %d", sum, acct.Paid)
	}
}

func TestAccountsAreIsolated(t *testing.T) {
	engine, repo := newTestEngine(t)
	ctx := context.Background()

	mustCreateAccount(t, repo, "stu-1", 1000)
	mustCreateAccount(t, repo, "stu-2", 2000)

	if _, err := engine.Commit(ctx, "stu-1", 400, models.PaymentMethodManual, "tok-1"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	other, _ := repo.GetByStudentID(ctx, "stu-2")
	if other.Paid != 0 || len(other.History) != 0 {
		t.Errorf("untouched account mutated: paid=%d history=%d", other.Paid, len(other.History))
	}
}

// TestReplayAuditLog checks the audit trail: a replayed submission must
// not produce a second "payment committed" line.
func TestReplayAuditLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	repo := newMemAccountRepo()
	engine := NewEngine(repo, zap.New(core), false)
	ctx := context.Background()

	mustCreateAccount(t, repo, "stu-1", 1000)

	if _, err := engine.Commit(ctx, "stu-1", 400, models.PaymentMethodManual, "tok-1"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, err := engine.Commit(ctx, "stu-1", 400, models.PaymentMethodManual, "tok-1"); err != nil {
		t.Fatalf("Commit replay: %v", err)
	}

	if got := logs.FilterMessage("payment committed").Len(); got != 1 {
		t.Errorf("committed log entries: got %d, want 1", got)
	}
	if got := logs.FilterMessage("duplicate payment replayed").Len(); got != 1 {
		t.Errorf("replay log entries: got %d, want 1", got)
	}
}

func TestAddFeeRaisesTotal(t *testing.T) {
	repo := newMemAccountRepo()
	svc := &DefaultFeeService{Accounts: repo, Logger: zap.NewNop()}
	ctx := context.Background()

	mustCreateAccount(t, repo, "stu-1", 1000)

	view, err := svc.AddFee(ctx, "stu-1", 500)
	if err != nil {
		t.Fatalf("AddFee: %v", err)
	}
	if view.Total != 1500 {
		t.Errorf("total: got %d, want 1500", view.Total)
	}
	if view.Due != 1500 {
		t.Errorf("due: got %d, want 1500", view.Due)
	}

	if _, err := svc.AddFee(ctx, "stu-1", -5); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative fee: got %v, want ErrInvalidAmount", err)
	}
	if _, err := svc.AddFee(ctx, "nobody", 100); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("unknown account: got %v, want ErrAccountNotFound", err)
	}
}
