package fees

import (
	"context"
	"errors"

	ledgerRepo "institute/database/repository/ledger"
	"institute/models"

	"go.uber.org/zap"
)

// FeeService exposes fee account reads and administrative writes. All
// payment writes go through the Engine instead; AddFee is the one
// mutation outside that path, and it still runs inside WithAccount.
type FeeService interface {
	// Account returns the read-only projection clients render.
	Account(ctx context.Context, studentID string) (*models.AccountView, error)
	// CreateAccount opens a fee account at enrollment.
	CreateAccount(ctx context.Context, studentID string, total int64) error
	// AddFee administratively increases the amount owed.
	AddFee(ctx context.Context, studentID string, amount int64) (*models.AccountView, error)
}

// DefaultFeeService is the production implementation.
type DefaultFeeService struct {
	Accounts ledgerRepo.AccountRepository
	Logger   *zap.Logger
}

// Account fetches the account projection, with due recomputed on read.
func (s *DefaultFeeService) Account(ctx context.Context, studentID string) (*models.AccountView, error) {
	acct, err := s.Accounts.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, ledgerRepo.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return acct.View(), nil
}

// CreateAccount opens the account with the enrollment fee as total.
func (s *DefaultFeeService) CreateAccount(ctx context.Context, studentID string, total int64) error {
	if studentID == "" {
		return ErrAccountNotFound
	}
	if total < 0 {
		return ErrInvalidAmount
	}
	acct := &models.FeeAccount{
		StudentID: studentID,
		Total:     total,
	}
	return s.Accounts.Create(ctx, acct)
}

// AddFee raises total atomically. Paid and history are untouched, so due
// grows by exactly amount.
func (s *DefaultFeeService) AddFee(ctx context.Context, studentID string, amount int64) (*models.AccountView, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	acct, err := s.Accounts.WithAccount(ctx, studentID, func(acct *models.FeeAccount) error {
		acct.Total += amount
		return nil
	})
	if err != nil {
		if errors.Is(err, ledgerRepo.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		if errors.Is(err, ledgerRepo.ErrContention) {
			return nil, ErrTransient
		}
		return nil, err
	}

	s.Logger.Info("fee added",
		zap.String("studentId", studentID),
		zap.Int64("amount", amount),
		zap.Int64("total", acct.Total),
	)
	return acct.View(), nil
}
