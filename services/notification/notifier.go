package notification

import (
	"context"
	"fmt"

	messageRepo "institute/database/repository/message"
	studentRepo "institute/database/repository/student"
	"institute/models"
	"institute/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultNotifier persists every event to the student's message feed and
// additionally pushes over FCM when the student has a registered token.
type DefaultNotifier struct {
	Students studentRepo.StudentRepository
	Messages messageRepo.MessageRepository
	Logger   *zap.Logger
}

// PaymentSucceeded announces a committed payment.
func (n *DefaultNotifier) PaymentSucceeded(ctx context.Context, studentID string, rec *models.PaymentRecord) error {
	title := "Payment received"
	body := fmt.Sprintf("Your payment of %s via %s was successful.", formatAmount(rec.Amount), rec.Method)
	return n.deliver(ctx, studentID, "payment_success", title, body, map[string]string{
		"recordId": rec.ID,
		"method":   string(rec.Method),
	})
}

// PaymentFailed announces a failed online payment attempt.
func (n *DefaultNotifier) PaymentFailed(ctx context.Context, studentID, orderID, reason string) error {
	title := "Payment failed"
	body := fmt.Sprintf("Your online payment could not be completed: %s. Please initiate a new payment.", reason)
	return n.deliver(ctx, studentID, "payment_failed", title, body, map[string]string{
		"orderId": orderID,
		"reason":  reason,
	})
}

// Announce delivers a staff message to a student.
func (n *DefaultNotifier) Announce(ctx context.Context, studentID, title, body string) error {
	return n.deliver(ctx, studentID, "announcement", title, body, nil)
}

func (n *DefaultNotifier) deliver(ctx context.Context, studentID, msgType, title, body string, data map[string]string) error {
	msg := &models.Message{
		ID:        uuid.New().String(),
		StudentID: studentID,
		Type:      msgType,
		Title:     title,
		Body:      body,
		Data:      data,
	}
	if err := n.Messages.Create(msg); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	student, err := n.Students.GetByID(studentID)
	if err != nil {
		return fmt.Errorf("could not find student %s: %w", studentID, err)
	}
	if student.FCMToken == "" || utils.FCMClient == nil {
		return nil // feed-only delivery
	}

	push := &messaging.Message{
		Token: student.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	if _, err := utils.FCMClient.Send(ctx, push); err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}

	n.Logger.Debug("notification delivered",
		zap.String("studentId", studentID),
		zap.String("type", msgType),
	)
	return nil
}

// formatAmount renders a paise amount as rupees.
func formatAmount(paise int64) string {
	return fmt.Sprintf("₹%d.%02d", paise/100, paise%100)
}
