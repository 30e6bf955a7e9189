package handlers

import (
	"errors"
	"net/http"

	"institute/services/fees"
	"institute/services/gateway"
	"institute/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FeeHandler exposes the fee ledger over HTTP.
type FeeHandler struct {
	service      fees.FeeService
	recorder     *fees.Recorder
	orchestrator *fees.Orchestrator
	logger       *zap.Logger
}

// NewFeeHandler builds the fee endpoints handler.
func NewFeeHandler(service fees.FeeService, recorder *fees.Recorder, orchestrator *fees.Orchestrator, logger *zap.Logger) *FeeHandler {
	return &FeeHandler{
		service:      service,
		recorder:     recorder,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// GetAccountHandler returns {total, paid, due, history} for a student.
func (h *FeeHandler) GetAccountHandler(c *gin.Context) {
	studentID := c.Param("studentId")

	view, err := h.service.Account(c.Request.Context(), studentID)
	if err != nil {
		utils.JSONError(c, feeErrorStatus(err), "failed to fetch fee account", err.Error())
		return
	}
	c.JSON(http.StatusOK, view)
}

// ManualPaymentHandler records a staff-entered payment. The caller must
// supply a stable idempotency token so retried clicks do not double-credit.
func (h *FeeHandler) ManualPaymentHandler(c *gin.Context) {
	var input struct {
		StudentID        string `json:"studentId" binding:"required"`
		Amount           int64  `json:"amount"`
		IdempotencyToken string `json:"idempotencyToken"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	rec, err := h.recorder.Record(c.Request.Context(), input.StudentID, input.Amount, input.IdempotencyToken)
	if err != nil {
		utils.JSONError(c, feeErrorStatus(err), "manual payment rejected", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": rec})
}

// InitiatePaymentHandler creates a gateway order for an online payment.
func (h *FeeHandler) InitiatePaymentHandler(c *gin.Context) {
	var input struct {
		StudentID string `json:"studentId" binding:"required"`
		Amount    int64  `json:"amount"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	checkout, err := h.orchestrator.CreateOrder(c.Request.Context(), input.StudentID, input.Amount)
	if err != nil {
		utils.JSONError(c, feeErrorStatus(err), "failed to initiate payment", err.Error())
		return
	}
	c.JSON(http.StatusOK, checkout)
}

// VerifyPaymentHandler handles gateway confirmations. The client callback
// and the server-to-server webhook both land here; duplicate deliveries
// replay the stored outcome.
func (h *FeeHandler) VerifyPaymentHandler(c *gin.Context) {
	var input struct {
		OrderID   string `json:"orderId" binding:"required"`
		PaymentID string `json:"paymentId" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	result, err := h.orchestrator.Confirm(c.Request.Context(), input.OrderID, input.PaymentID, input.Signature)
	if err != nil {
		utils.JSONError(c, feeErrorStatus(err), "payment confirmation rejected", err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

// AddFeeHandler administratively raises a student's total owed.
func (h *FeeHandler) AddFeeHandler(c *gin.Context) {
	var input struct {
		StudentID string `json:"studentId" binding:"required"`
		Amount    int64  `json:"amount"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	view, err := h.service.AddFee(c.Request.Context(), input.StudentID, input.Amount)
	if err != nil {
		utils.JSONError(c, feeErrorStatus(err), "failed to add fee", err.Error())
		return
	}
	c.JSON(http.StatusOK, view)
}

// OrderStatusHandler returns the read-only record of a payment order.
func (h *FeeHandler) OrderStatusHandler(c *gin.Context) {
	order, err := h.orchestrator.Order(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		utils.JSONError(c, feeErrorStatus(err), "failed to fetch order", err.Error())
		return
	}
	c.JSON(http.StatusOK, order)
}

// feeErrorStatus maps domain rejections onto HTTP statuses.
func feeErrorStatus(err error) int {
	switch {
	case errors.Is(err, fees.ErrAccountNotFound), errors.Is(err, fees.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, fees.ErrInvalidAmount), errors.Is(err, fees.ErrMissingDedupeKey):
		return http.StatusBadRequest
	case errors.Is(err, fees.ErrAmountExceedsDue), errors.Is(err, fees.ErrSignatureMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, gateway.ErrUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, fees.ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
