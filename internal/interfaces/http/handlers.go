package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ledgerline/settlement/internal/application/service"
	"github.com/ledgerline/settlement/internal/domain/entity"
	"github.com/ledgerline/settlement/internal/domain/settlement"
)

// Error kinds surfaced to callers alongside the HTTP status
const (
	kindValidation   = "validation"
	kindNotFound     = "not_found"
	kindInvalidState = "invalid_state_transition"
	kindConflict     = "concurrency_conflict"
	kindAllocation   = "allocation_failure"
	kindInternal     = "internal"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	settlementService service.SettlementService
	obligationService service.ObligationService
	logger            Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	settlementService service.SettlementService,
	obligationService service.ObligationService,
	logger Logger,
) *Handlers {
	return &Handlers{
		settlementService: settlementService,
		obligationService: obligationService,
		logger:            logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// InitiatePaymentRequest is the body of POST /api/v1/payments
type InitiatePaymentRequest struct {
	CounterpartyID int64   `json:"counterparty_id" binding:"required"`
	AmountCents    int64   `json:"amount_cents" binding:"required"`
	PaymentType    string  `json:"payment_type" binding:"required"`
	ObligationIDs  []int64 `json:"obligation_ids" binding:"required"`
	InitiatedBy    string  `json:"initiated_by"`
}

// ApprovePaymentRequest is the body of POST /api/v1/payments/:id/approve
type ApprovePaymentRequest struct {
	Note          string `json:"note"`
	SourceOfFunds string `json:"source_of_funds"`
}

// RejectPaymentRequest is the body of POST /api/v1/payments/:id/reject
type RejectPaymentRequest struct {
	Note string `json:"note"`
}

// ListPaymentsRequest represents query parameters for listing payments
type ListPaymentsRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// InitiatePayment handles POST /api/v1/payments
func (h *Handlers) InitiatePayment(c *gin.Context) {
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
			Kind:    kindValidation,
		})
		return
	}

	payment, err := h.settlementService.Initiate(c.Request.Context(), service.InitiateRequest{
		CounterpartyID: req.CounterpartyID,
		AmountCents:    req.AmountCents,
		Type:           entity.PaymentType(req.PaymentType),
		ObligationIDs:  req.ObligationIDs,
		InitiatedBy:    req.InitiatedBy,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    payment,
	})
}

// GetPayment handles GET /api/v1/payments/:id
func (h *Handlers) GetPayment(c *gin.Context) {
	id, ok := h.paymentID(c)
	if !ok {
		return
	}

	payment, err := h.settlementService.GetPayment(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    payment,
	})
}

// ListAllocations handles GET /api/v1/payments/:id/allocations
func (h *Handlers) ListAllocations(c *gin.Context) {
	id, ok := h.paymentID(c)
	if !ok {
		return
	}

	rows, err := h.settlementService.ListAllocations(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    rows,
	})
}

// ApprovePayment handles POST /api/v1/payments/:id/approve
func (h *Handlers) ApprovePayment(c *gin.Context) {
	id, ok := h.paymentID(c)
	if !ok {
		return
	}

	var req ApprovePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
			Kind:    kindValidation,
		})
		return
	}

	payment, err := h.settlementService.Approve(c.Request.Context(), id, req.Note, req.SourceOfFunds)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    payment,
	})
}

// RejectPayment handles POST /api/v1/payments/:id/reject
func (h *Handlers) RejectPayment(c *gin.Context) {
	id, ok := h.paymentID(c)
	if !ok {
		return
	}

	var req RejectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
			Kind:    kindValidation,
		})
		return
	}

	payment, err := h.settlementService.Reject(c.Request.Context(), id, req.Note)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    payment,
	})
}

// GetObligation handles GET /api/v1/obligations/:id
func (h *Handlers) GetObligation(c *gin.Context) {
	id, ok := h.pathID(c, "invalid obligation ID")
	if !ok {
		return
	}

	obligation, err := h.obligationService.GetObligation(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    obligation,
	})
}

// ListObligations handles GET /api/v1/counterparties/:id/obligations
func (h *Handlers) ListObligations(c *gin.Context) {
	id, ok := h.counterpartyID(c)
	if !ok {
		return
	}

	summary, err := h.obligationService.ListOutstanding(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    summary,
	})
}

// ListPayments handles GET /api/v1/counterparties/:id/payments
func (h *Handlers) ListPayments(c *gin.Context) {
	id, ok := h.counterpartyID(c)
	if !ok {
		return
	}

	var req ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid query parameters",
			Kind:    kindValidation,
		})
		return
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	payments, err := h.settlementService.ListPayments(c.Request.Context(), id, req.Limit, req.Offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    payments,
	})
}

// respondError maps engine errors to HTTP status codes and error kinds
func (h *Handlers) respondError(c *gin.Context, err error) {
	var validationErr *settlement.ValidationError
	var notFoundErr *settlement.NotFoundError
	var stateErr *settlement.InvalidStateTransitionError
	var allocationErr *settlement.AllocationFailure

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: validationErr.Error(), Kind: kindValidation})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: notFoundErr.Error(), Kind: kindNotFound})
	case errors.As(err, &stateErr):
		c.JSON(http.StatusConflict, Response{Success: false, Error: stateErr.Error(), Kind: kindInvalidState})
	case errors.Is(err, settlement.ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error(), Kind: kindConflict})
	case errors.As(err, &allocationErr):
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: allocationErr.Error(), Kind: kindAllocation})
	default:
		h.logger.Error("Request failed", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error", Kind: kindInternal})
	}
}

// paymentID parses the :id path parameter as a payment ID
func (h *Handlers) paymentID(c *gin.Context) (int64, bool) {
	return h.pathID(c, "invalid payment ID")
}

// counterpartyID parses the :id path parameter as a counterparty ID
func (h *Handlers) counterpartyID(c *gin.Context) (int64, bool) {
	return h.pathID(c, "invalid counterparty ID")
}

func (h *Handlers) pathID(c *gin.Context, message string) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.logger.Error("Invalid path ID", "id", idStr, "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   message,
			Kind:    kindValidation,
		})
		return 0, false
	}
	return id, true
}
