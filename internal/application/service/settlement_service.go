package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ledgerline/settlement/internal/application/port"
	"github.com/ledgerline/settlement/internal/domain/entity"
	"github.com/ledgerline/settlement/internal/domain/lifecycle"
	"github.com/ledgerline/settlement/internal/domain/settlement"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// InitiateRequest carries everything needed to start a payment against a
// set of candidate obligations
type InitiateRequest struct {
	CounterpartyID int64
	AmountCents    int64
	Type           entity.PaymentType
	ObligationIDs  []int64
	InitiatedBy    string
}

// SettlementService allocates payments across outstanding obligations,
// finalizes them on approval and unwinds them on rejection
type SettlementService interface {
	Initiate(ctx context.Context, req InitiateRequest) (*entity.Payment, error)
	Approve(ctx context.Context, paymentID int64, note, sourceOfFunds string) (*entity.Payment, error)
	Reject(ctx context.Context, paymentID int64, note string) (*entity.Payment, error)
	GetPayment(ctx context.Context, paymentID int64) (*entity.Payment, error)
	ListAllocations(ctx context.Context, paymentID int64) ([]*entity.AllocationWithObligation, error)
	ListPayments(ctx context.Context, counterpartyID int64, limit, offset int) ([]*entity.Payment, error)
}

type settlementServiceImpl struct {
	obligationRepo port.ObligationRepository
	paymentRepo    port.PaymentRepository
	allocationRepo port.AllocationRepository
	txManager      port.TransactionManager
	logger         Logger
	now            func() time.Time
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	obligationRepo port.ObligationRepository,
	paymentRepo port.PaymentRepository,
	allocationRepo port.AllocationRepository,
	txManager port.TransactionManager,
	logger Logger,
) SettlementService {
	return &settlementServiceImpl{
		obligationRepo: obligationRepo,
		paymentRepo:    paymentRepo,
		allocationRepo: allocationRepo,
		txManager:      txManager,
		logger:         logger,
		now:            time.Now,
	}
}

// Initiate creates a payment and applies it across the candidate
// obligations oldest-first. The payment row is committed before the
// allocation pass so that a failed pass can still be recorded as a Failed
// payment with its error log; the obligation updates and allocation rows
// themselves are written in one transaction and never partially committed.
func (s *settlementServiceImpl) Initiate(ctx context.Context, req InitiateRequest) (*entity.Payment, error) {
	obligations, err := s.validateInitiate(ctx, req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	payment := &entity.Payment{
		CounterpartyID: req.CounterpartyID,
		AmountCents:    req.AmountCents,
		Type:           req.Type,
		Status:         entity.PaymentPending,
		InitiatedBy:    req.InitiatedBy,
		InitiatedAt:    now,
		CreatedAt:      now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		s.logger.Error("Failed to create payment", "error", err, "counterparty_id", req.CounterpartyID)
		return nil, fmt.Errorf("create payment: %w", err)
	}

	plan := settlement.BuildApplicationPlan(obligations, req.AmountCents)

	var failedID int64
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, change := range plan.Changes {
			if err := s.obligationRepo.ApplyChange(txCtx, change); err != nil {
				failedID = change.ObligationID
				return fmt.Errorf("update obligation %d: %w", change.ObligationID, err)
			}
		}
		if allocs := plan.Allocations(payment.ID, now); len(allocs) > 0 {
			if err := s.allocationRepo.CreateMany(txCtx, allocs); err != nil {
				return fmt.Errorf("create allocations: %w", err)
			}
		}
		return nil
	})

	if err != nil {
		failure := &settlement.AllocationFailure{PaymentID: payment.ID}
		if failedID != 0 {
			failure.Details = []settlement.FailureDetail{{ObligationID: failedID, Message: err.Error()}}
		} else {
			failure.Details = []settlement.FailureDetail{{Message: err.Error()}}
		}
		if markErr := s.paymentRepo.MarkFailed(ctx, payment.ID, failure.Log()); markErr != nil {
			s.logger.Error("Failed to mark payment as failed", "error", markErr, "payment_id", payment.ID)
		}
		payment.Status = entity.PaymentFailed
		payment.ErrorLog = failure.Log()
		s.logger.Error("Payment initiation failed", "error", err, "payment_id", payment.ID)
		return payment, failure
	}

	s.logger.Info("Payment initiated",
		"payment_id", payment.ID,
		"counterparty_id", req.CounterpartyID,
		"amount_cents", req.AmountCents,
		"obligations", len(plan.Changes),
	)
	return payment, nil
}

// Approve finalizes a pending payment. Obligation state is re-derived from
// the current rows rather than trusted from the stored allocations, so an
// approval with no intervening payments writes back exactly the state the
// initiation produced.
func (s *settlementServiceImpl) Approve(ctx context.Context, paymentID int64, note, sourceOfFunds string) (*entity.Payment, error) {
	payment, err := s.requirePayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanFire(payment.Status, lifecycle.TriggerApprove) {
		return nil, &settlement.InvalidStateTransitionError{
			PaymentID: paymentID,
			Status:    payment.Status,
			Action:    "approve",
		}
	}

	rows, err := s.allocationRepo.ListByPayment(ctx, paymentID)
	if err != nil {
		s.logger.Error("Failed to load allocations", "error", err, "payment_id", paymentID)
		return nil, fmt.Errorf("load allocations: %w", err)
	}

	plan := settlement.BuildApprovalPlan(rows, payment.AmountCents)
	approvedAt := s.now()

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, change := range plan.Changes {
			if err := s.obligationRepo.ApplyChange(txCtx, change); err != nil {
				return s.obligationFailure(paymentID, change.ObligationID, err)
			}
		}
		if err := s.paymentRepo.MarkApproved(txCtx, paymentID, note, sourceOfFunds, approvedAt); err != nil {
			return fmt.Errorf("mark approved: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Payment approval failed", "error", err, "payment_id", paymentID)
		return nil, err
	}

	payment.Status = entity.PaymentApproved
	payment.ApprovedAt = &approvedAt
	payment.Note = note
	payment.SourceOfFunds = sourceOfFunds

	s.logger.Info("Payment approved", "payment_id", paymentID, "amount_cents", payment.AmountCents)
	return payment, nil
}

// Reject reverses a pending payment's effect on its obligations,
// newest-first, then removes its allocations
func (s *settlementServiceImpl) Reject(ctx context.Context, paymentID int64, note string) (*entity.Payment, error) {
	payment, err := s.requirePayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanFire(payment.Status, lifecycle.TriggerReject) {
		return nil, &settlement.InvalidStateTransitionError{
			PaymentID: paymentID,
			Status:    payment.Status,
			Action:    "reject",
		}
	}

	rows, err := s.allocationRepo.ListByPayment(ctx, paymentID)
	if err != nil {
		s.logger.Error("Failed to load allocations", "error", err, "payment_id", paymentID)
		return nil, fmt.Errorf("load allocations: %w", err)
	}
	if len(rows) == 0 {
		return nil, settlement.NewValidationError("payment %d has no allocations to reverse", paymentID)
	}

	plan := settlement.BuildReversalPlan(rows, payment.AmountCents)
	rejectedAt := s.now()

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, change := range plan.Changes {
			if err := s.obligationRepo.ApplyChange(txCtx, change); err != nil {
				return s.obligationFailure(paymentID, change.ObligationID, err)
			}
		}
		if err := s.allocationRepo.DeleteByPayment(txCtx, paymentID); err != nil {
			return fmt.Errorf("delete allocations: %w", err)
		}
		if err := s.paymentRepo.MarkRejected(txCtx, paymentID, note, rejectedAt); err != nil {
			return fmt.Errorf("mark rejected: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Payment rejection failed", "error", err, "payment_id", paymentID)
		return nil, err
	}

	payment.Status = entity.PaymentRejected
	payment.ApprovedAt = &rejectedAt
	payment.Note = note

	s.logger.Info("Payment rejected", "payment_id", paymentID, "amount_cents", payment.AmountCents)
	return payment, nil
}

// GetPayment retrieves a payment by ID
func (s *settlementServiceImpl) GetPayment(ctx context.Context, paymentID int64) (*entity.Payment, error) {
	return s.requirePayment(ctx, paymentID)
}

// ListAllocations retrieves a payment's allocations joined with their
// obligations, for audit and remediation views
func (s *settlementServiceImpl) ListAllocations(ctx context.Context, paymentID int64) ([]*entity.AllocationWithObligation, error) {
	if _, err := s.requirePayment(ctx, paymentID); err != nil {
		return nil, err
	}
	rows, err := s.allocationRepo.ListByPayment(ctx, paymentID)
	if err != nil {
		s.logger.Error("Failed to list allocations", "error", err, "payment_id", paymentID)
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	return rows, nil
}

// ListPayments retrieves a counterparty's payments with pagination
func (s *settlementServiceImpl) ListPayments(ctx context.Context, counterpartyID int64, limit, offset int) ([]*entity.Payment, error) {
	payments, err := s.paymentRepo.ListByCounterparty(ctx, counterpartyID, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list payments", "error", err, "counterparty_id", counterpartyID)
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// validateInitiate checks the request preconditions and returns the loaded
// candidate obligations
func (s *settlementServiceImpl) validateInitiate(ctx context.Context, req InitiateRequest) ([]*entity.Obligation, error) {
	if req.AmountCents <= 0 {
		return nil, settlement.NewValidationError("amount must be positive, got %d", req.AmountCents)
	}
	if !req.Type.IsValid() {
		return nil, settlement.NewValidationError("unknown payment type %q", string(req.Type))
	}
	if len(req.ObligationIDs) == 0 {
		return nil, settlement.NewValidationError("no obligations selected")
	}

	obligations, err := s.obligationRepo.GetByIDs(ctx, req.ObligationIDs)
	if err != nil {
		return nil, fmt.Errorf("load obligations: %w", err)
	}

	found := make(map[int64]bool, len(obligations))
	var outstanding int64
	for _, o := range obligations {
		found[o.ID] = true
		if o.CounterpartyID != req.CounterpartyID {
			return nil, settlement.NewValidationError(
				"obligation %d belongs to counterparty %d, not %d", o.ID, o.CounterpartyID, req.CounterpartyID)
		}
		if o.Status == entity.ObligationPaid {
			return nil, settlement.NewValidationError("obligation %d is already paid", o.ID)
		}
		outstanding += o.BalanceCents
	}
	for _, id := range req.ObligationIDs {
		if !found[id] {
			return nil, &settlement.NotFoundError{Kind: "obligation", ID: id}
		}
	}

	// A partial payment that covers everything is a mislabeled full payment;
	// a full payment larger than the outstanding total would strand money.
	if req.Type == entity.PaymentTypePartial && req.AmountCents >= outstanding {
		return nil, settlement.NewValidationError(
			"partial amount %d must be less than outstanding total %d", req.AmountCents, outstanding)
	}
	if req.Type == entity.PaymentTypeFull && req.AmountCents > outstanding {
		return nil, settlement.NewValidationError(
			"amount %d exceeds outstanding total %d", req.AmountCents, outstanding)
	}

	return obligations, nil
}

// requirePayment loads a payment or returns NotFoundError
func (s *settlementServiceImpl) requirePayment(ctx context.Context, paymentID int64) (*entity.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		s.logger.Error("Failed to get payment", "error", err, "payment_id", paymentID)
		return nil, fmt.Errorf("get payment: %w", err)
	}
	if payment == nil {
		return nil, &settlement.NotFoundError{Kind: "payment", ID: paymentID}
	}
	return payment, nil
}

// obligationFailure wraps a failed obligation update, preserving a
// concurrency conflict so callers can distinguish it
func (s *settlementServiceImpl) obligationFailure(paymentID, obligationID int64, err error) error {
	if errors.Is(err, settlement.ErrConcurrencyConflict) {
		return fmt.Errorf("obligation %d: %w", obligationID, err)
	}
	return &settlement.AllocationFailure{
		PaymentID: paymentID,
		Details: []settlement.FailureDetail{
			{ObligationID: obligationID, Message: err.Error()},
		},
	}
}
