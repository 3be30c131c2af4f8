package service

import (
	"context"
	"fmt"

	"github.com/ledgerline/settlement/internal/application/port"
	"github.com/ledgerline/settlement/internal/domain/entity"
	"github.com/ledgerline/settlement/internal/domain/settlement"
)

// OutstandingSummary aggregates a counterparty's open obligations
type OutstandingSummary struct {
	Obligations      []*entity.Obligation `json:"obligations"`
	OutstandingCents int64                `json:"outstanding_cents"`
}

// ObligationService exposes the read surface callers use to build a
// candidate set before initiating a payment
type ObligationService interface {
	GetObligation(ctx context.Context, id int64) (*entity.Obligation, error)
	ListOutstanding(ctx context.Context, counterpartyID int64) (*OutstandingSummary, error)
}

type obligationServiceImpl struct {
	obligationRepo port.ObligationRepository
	logger         Logger
}

// NewObligationService creates a new ObligationService
func NewObligationService(obligationRepo port.ObligationRepository, logger Logger) ObligationService {
	return &obligationServiceImpl{
		obligationRepo: obligationRepo,
		logger:         logger,
	}
}

// GetObligation retrieves an obligation by ID
func (s *obligationServiceImpl) GetObligation(ctx context.Context, id int64) (*entity.Obligation, error) {
	obligation, err := s.obligationRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get obligation", "error", err, "id", id)
		return nil, fmt.Errorf("get obligation: %w", err)
	}
	if obligation == nil {
		return nil, &settlement.NotFoundError{Kind: "obligation", ID: id}
	}
	return obligation, nil
}

// ListOutstanding retrieves a counterparty's unpaid and partially paid
// obligations, oldest first, with their summed balance
func (s *obligationServiceImpl) ListOutstanding(ctx context.Context, counterpartyID int64) (*OutstandingSummary, error) {
	obligations, err := s.obligationRepo.ListByCounterparty(ctx, counterpartyID, []entity.ObligationStatus{
		entity.ObligationUnpaid,
		entity.ObligationPartiallyPaid,
	})
	if err != nil {
		s.logger.Error("Failed to list obligations", "error", err, "counterparty_id", counterpartyID)
		return nil, fmt.Errorf("list obligations: %w", err)
	}

	summary := &OutstandingSummary{Obligations: obligations}
	for _, o := range obligations {
		summary.OutstandingCents += o.BalanceCents
	}
	return summary, nil
}
