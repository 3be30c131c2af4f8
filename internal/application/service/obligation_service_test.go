package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ledgerline/settlement/internal/domain/entity"
	"github.com/ledgerline/settlement/internal/domain/settlement"
)

func TestListOutstanding(t *testing.T) {
	var gotStatuses []entity.ObligationStatus
	obligationRepo := &mockObligationRepo{
		listByCounterpartyFunc: func(ctx context.Context, counterpartyID int64, statuses []entity.ObligationStatus) ([]*entity.Obligation, error) {
			gotStatuses = statuses
			return testObligations(), nil
		},
	}

	svc := NewObligationService(obligationRepo, &mockLogger{})

	summary, err := svc.ListOutstanding(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListOutstanding() unexpected error: %v", err)
	}

	if len(summary.Obligations) != 2 {
		t.Fatalf("got %d obligations, want 2", len(summary.Obligations))
	}
	if summary.OutstandingCents != 80000 {
		t.Errorf("outstanding = %d, want 80000", summary.OutstandingCents)
	}
	if len(gotStatuses) != 2 {
		t.Errorf("filter statuses = %v, want unpaid and partially paid", gotStatuses)
	}
}

func TestGetObligation_NotFound(t *testing.T) {
	svc := NewObligationService(&mockObligationRepo{}, &mockLogger{})

	_, err := svc.GetObligation(context.Background(), 404)

	var notFound *settlement.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("GetObligation() error = %v, want NotFoundError", err)
	}
}
