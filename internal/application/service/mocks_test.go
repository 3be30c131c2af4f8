package service

import (
	"context"
	"time"

	"github.com/ledgerline/settlement/internal/domain/entity"
	"github.com/ledgerline/settlement/internal/domain/settlement"
)

type mockObligationRepo struct {
	getByIDFunc           func(ctx context.Context, id int64) (*entity.Obligation, error)
	getByIDsFunc          func(ctx context.Context, ids []int64) ([]*entity.Obligation, error)
	listByCounterpartyFunc func(ctx context.Context, counterpartyID int64, statuses []entity.ObligationStatus) ([]*entity.Obligation, error)
	applyChangeFunc       func(ctx context.Context, change settlement.ObligationChange) error

	appliedChanges []settlement.ObligationChange
}

func (m *mockObligationRepo) GetByID(ctx context.Context, id int64) (*entity.Obligation, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockObligationRepo) GetByIDs(ctx context.Context, ids []int64) ([]*entity.Obligation, error) {
	if m.getByIDsFunc != nil {
		return m.getByIDsFunc(ctx, ids)
	}
	return nil, nil
}

func (m *mockObligationRepo) ListByCounterparty(ctx context.Context, counterpartyID int64, statuses []entity.ObligationStatus) ([]*entity.Obligation, error) {
	if m.listByCounterpartyFunc != nil {
		return m.listByCounterpartyFunc(ctx, counterpartyID, statuses)
	}
	return nil, nil
}

func (m *mockObligationRepo) ApplyChange(ctx context.Context, change settlement.ObligationChange) error {
	if m.applyChangeFunc != nil {
		if err := m.applyChangeFunc(ctx, change); err != nil {
			return err
		}
	}
	m.appliedChanges = append(m.appliedChanges, change)
	return nil
}

type mockPaymentRepo struct {
	createFunc  func(ctx context.Context, payment *entity.Payment) error
	getByIDFunc func(ctx context.Context, id int64) (*entity.Payment, error)

	approvedID   int64
	approvedNote string
	rejectedID   int64
	rejectedNote string
	failedID     int64
	failedLog    string
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, payment)
	}
	payment.ID = 5
	return nil
}

func (m *mockPaymentRepo) GetByID(ctx context.Context, id int64) (*entity.Payment, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockPaymentRepo) MarkApproved(ctx context.Context, id int64, note, sourceOfFunds string, at time.Time) error {
	m.approvedID = id
	m.approvedNote = note
	return nil
}

func (m *mockPaymentRepo) MarkRejected(ctx context.Context, id int64, note string, at time.Time) error {
	m.rejectedID = id
	m.rejectedNote = note
	return nil
}

func (m *mockPaymentRepo) MarkFailed(ctx context.Context, id int64, errorLog string) error {
	m.failedID = id
	m.failedLog = errorLog
	return nil
}

func (m *mockPaymentRepo) ListByCounterparty(ctx context.Context, counterpartyID int64, limit, offset int) ([]*entity.Payment, error) {
	return nil, nil
}

type mockAllocationRepo struct {
	createManyFunc    func(ctx context.Context, allocations []*entity.Allocation) error
	listByPaymentFunc func(ctx context.Context, paymentID int64) ([]*entity.AllocationWithObligation, error)

	created          []*entity.Allocation
	deletedPaymentID int64
}

func (m *mockAllocationRepo) CreateMany(ctx context.Context, allocations []*entity.Allocation) error {
	if m.createManyFunc != nil {
		if err := m.createManyFunc(ctx, allocations); err != nil {
			return err
		}
	}
	m.created = append(m.created, allocations...)
	return nil
}

func (m *mockAllocationRepo) ListByPayment(ctx context.Context, paymentID int64) ([]*entity.AllocationWithObligation, error) {
	if m.listByPaymentFunc != nil {
		return m.listByPaymentFunc(ctx, paymentID)
	}
	return nil, nil
}

func (m *mockAllocationRepo) DeleteByPayment(ctx context.Context, paymentID int64) error {
	m.deletedPaymentID = paymentID
	return nil
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}
