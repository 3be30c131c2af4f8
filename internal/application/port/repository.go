package port

import (
	"context"
	"time"

	"github.com/ledgerline/settlement/internal/domain/entity"
	"github.com/ledgerline/settlement/internal/domain/settlement"
)

// ObligationRepository defines persistence operations for Obligation
type ObligationRepository interface {
	// GetByID retrieves an obligation by its ID; nil if it does not exist
	GetByID(ctx context.Context, id int64) (*entity.Obligation, error)

	// GetByIDs retrieves the obligations with the given IDs
	GetByIDs(ctx context.Context, ids []int64) ([]*entity.Obligation, error)

	// ListByCounterparty retrieves a counterparty's obligations, optionally
	// filtered by status, ordered by issue date ascending
	ListByCounterparty(ctx context.Context, counterpartyID int64, statuses []entity.ObligationStatus) ([]*entity.Obligation, error)

	// ApplyChange writes one planned obligation update. The write is guarded
	// by the change's PriorUpdated timestamp; if a concurrent writer already
	// moved the obligation, settlement.ErrConcurrencyConflict is returned.
	ApplyChange(ctx context.Context, change settlement.ObligationChange) error
}

// PaymentRepository defines persistence operations for Payment
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id int64) (*entity.Payment, error)

	// MarkApproved finalizes a payment with its approval metadata
	MarkApproved(ctx context.Context, id int64, note, sourceOfFunds string, at time.Time) error

	// MarkRejected finalizes a payment as rejected
	MarkRejected(ctx context.Context, id int64, note string, at time.Time) error

	// MarkFailed records an initiation failure with its error log
	MarkFailed(ctx context.Context, id int64, errorLog string) error

	// ListByCounterparty retrieves a counterparty's payments newest first
	ListByCounterparty(ctx context.Context, counterpartyID int64, limit, offset int) ([]*entity.Payment, error)
}

// AllocationRepository defines persistence operations for Allocation
type AllocationRepository interface {
	// CreateMany inserts the allocations of one payment
	CreateMany(ctx context.Context, allocations []*entity.Allocation) error

	// ListByPayment retrieves a payment's allocations joined with the
	// current state of their obligations
	ListByPayment(ctx context.Context, paymentID int64) ([]*entity.AllocationWithObligation, error)

	// DeleteByPayment removes every allocation of a payment
	DeleteByPayment(ctx context.Context, paymentID int64) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
